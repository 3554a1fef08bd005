package azure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

const storageAPIVersion = "2023-05-01"

// StorageService initiates customer-managed failover on geo-redundant
// storage accounts.
type StorageService struct {
	client *Client
}

func NewStorageService(c *Client) *StorageService { return &StorageService{client: c} }

// Failover promotes the account's secondary region to primary. The call
// returns once the service accepts the request; the failover itself runs
// asynchronously and can take up to an hour.
func (s *StorageService) Failover(ctx context.Context, ref domain.ResourceRef) error {
	tail := fmt.Sprintf("storageAccounts/%s/failover?api-version=%s", url.PathEscape(ref.Name), storageAPIVersion)
	u := s.client.resourcePath(ref.ResourceGroup, "Microsoft.Storage", tail)
	if err := s.client.do(ctx, s.client.arm, http.MethodPost, u, nil, nil); err != nil {
		return fmt.Errorf("failover storage account %s: %w", ref.Name, err)
	}
	return nil
}
