package azure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

const batchAPIVersion = "2024-07-01"

// BatchService scales dedicated nodes on batch account pools through the
// resource-manager plane.
type BatchService struct {
	client *Client
}

func NewBatchService(c *Client) *BatchService { return &BatchService{client: c} }

type poolResource struct {
	Properties struct {
		CurrentDedicatedNodes int `json:"currentDedicatedNodes"`
		ScaleSettings         struct {
			FixedScale struct {
				TargetDedicatedNodes int `json:"targetDedicatedNodes"`
			} `json:"fixedScale"`
		} `json:"scaleSettings"`
	} `json:"properties"`
}

func (s *BatchService) poolURL(ref domain.ResourceRef) string {
	tail := fmt.Sprintf("batchAccounts/%s/pools/%s?api-version=%s",
		url.PathEscape(ref.Name), url.PathEscape(ref.Pool), batchAPIVersion)
	return s.client.resourcePath(ref.ResourceGroup, "Microsoft.Batch", tail)
}

// NodeCount reports the pool's target dedicated node count.
func (s *BatchService) NodeCount(ctx context.Context, ref domain.ResourceRef) (int, error) {
	var pool poolResource
	if err := s.client.do(ctx, s.client.arm, http.MethodGet, s.poolURL(ref), nil, &pool); err != nil {
		return 0, fmt.Errorf("get pool %s/%s: %w", ref.Name, ref.Pool, err)
	}
	return pool.Properties.ScaleSettings.FixedScale.TargetDedicatedNodes, nil
}

// Resize patches the pool's fixed-scale target. The resize itself completes
// asynchronously on the service side.
func (s *BatchService) Resize(ctx context.Context, ref domain.ResourceRef, targetNodes int) error {
	body := map[string]any{
		"properties": map[string]any{
			"scaleSettings": map[string]any{
				"fixedScale": map[string]any{
					"targetDedicatedNodes": targetNodes,
				},
			},
		},
	}
	if err := s.client.do(ctx, s.client.arm, http.MethodPatch, s.poolURL(ref), body, nil); err != nil {
		return fmt.Errorf("resize pool %s/%s to %d: %w", ref.Name, ref.Pool, targetNodes, err)
	}
	return nil
}
