package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wqeqwqeq/drctl/internal/execute"
)

const lockAPIVersion = "2016-09-01"

// LockService manages resource-group management locks.
type LockService struct {
	client *Client
}

func NewLockService(c *Client) *LockService { return &LockService{client: c} }

func (s *LockService) lockURL(resourceGroup, tail string) string {
	return s.client.resourcePath(resourceGroup, "Microsoft.Authorization", "locks"+tail)
}

type lockResource struct {
	Name       string `json:"name"`
	Properties struct {
		Level string `json:"level"`
		Notes string `json:"notes"`
	} `json:"properties"`
}

func (s *LockService) ListLocks(ctx context.Context, resourceGroup string) ([]execute.Lock, error) {
	raw, err := s.client.getPaged(ctx, s.client.arm, s.lockURL(resourceGroup, "?api-version="+lockAPIVersion))
	if err != nil {
		return nil, fmt.Errorf("list locks in %s: %w", resourceGroup, err)
	}
	locks := make([]execute.Lock, 0, len(raw))
	for _, item := range raw {
		var lr lockResource
		if err := json.Unmarshal(item, &lr); err != nil {
			return nil, fmt.Errorf("decode lock: %w", err)
		}
		locks = append(locks, execute.Lock{Name: lr.Name, Level: lr.Properties.Level, Notes: lr.Properties.Notes})
	}
	return locks, nil
}

func (s *LockService) DeleteLock(ctx context.Context, resourceGroup, name string) error {
	u := s.lockURL(resourceGroup, "/"+url.PathEscape(name)+"?api-version="+lockAPIVersion)
	if err := s.client.do(ctx, s.client.arm, http.MethodDelete, u, nil, nil); err != nil {
		return fmt.Errorf("delete lock %s in %s: %w", name, resourceGroup, err)
	}
	return nil
}

func (s *LockService) CreateLock(ctx context.Context, resourceGroup string, lock execute.Lock) error {
	u := s.lockURL(resourceGroup, "/"+url.PathEscape(lock.Name)+"?api-version="+lockAPIVersion)
	props := map[string]any{"level": lock.Level}
	if lock.Notes != "" {
		props["notes"] = lock.Notes
	}
	body := map[string]any{"properties": props}
	if err := s.client.do(ctx, s.client.arm, http.MethodPut, u, body, nil); err != nil {
		return fmt.Errorf("create lock %s in %s: %w", lock.Name, resourceGroup, err)
	}
	return nil
}
