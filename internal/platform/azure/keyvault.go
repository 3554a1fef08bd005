package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wqeqwqeq/drctl/internal/domain"
	"github.com/wqeqwqeq/drctl/internal/execute"
)

const vaultAPIVersion = "7.4"

// VaultService copies secrets between key vaults over the data plane.
type VaultService struct {
	client *Client
}

func NewVaultService(c *Client) *VaultService { return &VaultService{client: c} }

func (s *VaultService) vaultURL(vault, tail string) string {
	return fmt.Sprintf("https://%s.%s/%s", vault, s.client.cfg.VaultSuffix, tail)
}

type secretItem struct {
	ID         string `json:"id"`
	Attributes struct {
		Enabled bool `json:"enabled"`
	} `json:"attributes"`
}

type secretBundle struct {
	Value string `json:"value"`
}

func secretName(id string) string {
	// id is https://{vault}.vault.azure.net/secrets/{name}[/{version}]
	parts := strings.Split(strings.TrimSuffix(id, "/"), "/secrets/")
	if len(parts) != 2 {
		return ""
	}
	name, _, _ := strings.Cut(parts[1], "/")
	return name
}

func (s *VaultService) listSecretNames(ctx context.Context, vault string) ([]string, error) {
	raw, err := s.client.getPaged(ctx, s.client.vault, s.vaultURL(vault, "secrets?api-version="+vaultAPIVersion))
	if err != nil {
		return nil, fmt.Errorf("list secrets in %s: %w", vault, err)
	}
	var names []string
	for _, item := range raw {
		var it secretItem
		if err := json.Unmarshal(item, &it); err != nil {
			return nil, fmt.Errorf("decode secret item: %w", err)
		}
		if !it.Attributes.Enabled {
			continue
		}
		if name := secretName(it.ID); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (s *VaultService) getSecret(ctx context.Context, vault, name string) (string, bool, error) {
	var bundle secretBundle
	u := s.vaultURL(vault, "secrets/"+url.PathEscape(name)+"?api-version="+vaultAPIVersion)
	err := s.client.do(ctx, s.client.vault, http.MethodGet, u, nil, &bundle)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get secret %s from %s: %w", name, vault, err)
	}
	return bundle.Value, true, nil
}

func (s *VaultService) setSecret(ctx context.Context, vault, name, value string) error {
	u := s.vaultURL(vault, "secrets/"+url.PathEscape(name)+"?api-version="+vaultAPIVersion)
	body := map[string]any{"value": value}
	if err := s.client.do(ctx, s.client.vault, http.MethodPut, u, body, nil); err != nil {
		return fmt.Errorf("set secret %s in %s: %w", name, vault, err)
	}
	return nil
}

// SyncSecrets copies every enabled secret from one vault to another, skipping
// secrets whose target value already matches. With dryRun set the copy set is
// computed but nothing is written.
func (s *VaultService) SyncSecrets(ctx context.Context, from, to domain.ResourceRef, dryRun bool) (execute.SyncStats, error) {
	var stats execute.SyncStats
	names, err := s.listSecretNames(ctx, from.Name)
	if err != nil {
		return stats, err
	}
	for _, name := range names {
		srcValue, ok, err := s.getSecret(ctx, from.Name, name)
		if err != nil {
			return stats, err
		}
		if !ok {
			continue
		}
		dstValue, exists, err := s.getSecret(ctx, to.Name, name)
		if err != nil {
			return stats, err
		}
		if exists && dstValue == srcValue {
			stats.Skipped++
			continue
		}
		if !dryRun {
			if err := s.setSecret(ctx, to.Name, name, srcValue); err != nil {
				return stats, err
			}
		}
		stats.Copied++
	}
	return stats, nil
}
