// Package azure implements the collaborator clients the executors drive,
// speaking the resource-manager and key-vault REST APIs directly with
// client-credential bearer tokens.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/wqeqwqeq/drctl/internal/platform/env"
)

const (
	defaultARMEndpoint   = "https://management.azure.com"
	defaultLoginEndpoint = "https://login.microsoftonline.com"
	defaultVaultSuffix   = "vault.azure.net"
)

type Config struct {
	TenantID       string
	ClientID       string
	ClientSecret   string
	SubscriptionID string

	// Endpoint overrides for sovereign clouds and tests.
	ARMEndpoint   string
	LoginEndpoint string
	VaultSuffix   string

	Timeout time.Duration
}

func ConfigFromEnv() (Config, error) {
	tenant, err := env.Require("AZURE_TENANT_ID")
	if err != nil {
		return Config{}, err
	}
	clientID, err := env.Require("AZURE_CLIENT_ID")
	if err != nil {
		return Config{}, err
	}
	secret, err := env.Require("AZURE_CLIENT_SECRET")
	if err != nil {
		return Config{}, err
	}
	sub, err := env.Require("AZURE_SUBSCRIPTION_ID")
	if err != nil {
		return Config{}, err
	}
	timeout, err := env.Duration("DRCTL_HTTP_TIMEOUT", 60*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		TenantID:       tenant,
		ClientID:       clientID,
		ClientSecret:   secret,
		SubscriptionID: sub,
		ARMEndpoint:    env.String("DRCTL_ARM_ENDPOINT", defaultARMEndpoint),
		LoginEndpoint:  env.String("DRCTL_LOGIN_ENDPOINT", defaultLoginEndpoint),
		VaultSuffix:    env.String("DRCTL_VAULT_SUFFIX", defaultVaultSuffix),
		Timeout:        timeout,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.TenantID) == "" {
		return errors.New("tenant id is required")
	}
	if strings.TrimSpace(c.ClientID) == "" {
		return errors.New("client id is required")
	}
	if strings.TrimSpace(c.ClientSecret) == "" {
		return errors.New("client secret is required")
	}
	if strings.TrimSpace(c.SubscriptionID) == "" {
		return errors.New("subscription id is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}

// Client talks to both the resource-manager plane and the vault data plane.
// Tokens are acquired per audience and cached with refresh by the underlying
// token source.
type Client struct {
	cfg   Config
	arm   *http.Client
	vault *http.Client
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ARMEndpoint == "" {
		cfg.ARMEndpoint = defaultARMEndpoint
	}
	if cfg.LoginEndpoint == "" {
		cfg.LoginEndpoint = defaultLoginEndpoint
	}
	if cfg.VaultSuffix == "" {
		cfg.VaultSuffix = defaultVaultSuffix
	}

	tokenURL := cfg.LoginEndpoint + "/" + cfg.TenantID + "/oauth2/v2.0/token"
	newAudienceClient := func(scope string) *http.Client {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{scope},
		}
		hc := cc.Client(ctx)
		hc.Timeout = cfg.Timeout
		return hc
	}

	return &Client{
		cfg:   cfg,
		arm:   newAudienceClient(cfg.ARMEndpoint + "/.default"),
		vault: newAudienceClient("https://" + cfg.VaultSuffix + "/.default"),
	}, nil
}

// apiError carries the remote status for callers that branch on 404s.
type apiError struct {
	Status int
	Method string
	URL    string
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

func isNotFound(err error) bool {
	var ae *apiError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

// resourcePath builds an ARM resource path under the configured subscription.
func (c *Client) resourcePath(resourceGroup, provider, tail string) string {
	return fmt.Sprintf("%s/subscriptions/%s/resourceGroups/%s/providers/%s/%s",
		c.cfg.ARMEndpoint, c.cfg.SubscriptionID, url.PathEscape(resourceGroup), provider, tail)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apiError{Status: resp.StatusCode, Method: method, URL: rawURL, Body: strings.TrimSpace(string(raw))}
	}
	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, rawURL, err)
		}
	}
	return nil
}

// listPage is the common shape of ARM and vault collection responses.
type listPage struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"nextLink"`
}

// getPaged follows nextLink until the collection is exhausted.
func (c *Client) getPaged(ctx context.Context, hc *http.Client, rawURL string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	next := rawURL
	for next != "" {
		var page listPage
		if err := c.do(ctx, hc, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Value...)
		next = page.NextLink
	}
	return items, nil
}
