package azure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

func TestSecretName(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"https://qakvsales.vault.azure.net/secrets/db-password", "db-password"},
		{"https://qakvsales.vault.azure.net/secrets/db-password/abc123", "db-password"},
		{"https://qakvsales.vault.azure.net/secrets/db-password/", "db-password"},
		{"https://qakvsales.vault.azure.net/keys/signing-key", ""},
	}
	for _, tc := range cases {
		if got := secretName(tc.id); got != tc.want {
			t.Fatalf("secretName(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

// vaultRewriteTransport routes data-plane vault hosts to a local server while
// keeping the original host visible to the handler.
type vaultRewriteTransport struct{ target *url.URL }

func (t vaultRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Host = req.URL.Host
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

// vaultFixture serves two vaults: the source holds same, diff, only and one
// disabled secret; the target already matches on same and differs on diff.
type vaultFixture struct {
	mu   sync.Mutex
	puts map[string]string
}

func (f *vaultFixture) handler(t *testing.T) http.HandlerFunc {
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		vault, _, _ := strings.Cut(r.Host, ".")
		name := strings.TrimPrefix(r.URL.Path, "/secrets/")

		if r.Method == http.MethodPut {
			if vault != "drkvsales" {
				t.Errorf("put against vault %q", vault)
			}
			var body struct {
				Value string `json:"value"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.mu.Lock()
			f.puts[name] = body.Value
			f.mu.Unlock()
			writeJSON(w, map[string]any{"value": body.Value})
			return
		}

		switch {
		case vault == "qakvsales" && r.URL.Path == "/secrets":
			writeJSON(w, map[string]any{"value": []map[string]any{
				{"id": "https://qakvsales.vault.azure.net/secrets/same", "attributes": map[string]any{"enabled": true}},
				{"id": "https://qakvsales.vault.azure.net/secrets/diff", "attributes": map[string]any{"enabled": true}},
				{"id": "https://qakvsales.vault.azure.net/secrets/only", "attributes": map[string]any{"enabled": true}},
				{"id": "https://qakvsales.vault.azure.net/secrets/off", "attributes": map[string]any{"enabled": false}},
			}})
		case vault == "qakvsales":
			writeJSON(w, map[string]any{"value": map[string]string{
				"same": "v1", "diff": "new", "only": "solo",
			}[name]})
		case vault == "drkvsales" && name == "same":
			writeJSON(w, map[string]any{"value": "v1"})
		case vault == "drkvsales" && name == "diff":
			writeJSON(w, map[string]any{"value": "old"})
		default:
			http.Error(w, `{"error":{"code":"SecretNotFound"}}`, http.StatusNotFound)
		}
	}
}

func newVaultTestService(t *testing.T, fixture *vaultFixture) *VaultService {
	t.Helper()
	srv := httptest.NewServer(fixture.handler(t))
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	client := &Client{
		cfg: Config{VaultSuffix: "vault.azure.net"},
		vault: &http.Client{
			Transport: vaultRewriteTransport{target: target},
			Timeout:   5 * time.Second,
		},
	}
	return NewVaultService(client)
}

func TestSyncSecretsSkipsIdenticalValues(t *testing.T) {
	fixture := &vaultFixture{puts: map[string]string{}}
	svc := newVaultTestService(t, fixture)

	stats, err := svc.SyncSecrets(context.Background(),
		domain.ResourceRef{Name: "qakvsales"}, domain.ResourceRef{Name: "drkvsales"}, false)
	if err != nil {
		t.Fatalf("SyncSecrets: %v", err)
	}
	if stats.Copied != 2 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want 2 copied 1 skipped", stats)
	}
	if len(fixture.puts) != 2 {
		t.Fatalf("puts = %v", fixture.puts)
	}
	if fixture.puts["diff"] != "new" || fixture.puts["only"] != "solo" {
		t.Fatalf("puts = %v", fixture.puts)
	}
}

func TestSyncSecretsDryRunNeverWrites(t *testing.T) {
	fixture := &vaultFixture{puts: map[string]string{}}
	svc := newVaultTestService(t, fixture)

	stats, err := svc.SyncSecrets(context.Background(),
		domain.ResourceRef{Name: "qakvsales"}, domain.ResourceRef{Name: "drkvsales"}, true)
	if err != nil {
		t.Fatalf("SyncSecrets: %v", err)
	}
	if stats.Copied != 2 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v, want the same copy set as a live run", stats)
	}
	if len(fixture.puts) != 0 {
		t.Fatalf("dry run wrote secrets: %v", fixture.puts)
	}
}
