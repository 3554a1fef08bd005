package execute

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

// fakeEndpoints is an in-memory EndpointClient keyed by factory/endpoint.
// Reads hand out cloned fqdn slices, like a fresh API response would.
type fakeEndpoints struct {
	mu        sync.Mutex
	endpoints map[string]ManagedEndpoint
	updates   []string
	getErr    error
	updateErr error
}

func epKey(factory, endpoint string) string { return factory + "/" + endpoint }

func (f *fakeEndpoints) GetManagedEndpoint(_ context.Context, r domain.ResourceRef, name string) (ManagedEndpoint, bool, error) {
	if f.getErr != nil {
		return ManagedEndpoint{}, false, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ep, ok := f.endpoints[epKey(r.Name, name)]
	ep.FQDNs = slices.Clone(ep.FQDNs)
	return ep, ok, nil
}

func (f *fakeEndpoints) UpdateManagedEndpoint(_ context.Context, r domain.ResourceRef, ep ManagedEndpoint) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endpoints[epKey(r.Name, ep.Name)] = ep
	f.updates = append(f.updates, r.Name+"/"+ep.Name)
	return nil
}

func testSwapper(client *fakeEndpoints) *EndpointSwapper {
	return &EndpointSwapper{
		Client:    client,
		Host:      "kmx-qa",
		Primary:   "snowflake_east",
		Secondary: "snowflake_west",
		Logger:    testLogger(),
	}
}

func TestEndpointSwapperFailoverMovesHost(t *testing.T) {
	client := &fakeEndpoints{endpoints: map[string]ManagedEndpoint{
		"DRSalesADF/snowflake_east": {Name: "snowflake_east", FQDNs: []string{"kmx-qa", "other-host"}, GroupID: "grp", PrivateLinkResourceID: "plr"},
		"DRSalesADF/snowflake_west": {Name: "snowflake_west", FQDNs: nil, GroupID: "grp", PrivateLinkResourceID: "plr"},
	}}

	outcomes := testSwapper(client).Run(context.Background(), []domain.ResourceRef{ref("rgDR", "DRSalesADF")}, []string{"Sales"}, domain.ModeFailover, false)
	if len(outcomes) != 1 {
		t.Fatalf("outcomes = %d", len(outcomes))
	}
	out := outcomes[0]
	if out.Failed() || !out.Changed {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Detail != "moved kmx-qa: detach from snowflake_east, attach to snowflake_west" {
		t.Fatalf("detail = %q", out.Detail)
	}

	east := client.endpoints["DRSalesADF/snowflake_east"]
	if !slices.Equal(east.FQDNs, []string{"other-host"}) {
		t.Fatalf("east fqdns = %v", east.FQDNs)
	}
	west := client.endpoints["DRSalesADF/snowflake_west"]
	if !slices.Equal(west.FQDNs, []string{"kmx-qa"}) {
		t.Fatalf("west fqdns = %v", west.FQDNs)
	}
	// The update must republish the ids the read carried.
	if east.GroupID != "grp" || west.PrivateLinkResourceID != "plr" {
		t.Fatalf("endpoint ids dropped: east=%+v west=%+v", east, west)
	}
	if len(client.updates) != 2 {
		t.Fatalf("updates = %v", client.updates)
	}
}

func TestEndpointSwapperFailbackReverses(t *testing.T) {
	client := &fakeEndpoints{endpoints: map[string]ManagedEndpoint{
		"DRSalesADF/snowflake_east": {Name: "snowflake_east"},
		"DRSalesADF/snowflake_west": {Name: "snowflake_west", FQDNs: []string{"kmx-qa"}},
	}}

	outcomes := testSwapper(client).Run(context.Background(), []domain.ResourceRef{ref("rgDR", "DRSalesADF")}, []string{"Sales"}, domain.ModeFailback, false)
	if outcomes[0].Failed() {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
	if got := client.endpoints["DRSalesADF/snowflake_west"].FQDNs; len(got) != 0 {
		t.Fatalf("west fqdns = %v", got)
	}
	if got := client.endpoints["DRSalesADF/snowflake_east"].FQDNs; !slices.Equal(got, []string{"kmx-qa"}) {
		t.Fatalf("east fqdns = %v", got)
	}
}

func TestEndpointSwapperAlreadyRouted(t *testing.T) {
	client := &fakeEndpoints{endpoints: map[string]ManagedEndpoint{
		"DRSalesADF/snowflake_east": {Name: "snowflake_east"},
		"DRSalesADF/snowflake_west": {Name: "snowflake_west", FQDNs: []string{"kmx-qa"}},
	}}

	outcomes := testSwapper(client).Run(context.Background(), []domain.ResourceRef{ref("rgDR", "DRSalesADF")}, []string{"Sales"}, domain.ModeFailover, false)
	out := outcomes[0]
	if out.Failed() || out.Changed {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Detail != "kmx-qa already routed to snowflake_west" {
		t.Fatalf("detail = %q", out.Detail)
	}
	if len(client.updates) != 0 {
		t.Fatalf("updates = %v", client.updates)
	}
}

func TestEndpointSwapperDryRunIssuesNoUpdates(t *testing.T) {
	client := &fakeEndpoints{endpoints: map[string]ManagedEndpoint{
		"DRSalesADF/snowflake_east": {Name: "snowflake_east", FQDNs: []string{"kmx-qa"}},
		"DRSalesADF/snowflake_west": {Name: "snowflake_west"},
	}}

	outcomes := testSwapper(client).Run(context.Background(), []domain.ResourceRef{ref("rgDR", "DRSalesADF")}, []string{"Sales"}, domain.ModeFailover, true)
	out := outcomes[0]
	if out.Failed() || out.Changed {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Detail != "would move kmx-qa: detach from snowflake_east, attach to snowflake_west" {
		t.Fatalf("detail = %q", out.Detail)
	}
	if len(client.updates) != 0 {
		t.Fatalf("dry run issued updates: %v", client.updates)
	}
	if got := client.endpoints["DRSalesADF/snowflake_east"].FQDNs; !slices.Equal(got, []string{"kmx-qa"}) {
		t.Fatalf("east fqdns mutated in dry run: %v", got)
	}
}

func TestEndpointSwapperMissingDetachEndpointStillAttaches(t *testing.T) {
	client := &fakeEndpoints{endpoints: map[string]ManagedEndpoint{
		"DRSalesADF/snowflake_west": {Name: "snowflake_west"},
	}}

	outcomes := testSwapper(client).Run(context.Background(), []domain.ResourceRef{ref("rgDR", "DRSalesADF")}, []string{"Sales"}, domain.ModeFailover, false)
	out := outcomes[0]
	if out.Failed() {
		t.Fatalf("outcome = %+v", out)
	}
	if got := client.endpoints["DRSalesADF/snowflake_west"].FQDNs; !slices.Equal(got, []string{"kmx-qa"}) {
		t.Fatalf("west fqdns = %v", got)
	}
}

func TestEndpointSwapperMissingAttachEndpointFails(t *testing.T) {
	client := &fakeEndpoints{endpoints: map[string]ManagedEndpoint{
		"DRSalesADF/snowflake_east": {Name: "snowflake_east", FQDNs: []string{"kmx-qa"}},
	}}

	outcomes := testSwapper(client).Run(context.Background(), []domain.ResourceRef{ref("rgDR", "DRSalesADF")}, []string{"Sales"}, domain.ModeFailover, false)
	if !outcomes[0].Failed() {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
}

func TestEndpointSwapperGetErrorFails(t *testing.T) {
	client := &fakeEndpoints{getErr: errors.New("throttled")}

	outcomes := testSwapper(client).Run(context.Background(), []domain.ResourceRef{ref("rgDR", "DRSalesADF")}, []string{"Sales"}, domain.ModeFailover, false)
	if !outcomes[0].Failed() {
		t.Fatalf("outcome = %+v", outcomes[0])
	}
}
