package catalog

import (
	"errors"
	"testing"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

func TestLookupEveryCombination(t *testing.T) {
	tiers := []domain.Tier{domain.TierQA, domain.TierProd, domain.TierDR}
	seen := make(map[string]string)

	for _, kind := range Kinds() {
		for _, d := range domain.Domains() {
			for _, tier := range tiers {
				id, err := Lookup(kind, d, tier)
				if err != nil {
					t.Fatalf("Lookup(%s, %s, %s): %v", kind, d, tier, err)
				}
				if id == "" {
					t.Fatalf("Lookup(%s, %s, %s) returned empty identifier", kind, d, tier)
				}
				if prev, dup := seen[id]; dup {
					t.Fatalf("identifier %q resolved for both %s and %s/%s/%s", id, prev, kind, d, tier)
				}
				seen[id] = string(kind) + "/" + string(d) + "/" + string(tier)
			}
		}
	}

	if want := len(Kinds()) * 7 * 3; len(seen) != want {
		t.Fatalf("catalog resolved %d identifiers, want %d", len(seen), want)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup(Kind("cosmos"), domain.Sales, domain.TierQA); !errors.Is(err, domain.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := Lookup(KindBatch, domain.Domain("Marketing"), domain.TierQA); !errors.Is(err, domain.ErrUnknownDomain) {
		t.Fatalf("expected ErrUnknownDomain, got %v", err)
	}
}

func TestResolveRef(t *testing.T) {
	ref, err := ResolveRef(KindBatch, domain.Sales, domain.TierDR)
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if ref.ResourceGroup != "DRSalesRG" {
		t.Fatalf("resource group = %q", ref.ResourceGroup)
	}
	if ref.Name != "DRBatchSales" {
		t.Fatalf("name = %q", ref.Name)
	}
	if ref.Pool != "DRpoolBatchSales" {
		t.Fatalf("pool = %q", ref.Pool)
	}

	storage, err := ResolveRef(KindStorage, domain.Finance, domain.TierQA)
	if err != nil {
		t.Fatalf("ResolveRef storage: %v", err)
	}
	if storage.Pool != "" {
		t.Fatalf("non-batch ref carries pool %q", storage.Pool)
	}
}
