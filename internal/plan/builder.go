// Package plan builds and encodes directional migration plans.
package plan

import (
	"fmt"

	"github.com/wqeqwqeq/drctl/internal/catalog"
	"github.com/wqeqwqeq/drctl/internal/domain"
)

// Build resolves a selection into a plan. The direction is always the selected
// environment toward DR; mode never swaps source and destination and travels
// only as metadata. Each optional subsystem independently gates its category
// set, and absent categories stay absent rather than empty.
func Build(sel domain.Selection) (domain.Plan, error) {
	if err := sel.Validate(); err != nil {
		return domain.Plan{}, err
	}

	src := sel.Environment
	p := domain.Plan{Selection: sel}

	for _, d := range sel.ScopeDomains() {
		if sel.Storage {
			ref, err := catalog.ResolveRef(catalog.KindStorage, d, src)
			if err != nil {
				return domain.Plan{}, fmt.Errorf("resolve storage for %s: %w", d, err)
			}
			p.StorageGRS = append(p.StorageGRS, ref)
		}

		if sel.Snowflake {
			// With azure down the surviving region's factory owns the
			// Snowflake linked services, so the rewrite targets DR.
			tier := src
			if sel.Azure {
				tier = domain.TierDR
			}
			ref, err := catalog.ResolveRef(catalog.KindFactory, d, tier)
			if err != nil {
				return domain.Plan{}, fmt.Errorf("resolve factory for %s: %w", d, err)
			}
			p.LinkedServiceFQDN = append(p.LinkedServiceFQDN, ref)
		}

		if sel.Azure {
			down, err := catalog.ResolveRef(catalog.KindBatch, d, src)
			if err != nil {
				return domain.Plan{}, fmt.Errorf("resolve batch for %s: %w", d, err)
			}
			up, err := catalog.ResolveRef(catalog.KindBatch, d, domain.TierDR)
			if err != nil {
				return domain.Plan{}, fmt.Errorf("resolve batch for %s: %w", d, err)
			}
			p.PoolScale = append(p.PoolScale, domain.ScalePair{Down: down, Up: up})

			from, err := catalog.ResolveRef(catalog.KindVault, d, src)
			if err != nil {
				return domain.Plan{}, fmt.Errorf("resolve vault for %s: %w", d, err)
			}
			to, err := catalog.ResolveRef(catalog.KindVault, d, domain.TierDR)
			if err != nil {
				return domain.Plan{}, fmt.Errorf("resolve vault for %s: %w", d, err)
			}
			p.SecretSync = append(p.SecretSync, domain.SyncPair{From: from, To: to})

			stop, err := catalog.ResolveRef(catalog.KindFactory, d, src)
			if err != nil {
				return domain.Plan{}, fmt.Errorf("resolve factory for %s: %w", d, err)
			}
			start, err := catalog.ResolveRef(catalog.KindFactory, d, domain.TierDR)
			if err != nil {
				return domain.Plan{}, fmt.Errorf("resolve factory for %s: %w", d, err)
			}
			p.Triggers = append(p.Triggers, domain.TriggerPair{Stop: stop, Start: start})
		}
	}

	return p, nil
}
