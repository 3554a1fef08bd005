package execute

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

// Report aggregates the per-entry outcomes of one orchestrated run.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []Outcome
}

func (r Report) Failed() bool {
	for _, o := range r.Outcomes {
		if o.Failed() {
			return true
		}
	}
	return false
}

// Orchestrator sequences category executors over a plan in runbook order.
// Categories absent from the plan are skipped with a warning; a failed entry
// never stops sibling entries or later categories. Catalog and document
// errors never reach this point, so every step here may have side effects and
// must be recorded rather than aborted.
type Orchestrator struct {
	Storage   *StorageReplicator
	Rewriter  *FqdnRewriter
	Endpoints *EndpointSwapper
	Triggers  *TriggerRunner
	Pools     *PoolScaler
	Vaults    *SecretSyncer
	Logger    *slog.Logger
}

func (o *Orchestrator) Execute(ctx context.Context, p domain.Plan, steps []domain.Category, dryRun bool) Report {
	report := Report{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	labels := p.EntryDomains()

	for _, step := range steps {
		if !p.Has(step) {
			o.Logger.Warn("plan does not carry category, skipping", "category", step)
			continue
		}
		o.Logger.Info("executing category", "category", step, "dryRun", dryRun, "runId", report.RunID)

		var outcomes []Outcome
		switch step {
		case domain.CategoryStorageGRS:
			outcomes = o.Storage.Run(ctx, p.StorageGRS, labels, dryRun)
		case domain.CategoryLinkedServiceFQDN:
			if o.Rewriter == nil {
				o.Logger.Warn("no fqdn rewrite configured, skipping category", "category", step)
				continue
			}
			outcomes = o.Rewriter.Run(ctx, p.LinkedServiceFQDN, labels, dryRun)
		case domain.CategoryPrivateEndpoint:
			if o.Endpoints == nil {
				o.Logger.Warn("no private endpoint swap configured, skipping category", "category", step)
				continue
			}
			outcomes = o.Endpoints.Run(ctx, p.LinkedServiceFQDN, labels, p.Selection.Mode, dryRun)
		case domain.CategoryTriggerStop:
			outcomes = o.Triggers.Stop(ctx, p.Triggers, labels, dryRun)
		case domain.CategoryScaleDown:
			outcomes = o.Pools.ScaleDown(ctx, p.PoolScale, labels, dryRun)
		case domain.CategoryKVSync:
			outcomes = o.Vaults.Run(ctx, p.SecretSync, labels, dryRun)
		case domain.CategoryScaleUp:
			outcomes = o.Pools.ScaleUp(ctx, p.PoolScale, labels, dryRun)
		case domain.CategoryTriggerStart:
			outcomes = o.Triggers.Start(ctx, p.Triggers, labels, dryRun)
		default:
			o.Logger.Warn("unknown runbook step, skipping", "category", step)
			continue
		}
		report.Outcomes = append(report.Outcomes, outcomes...)
	}

	report.FinishedAt = time.Now().UTC()
	return report
}
