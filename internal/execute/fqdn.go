package execute

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

// FqdnRewriter repoints the Snowflake linked services of each factory from
// one account FQDN to another. In dry-run mode it performs the full lookup
// and transform but never republishes; outcomes then report the would-be
// change with Changed=false.
type FqdnRewriter struct {
	Client      FactoryClient
	OldFQDN     string
	NewFQDN     string
	Logger      *slog.Logger
	Concurrency int
}

func (r *FqdnRewriter) Run(ctx context.Context, refs []domain.ResourceRef, labels []string, dryRun bool) []Outcome {
	outcomes := make([]Outcome, len(refs))
	forEach(len(refs), r.Concurrency, func(i int) {
		outcomes[i] = r.runOne(ctx, refs[i], label(labels, i), dryRun)
	})
	return outcomes
}

func (r *FqdnRewriter) runOne(ctx context.Context, ref domain.ResourceRef, dom string, dryRun bool) Outcome {
	out := Outcome{Category: domain.CategoryLinkedServiceFQDN, Domain: dom, Target: ref.Name}

	services, err := r.Client.ListLinkedServices(ctx, ref, SnowflakeTypes())
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Sprintf("list linked services: %v", err)
		return out
	}
	if len(services) == 0 {
		out.Status = StatusSuccess
		out.Detail = "no Snowflake linked services"
		return out
	}

	changed := 0
	unmatched := 0
	for _, ls := range services {
		updated, ok, err := rewriteLinkedService(ls, r.OldFQDN, r.NewFQDN)
		if err != nil {
			out.Status = StatusFailed
			out.Err = err.Error()
			return out
		}
		if !ok {
			unmatched++
			r.Logger.Warn("fqdn not found at a scheme boundary, leaving linked service untouched",
				"factory", ref.Name, "linkedService", ls.Name, "oldFqdn", r.OldFQDN)
			continue
		}
		if dryRun {
			r.Logger.Info("would update linked service",
				"factory", ref.Name, "linkedService", ls.Name, "newFqdn", r.NewFQDN)
			changed++
			continue
		}
		if err := r.Client.UpdateLinkedService(ctx, ref, updated); err != nil {
			out.Status = StatusFailed
			out.Err = fmt.Sprintf("update %s: %v", ls.Name, err)
			return out
		}
		r.Logger.Info("updated linked service",
			"factory", ref.Name, "linkedService", ls.Name, "newFqdn", r.NewFQDN)
		changed++
	}

	out.Status = StatusSuccess
	out.Changed = changed > 0 && !dryRun
	if dryRun {
		out.Detail = fmt.Sprintf("would change %d of %d linked services", changed, len(services))
	} else {
		out.Detail = fmt.Sprintf("changed %d of %d linked services", changed, len(services))
	}
	if unmatched > 0 {
		out.Detail += fmt.Sprintf(" (%d without matching fqdn)", unmatched)
	}
	return out
}
