package execute

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

// PoolScaler drains and raises batch pools. The down and up phases are
// exposed separately so a runbook can interleave other categories (trigger
// quiesce, secret sync) between them; positional index i of both phases
// refers to the same domain's pair.
type PoolScaler struct {
	Client      PoolClient
	UpTarget    int // node target for the pool taking over; 0 means 1
	Logger      *slog.Logger
	Concurrency int
}

func (s *PoolScaler) ScaleDown(ctx context.Context, pairs []domain.ScalePair, labels []string, dryRun bool) []Outcome {
	outcomes := make([]Outcome, len(pairs))
	forEach(len(pairs), s.Concurrency, func(i int) {
		outcomes[i] = s.resize(ctx, domain.CategoryScaleDown, pairs[i].Down, label(labels, i), 0, dryRun)
	})
	return outcomes
}

func (s *PoolScaler) ScaleUp(ctx context.Context, pairs []domain.ScalePair, labels []string, dryRun bool) []Outcome {
	target := s.UpTarget
	if target < 1 {
		target = 1
	}
	outcomes := make([]Outcome, len(pairs))
	forEach(len(pairs), s.Concurrency, func(i int) {
		outcomes[i] = s.resize(ctx, domain.CategoryScaleUp, pairs[i].Up, label(labels, i), target, dryRun)
	})
	return outcomes
}

func (s *PoolScaler) resize(ctx context.Context, cat domain.Category, ref domain.ResourceRef, dom string, target int, dryRun bool) Outcome {
	out := Outcome{Category: cat, Domain: dom, Target: ref.Name + "/" + ref.Pool}

	current, err := s.Client.NodeCount(ctx, ref)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Sprintf("read pool: %v", err)
		return out
	}
	if current == target {
		out.Status = StatusSuccess
		out.Detail = fmt.Sprintf("already at %d nodes", target)
		return out
	}

	if dryRun {
		s.Logger.Info("would resize pool", "pool", ref.Pool, "from", current, "to", target)
		out.Status = StatusSuccess
		out.Detail = fmt.Sprintf("would resize %d -> %d nodes", current, target)
		return out
	}
	if err := s.Client.Resize(ctx, ref, target); err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Sprintf("resize pool: %v", err)
		return out
	}
	s.Logger.Info("resized pool", "pool", ref.Pool, "from", current, "to", target)
	out.Status = StatusSuccess
	out.Changed = true
	out.Detail = fmt.Sprintf("resized %d -> %d nodes", current, target)
	return out
}
