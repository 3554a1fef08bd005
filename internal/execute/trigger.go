package execute

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

const (
	triggerStateStarted = "Started"
	triggerStateStopped = "Stopped"

	triggerTypeSchedule = "ScheduleTrigger"
	triggerTypeTumbling = "TumblingWindowTrigger"
)

// TriggerRunner stops or starts every schedule and tumbling-window trigger of
// each factory entry. Triggers already in the desired state are skipped. When
// a lock client is wired, resource-group locks are released before the
// mutations and recreated afterwards, also on failure. Dry-run never touches
// locks.
type TriggerRunner struct {
	Client      FactoryClient
	Locks       LockClient
	Logger      *slog.Logger
	Concurrency int
}

func (t *TriggerRunner) Stop(ctx context.Context, pairs []domain.TriggerPair, labels []string, dryRun bool) []Outcome {
	outcomes := make([]Outcome, len(pairs))
	forEach(len(pairs), t.Concurrency, func(i int) {
		outcomes[i] = t.shift(ctx, domain.CategoryTriggerStop, pairs[i].Stop, label(labels, i), dryRun)
	})
	return outcomes
}

func (t *TriggerRunner) Start(ctx context.Context, pairs []domain.TriggerPair, labels []string, dryRun bool) []Outcome {
	outcomes := make([]Outcome, len(pairs))
	forEach(len(pairs), t.Concurrency, func(i int) {
		outcomes[i] = t.shift(ctx, domain.CategoryTriggerStart, pairs[i].Start, label(labels, i), dryRun)
	})
	return outcomes
}

func (t *TriggerRunner) shift(ctx context.Context, cat domain.Category, ref domain.ResourceRef, dom string, dryRun bool) (out Outcome) {
	out = Outcome{Category: cat, Domain: dom, Target: ref.Name}
	desired := triggerStateStopped
	if cat == domain.CategoryTriggerStart {
		desired = triggerStateStarted
	}

	if !dryRun && t.Locks != nil {
		var held []Lock
		// Recreate whatever was released, also when the release itself or a
		// trigger mutation failed part-way.
		defer func() {
			if err := t.recreateLocks(ctx, ref.ResourceGroup, held); err != nil {
				out.Status = StatusFailed
				if out.Err != "" {
					out.Err += "; "
				}
				out.Err += err.Error()
			}
		}()
		var err error
		if held, err = t.releaseLocks(ctx, ref.ResourceGroup); err != nil {
			out.Status = StatusFailed
			out.Err = err.Error()
			return out
		}
	}

	triggers, err := t.Client.ListTriggers(ctx, ref)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Sprintf("list triggers: %v", err)
		return out
	}

	shifted := 0
	skipped := 0
	for _, trg := range triggers {
		if trg.Type != triggerTypeSchedule && trg.Type != triggerTypeTumbling {
			continue
		}
		if trg.RuntimeState == desired {
			skipped++
			continue
		}
		if dryRun {
			t.Logger.Info("would shift trigger", "factory", ref.Name, "trigger", trg.Name, "to", desired)
			shifted++
			continue
		}
		var err error
		if desired == triggerStateStopped {
			err = t.Client.StopTrigger(ctx, ref, trg.Name)
		} else {
			err = t.Client.StartTrigger(ctx, ref, trg.Name)
		}
		if err != nil {
			out.Status = StatusFailed
			out.Err = fmt.Sprintf("%s trigger %s: %v", desired, trg.Name, err)
			return out
		}
		t.Logger.Info("shifted trigger", "factory", ref.Name, "trigger", trg.Name, "to", desired)
		shifted++
	}

	out.Status = StatusSuccess
	out.Changed = shifted > 0 && !dryRun
	if dryRun {
		out.Detail = fmt.Sprintf("would shift %d triggers, %d already %s", shifted, skipped, desired)
	} else {
		out.Detail = fmt.Sprintf("shifted %d triggers, %d already %s", shifted, skipped, desired)
	}
	return out
}

// releaseLocks deletes every lock in the group and returns what it deleted so
// recreateLocks can restore them.
func (t *TriggerRunner) releaseLocks(ctx context.Context, resourceGroup string) ([]Lock, error) {
	locks, err := t.Locks.ListLocks(ctx, resourceGroup)
	if err != nil {
		return nil, fmt.Errorf("list locks in %s: %w", resourceGroup, err)
	}
	var held []Lock
	for _, l := range locks {
		if err := t.Locks.DeleteLock(ctx, resourceGroup, l.Name); err != nil {
			return held, fmt.Errorf("release lock %s in %s: %w", l.Name, resourceGroup, err)
		}
		held = append(held, l)
		t.Logger.Info("released resource lock", "resourceGroup", resourceGroup, "lock", l.Name)
	}
	return held, nil
}

func (t *TriggerRunner) recreateLocks(ctx context.Context, resourceGroup string, held []Lock) error {
	for _, l := range held {
		if err := t.Locks.CreateLock(ctx, resourceGroup, l); err != nil {
			return fmt.Errorf("recreate lock %s in %s: %w", l.Name, resourceGroup, err)
		}
		t.Logger.Info("recreated resource lock", "resourceGroup", resourceGroup, "lock", l.Name)
	}
	return nil
}
