package execute

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

// SecretSyncer copies secret-store contents along each sync pair. The vault
// collaborator performs the actual per-secret diff and copy; this executor
// resolves pairs and aggregates outcomes.
type SecretSyncer struct {
	Client      VaultClient
	Logger      *slog.Logger
	Concurrency int
}

func (s *SecretSyncer) Run(ctx context.Context, pairs []domain.SyncPair, labels []string, dryRun bool) []Outcome {
	outcomes := make([]Outcome, len(pairs))
	forEach(len(pairs), s.Concurrency, func(i int) {
		outcomes[i] = s.syncOne(ctx, pairs[i], label(labels, i), dryRun)
	})
	return outcomes
}

func (s *SecretSyncer) syncOne(ctx context.Context, pair domain.SyncPair, dom string, dryRun bool) Outcome {
	out := Outcome{
		Category: domain.CategoryKVSync,
		Domain:   dom,
		Target:   pair.From.Name + " -> " + pair.To.Name,
	}

	stats, err := s.Client.SyncSecrets(ctx, pair.From, pair.To, dryRun)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err.Error()
		return out
	}
	s.Logger.Info("synced vault secrets",
		"from", pair.From.Name, "to", pair.To.Name,
		"copied", stats.Copied, "skipped", stats.Skipped, "dryRun", dryRun)

	out.Status = StatusSuccess
	out.Changed = stats.Copied > 0 && !dryRun
	if dryRun {
		out.Detail = fmt.Sprintf("would copy %d secrets, %d identical", stats.Copied, stats.Skipped)
	} else {
		out.Detail = fmt.Sprintf("copied %d secrets, %d identical", stats.Copied, stats.Skipped)
	}
	return out
}
