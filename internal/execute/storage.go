package execute

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

// StorageReplicator initiates the geo-redundant failover of each storage
// account entry. The failover itself runs asynchronously on the provider
// side; a successful outcome means the request was accepted.
type StorageReplicator struct {
	Client      StorageClient
	Logger      *slog.Logger
	Concurrency int
}

func (s *StorageReplicator) Run(ctx context.Context, refs []domain.ResourceRef, labels []string, dryRun bool) []Outcome {
	outcomes := make([]Outcome, len(refs))
	forEach(len(refs), s.Concurrency, func(i int) {
		outcomes[i] = s.failover(ctx, refs[i], label(labels, i), dryRun)
	})
	return outcomes
}

func (s *StorageReplicator) failover(ctx context.Context, ref domain.ResourceRef, dom string, dryRun bool) Outcome {
	out := Outcome{Category: domain.CategoryStorageGRS, Domain: dom, Target: ref.Name}

	if dryRun {
		s.Logger.Info("would initiate storage failover", "account", ref.Name, "resourceGroup", ref.ResourceGroup)
		out.Status = StatusSuccess
		out.Detail = "would initiate failover"
		return out
	}
	if err := s.Client.Failover(ctx, ref); err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Sprintf("failover: %v", err)
		return out
	}
	s.Logger.Info("initiated storage failover", "account", ref.Name, "resourceGroup", ref.ResourceGroup)
	out.Status = StatusSuccess
	out.Changed = true
	out.Detail = "failover initiated"
	return out
}
