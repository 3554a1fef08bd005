// Package execute drives the per-category remediation actions of a plan
// against collaborator clients, isolating failures per entry.
package execute

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Outcome records the result of one plan entry. Changed distinguishes a
// persisted mutation from a dry-run preview of the same mutation.
type Outcome struct {
	Category domain.Category
	Domain   string
	Target   string
	Status   Status
	Changed  bool
	Detail   string
	Err      string
}

func (o Outcome) Failed() bool { return o.Status == StatusFailed }

// Trigger is a pipeline trigger as reported by the factory.
type Trigger struct {
	Name         string
	Type         string
	RuntimeState string
}

// LinkedService carries the full properties payload of a factory linked
// service so an update can republish everything it read.
type LinkedService struct {
	Name       string
	Type       string
	Properties map[string]any
}

// ManagedEndpoint is a factory managed private endpoint with the properties
// an update must republish alongside the fqdn list.
type ManagedEndpoint struct {
	Name                  string
	FQDNs                 []string
	GroupID               string
	PrivateLinkResourceID string
}

// SyncStats summarizes one vault-to-vault secret copy.
type SyncStats struct {
	Copied  int
	Skipped int
}

// PoolClient manages batch pool capacity.
type PoolClient interface {
	NodeCount(ctx context.Context, ref domain.ResourceRef) (int, error)
	Resize(ctx context.Context, ref domain.ResourceRef, targetNodes int) error
}

// VaultClient copies secret-store contents between vaults. The collaborator
// owns the per-secret diffing; dryRun suppresses writes but still reports the
// copy set.
type VaultClient interface {
	SyncSecrets(ctx context.Context, from, to domain.ResourceRef, dryRun bool) (SyncStats, error)
}

// FactoryClient manages data factory triggers, linked services and pipelines.
type FactoryClient interface {
	ListTriggers(ctx context.Context, ref domain.ResourceRef) ([]Trigger, error)
	StopTrigger(ctx context.Context, ref domain.ResourceRef, name string) error
	StartTrigger(ctx context.Context, ref domain.ResourceRef, name string) error
	ListLinkedServices(ctx context.Context, ref domain.ResourceRef, types []string) ([]LinkedService, error)
	UpdateLinkedService(ctx context.Context, ref domain.ResourceRef, ls LinkedService) error
	RunPipeline(ctx context.Context, ref domain.ResourceRef, pipeline string, params map[string]any) (string, error)
	PipelineRunStatus(ctx context.Context, ref domain.ResourceRef, runID string) (string, error)
}

// Lock is a resource-group management lock.
type Lock struct {
	Name  string
	Level string
	Notes string
}

// LockClient releases and recreates resource-group locks around mutations.
type LockClient interface {
	ListLocks(ctx context.Context, resourceGroup string) ([]Lock, error)
	DeleteLock(ctx context.Context, resourceGroup, name string) error
	CreateLock(ctx context.Context, resourceGroup string, lock Lock) error
}

// EndpointClient manages the fqdn routing of factory managed private
// endpoints. A false second return from GetManagedEndpoint means the endpoint
// does not exist.
type EndpointClient interface {
	GetManagedEndpoint(ctx context.Context, ref domain.ResourceRef, name string) (ManagedEndpoint, bool, error)
	UpdateManagedEndpoint(ctx context.Context, ref domain.ResourceRef, ep ManagedEndpoint) error
}

// StorageClient initiates storage account failover.
type StorageClient interface {
	Failover(ctx context.Context, ref domain.ResourceRef) error
}

// label returns the domain tag correlated with entry i, falling back to the
// positional index when the plan carries no label for it.
func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return "#" + strconv.Itoa(i)
}

// forEach runs fn over n entries with bounded concurrency. Entries are
// independent, so a failing entry never cancels its siblings; fn records its
// own outcome by index.
func forEach(n, limit int, fn func(i int)) {
	if limit <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}
