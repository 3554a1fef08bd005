package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wqeqwqeq/drctl/internal/domain"
	"github.com/wqeqwqeq/drctl/internal/execute"
	"github.com/wqeqwqeq/drctl/internal/ledger"
	"github.com/wqeqwqeq/drctl/internal/platform/azure"
	"github.com/wqeqwqeq/drctl/internal/platform/env"
	"github.com/wqeqwqeq/drctl/internal/platform/objectstore"
	"github.com/wqeqwqeq/drctl/internal/platform/postgres"
)

// errEntriesFailed distinguishes "the run completed but some entries failed"
// (exit 1) from configuration and document errors (exit 2).
var errEntriesFailed = errors.New("one or more plan entries failed")

// selectionFlags are the plan-selection inputs shared by every subcommand
// that resolves resources itself.
type selectionFlags struct {
	mode        string
	domain      string
	environment string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", string(domain.ModeFailover), "failover or failback")
	cmd.Flags().StringVar(&f.domain, "domain", domain.ScopeAll, "business domain, or All")
	cmd.Flags().StringVar(&f.environment, "environment", "", "source environment (qa or prod)")
}

// selection validates the shared flags into a Selection with the given
// subsystem toggles.
func (f *selectionFlags) selection(storage, snowflake, azureFlag bool) (domain.Selection, error) {
	mode, err := domain.ParseMode(f.mode)
	if err != nil {
		return domain.Selection{}, err
	}
	environment, err := domain.ParseEnvironment(f.environment)
	if err != nil {
		return domain.Selection{}, err
	}
	scope := strings.TrimSpace(f.domain)
	if scope != domain.ScopeAll {
		d, err := domain.ParseDomain(scope)
		if err != nil {
			return domain.Selection{}, err
		}
		scope = string(d)
	}
	return domain.Selection{
		Mode:        mode,
		Storage:     storage,
		Snowflake:   snowflake,
		Azure:       azureFlag,
		Scope:       scope,
		Environment: environment,
	}, nil
}

func newAzureClient(ctx context.Context) (*azure.Client, error) {
	cfg, err := azure.ConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("azure config: %w", err)
	}
	return azure.New(ctx, cfg)
}

// executorOptions tunes the category executors beyond what the plan carries.
type executorOptions struct {
	concurrency int
	upTarget    int

	oldFQDN string
	newFQDN string

	endpointHost      string
	endpointPrimary   string
	endpointSecondary string
}

// newOrchestrator wires every category executor against one authenticated
// client. The fqdn rewriter and the endpoint swapper are attached only when
// their inputs are supplied; the orchestrator warn-skips those categories
// otherwise.
func newOrchestrator(c *azure.Client, logger *slog.Logger, opts executorOptions) *execute.Orchestrator {
	factory := azure.NewFactoryService(c)
	o := &execute.Orchestrator{
		Storage:  &execute.StorageReplicator{Client: azure.NewStorageService(c), Logger: logger, Concurrency: opts.concurrency},
		Triggers: &execute.TriggerRunner{Client: factory, Locks: azure.NewLockService(c), Logger: logger, Concurrency: opts.concurrency},
		Pools:    &execute.PoolScaler{Client: azure.NewBatchService(c), UpTarget: opts.upTarget, Logger: logger, Concurrency: opts.concurrency},
		Vaults:   &execute.SecretSyncer{Client: azure.NewVaultService(c), Logger: logger, Concurrency: opts.concurrency},
		Logger:   logger,
	}
	if opts.oldFQDN != "" && opts.newFQDN != "" {
		o.Rewriter = &execute.FqdnRewriter{Client: factory, OldFQDN: opts.oldFQDN, NewFQDN: opts.newFQDN, Logger: logger, Concurrency: opts.concurrency}
	}
	if opts.endpointHost != "" {
		o.Endpoints = &execute.EndpointSwapper{
			Client:      factory,
			Host:        opts.endpointHost,
			Primary:     opts.endpointPrimary,
			Secondary:   opts.endpointSecondary,
			Logger:      logger,
			Concurrency: opts.concurrency,
		}
	}
	return o
}

// finishRun logs the report, records it to the ledger when one is configured,
// and maps entry failures to the exit-1 sentinel. A ledger write failure is
// logged but never masks the run result.
func finishRun(ctx context.Context, logger *slog.Logger, sel domain.Selection, report execute.Report, dryRun bool) error {
	failed := 0
	for _, o := range report.Outcomes {
		if o.Failed() {
			failed++
		}
	}
	logger.Info("run complete",
		"runId", report.RunID,
		"entries", len(report.Outcomes),
		"failed", failed,
		"dryRun", dryRun,
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	)

	if env.String("DATABASE_URL", "") != "" {
		if err := recordRun(ctx, sel, report, dryRun); err != nil {
			logger.Warn("ledger write failed", "runId", report.RunID, "error", err)
		}
	}

	if report.Failed() {
		return errEntriesFailed
	}
	return nil
}

func recordRun(ctx context.Context, sel domain.Selection, report execute.Report, dryRun bool) error {
	cfg, err := postgres.ConfigFromEnv()
	if err != nil {
		return err
	}
	db, err := postgres.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	store := ledger.NewStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	return store.RecordRun(ctx, sel, report, dryRun)
}

func newPlanStore(ctx context.Context) (*objectstore.PlanStore, error) {
	cfg, err := objectstore.ConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("object store config: %w", err)
	}
	client, err := objectstore.NewMinIOClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("object store client: %w", err)
	}
	if err := objectstore.EnsureBucket(ctx, client, cfg); err != nil {
		return nil, err
	}
	return objectstore.NewPlanStore(client, cfg.BucketPlans), nil
}

func planKey(sel domain.Selection, at time.Time) string {
	return fmt.Sprintf("plans/%s/%s/%s/%s.json",
		sel.Environment, sel.Mode, sel.Scope, at.UTC().Format("20060102T150405Z"))
}
