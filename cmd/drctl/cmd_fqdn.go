package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wqeqwqeq/drctl/internal/domain"
	"github.com/wqeqwqeq/drctl/internal/plan"
)

func newFqdnCmd(logger *slog.Logger) *cobra.Command {
	var (
		sel         selectionFlags
		drTier      bool
		oldFQDN     string
		newFQDN     string
		dryRun      bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "fqdn",
		Short: "Repoint Snowflake linked services to another account FQDN",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			selection, err := sel.selection(false, true, drTier)
			if err != nil {
				return err
			}
			p, err := plan.Build(selection)
			if err != nil {
				return err
			}
			client, err := newAzureClient(ctx)
			if err != nil {
				return err
			}
			orch := newOrchestrator(client, logger, executorOptions{concurrency: concurrency, upTarget: 1, oldFQDN: oldFQDN, newFQDN: newFQDN})
			report := orch.Execute(ctx, p, []domain.Category{domain.CategoryLinkedServiceFQDN}, dryRun)
			return finishRun(ctx, logger, selection, report, dryRun)
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVar(&drTier, "dr", true, "rewrite the DR-tier factories instead of the source tier")
	cmd.Flags().StringVar(&oldFQDN, "old-fqdn", "", "Snowflake account FQDN to replace")
	cmd.Flags().StringVar(&newFQDN, "new-fqdn", "", "Snowflake account FQDN to point at")
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "report would-be rewrites without republishing")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent entries, 0 for sequential")
	_ = cmd.MarkFlagRequired("old-fqdn")
	_ = cmd.MarkFlagRequired("new-fqdn")
	return cmd
}
