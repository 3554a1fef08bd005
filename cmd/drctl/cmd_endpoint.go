package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wqeqwqeq/drctl/internal/domain"
	"github.com/wqeqwqeq/drctl/internal/plan"
)

func newEndpointCmd(logger *slog.Logger) *cobra.Command {
	var (
		sel         selectionFlags
		drTier      bool
		host        string
		primary     string
		secondary   string
		dryRun      bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Move a private host between Snowflake managed private endpoints",
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
			orch := newOrchestrator(client, logger, executorOptions{
				concurrency:       concurrency,
				upTarget:          1,
				endpointHost:      host,
				endpointPrimary:   primary,
				endpointSecondary: secondary,
			})
			report := orch.Execute(ctx, p, []domain.Category{domain.CategoryPrivateEndpoint}, dryRun)
			return finishRun(ctx, logger, selection, report, dryRun)
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVar(&drTier, "dr", true, "swap on the DR-tier factories instead of the source tier")
	cmd.Flags().StringVar(&host, "host", "", "private host to move between endpoints")
	cmd.Flags().StringVar(&primary, "primary", "snowflake_east", "endpoint serving the host before failover")
	cmd.Flags().StringVar(&secondary, "secondary", "snowflake_west", "endpoint serving the host after failover")
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "report would-be moves without republishing")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent entries, 0 for sequential")
	_ = cmd.MarkFlagRequired("host")
	return cmd
}
