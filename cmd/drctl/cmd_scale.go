package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wqeqwqeq/drctl/internal/domain"
	"github.com/wqeqwqeq/drctl/internal/plan"
)

func newScaleCmd(logger *slog.Logger) *cobra.Command {
	var (
		sel         selectionFlags
		dryRun      bool
		upTarget    int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "scale",
		Short: "Drain source batch pools and raise their DR counterparts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			selection, err := sel.selection(false, false, true)
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
			orch := newOrchestrator(client, logger, executorOptions{concurrency: concurrency, upTarget: upTarget})
			steps := []domain.Category{domain.CategoryScaleDown, domain.CategoryScaleUp}
			report := orch.Execute(ctx, p, steps, dryRun)
			return finishRun(ctx, logger, selection, report, dryRun)
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "preview without resizing")
	cmd.Flags().IntVar(&upTarget, "scale-up-target", 1, "dedicated node target for pools taking over")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent entries per category, 0 for sequential")
	return cmd
}
