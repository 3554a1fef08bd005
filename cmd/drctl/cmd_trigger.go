package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wqeqwqeq/drctl/internal/domain"
	"github.com/wqeqwqeq/drctl/internal/plan"
)

func newTriggerCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Stop source factory triggers or start DR factory triggers",
	}
	cmd.AddCommand(
		newTriggerSubCmd(logger, "stop", "Stop schedule and tumbling-window triggers on source factories", domain.CategoryTriggerStop),
		newTriggerSubCmd(logger, "start", "Start schedule and tumbling-window triggers on DR factories", domain.CategoryTriggerStart),
	)
	return cmd
}

func newTriggerSubCmd(logger *slog.Logger, use, short string, category domain.Category) *cobra.Command {
	var (
		sel         selectionFlags
		dryRun      bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
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
			orch := newOrchestrator(client, logger, executorOptions{concurrency: concurrency, upTarget: 1})
			report := orch.Execute(ctx, p, []domain.Category{category}, dryRun)
			return finishRun(ctx, logger, selection, report, dryRun)
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "list trigger shifts without issuing them")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent entries, 0 for sequential")
	return cmd
}
