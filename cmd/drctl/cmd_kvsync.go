package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wqeqwqeq/drctl/internal/domain"
	"github.com/wqeqwqeq/drctl/internal/plan"
)

func newKVSyncCmd(logger *slog.Logger) *cobra.Command {
	var (
		sel         selectionFlags
		dryRun      bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "kvsync",
		Short: "Copy key-vault secrets from the source tier to DR",
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
			report := orch.Execute(ctx, p, []domain.Category{domain.CategoryKVSync}, dryRun)
			return finishRun(ctx, logger, selection, report, dryRun)
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "diff secrets without writing")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent entries, 0 for sequential")
	return cmd
}
