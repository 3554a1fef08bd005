package main

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wqeqwqeq/drctl/internal/execute"
	"github.com/wqeqwqeq/drctl/internal/plan"
	"github.com/wqeqwqeq/drctl/internal/platform/azure"
)

func newConnectivityCmd(logger *slog.Logger) *cobra.Command {
	var (
		sel      selectionFlags
		drTier   bool
		pipeline string
		poll     time.Duration
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "connectivity",
		Short: "Run the Snowflake connectivity-test pipeline on each factory",
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
			tester := &execute.ConnectivityTester{
				Client:       azure.NewFactoryService(client),
				Pipeline:     pipeline,
				PollInterval: poll,
				Timeout:      timeout,
				Logger:       logger,
			}
			report := execute.Report{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
			report.Outcomes = tester.Run(ctx, p.LinkedServiceFQDN, p.EntryDomains())
			report.FinishedAt = time.Now().UTC()
			return finishRun(ctx, logger, selection, report, false)
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVar(&drTier, "dr", true, "test the DR-tier factories instead of the source tier")
	cmd.Flags().StringVar(&pipeline, "pipeline", "", "pipeline name, defaults to the connectivity-test pipeline")
	cmd.Flags().DurationVar(&poll, "poll-interval", 10*time.Second, "pipeline status poll interval")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "per-factory pipeline run timeout")
	return cmd
}
