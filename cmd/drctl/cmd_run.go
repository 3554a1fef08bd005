package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/wqeqwqeq/drctl/internal/domain"
	"github.com/wqeqwqeq/drctl/internal/plan"
	"github.com/wqeqwqeq/drctl/internal/runbook"
)

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		planPath    string
		planKeyFlag string
		runbookPath string
		dryRun      bool
		oldFQDN     string
		newFQDN     string
		upTarget    int
		epHost      string
		epPrimary   string
		epSecondary string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a plan document per runbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var raw []byte
			switch {
			case planPath != "" && planKeyFlag != "":
				return errors.New("--plan and --plan-key are mutually exclusive")
			case planPath != "":
				var err error
				raw, err = os.ReadFile(planPath)
				if err != nil {
					return fmt.Errorf("read plan: %w", err)
				}
			case planKeyFlag != "":
				store, err := newPlanStore(ctx)
				if err != nil {
					return err
				}
				raw, err = store.GetPlan(ctx, planKeyFlag)
				if err != nil {
					return err
				}
			default:
				return errors.New("either --plan or --plan-key is required")
			}

			p, err := plan.Unmarshal(raw)
			if err != nil {
				return err
			}

			rb := runbook.Default()
			if runbookPath != "" {
				input, err := os.ReadFile(runbookPath)
				if err != nil {
					return fmt.Errorf("read runbook: %w", err)
				}
				rb, err = runbook.ParseSpec(input)
				if err != nil {
					return err
				}
			}
			steps := rb.Categories()

			rewriting := p.Has(domain.CategoryLinkedServiceFQDN) && slices.Contains(steps, domain.CategoryLinkedServiceFQDN)
			if rewriting && (oldFQDN == "" || newFQDN == "") {
				return errors.New("--old-fqdn and --new-fqdn are required when the plan carries ADFLinkedServiceFQDN")
			}

			client, err := newAzureClient(ctx)
			if err != nil {
				return err
			}
			orch := newOrchestrator(client, logger, executorOptions{
				concurrency:       rb.Concurrency,
				upTarget:          upTarget,
				oldFQDN:           oldFQDN,
				newFQDN:           newFQDN,
				endpointHost:      epHost,
				endpointPrimary:   epPrimary,
				endpointSecondary: epSecondary,
			})
			report := orch.Execute(ctx, p, steps, dryRun)
			return finishRun(ctx, logger, p.Selection, report, dryRun)
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "path to the plan document")
	cmd.Flags().StringVar(&planKeyFlag, "plan-key", "", "object-store key of the plan document")
	cmd.Flags().StringVar(&runbookPath, "runbook", "", "path to a runbook overriding order and concurrency")
	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "preview every action without mutating anything")
	cmd.Flags().StringVar(&oldFQDN, "old-fqdn", "", "Snowflake account FQDN to replace")
	cmd.Flags().StringVar(&newFQDN, "new-fqdn", "", "Snowflake account FQDN to point at")
	cmd.Flags().IntVar(&upTarget, "scale-up-target", 1, "dedicated node target for pools taking over")
	cmd.Flags().StringVar(&epHost, "endpoint-host", "", "private host to move between managed private endpoints")
	cmd.Flags().StringVar(&epPrimary, "endpoint-primary", "snowflake_east", "managed private endpoint serving the host before failover")
	cmd.Flags().StringVar(&epSecondary, "endpoint-secondary", "snowflake_west", "managed private endpoint serving the host after failover")
	return cmd
}
