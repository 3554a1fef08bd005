package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wqeqwqeq/drctl/internal/plan"
)

func newPlanCmd(logger *slog.Logger) *cobra.Command {
	var (
		sel       selectionFlags
		storage   bool
		snowflake bool
		azureSubs bool
		override  string
		out       string
		upload    bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build the failover plan document",
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte

			if override != "" {
				raw, err := os.ReadFile(override)
				if err != nil {
					return fmt.Errorf("read override: %w", err)
				}
				data, err = plan.Passthrough(raw)
				if err != nil {
					return err
				}
				logger.Info("override document validated", "source", override)
			} else {
				selection, err := sel.selection(storage, snowflake, azureSubs)
				if err != nil {
					return err
				}
				p, err := plan.Build(selection)
				if err != nil {
					return err
				}
				data, err = plan.Marshal(p)
				if err != nil {
					return err
				}
				logger.Info("plan built",
					"mode", selection.Mode,
					"scope", selection.Scope,
					"environment", selection.Environment,
					"storage", selection.Storage,
					"snowflake", selection.Snowflake,
					"azure", selection.Azure,
				)
			}

			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write plan: %w", err)
			}
			logger.Info("plan written", "path", out, "bytes", len(data))

			if upload {
				p, err := plan.Unmarshal(data)
				if err != nil {
					return err
				}
				store, err := newPlanStore(cmd.Context())
				if err != nil {
					return err
				}
				key := planKey(p.Selection, time.Now())
				if err := store.PutPlan(cmd.Context(), key, data); err != nil {
					return err
				}
				logger.Info("plan uploaded", "key", key)
			}
			return nil
		},
	}

	sel.register(cmd)
	cmd.Flags().BoolVar(&storage, "storage", false, "include storage account failover")
	cmd.Flags().BoolVar(&snowflake, "snowflake", false, "include Snowflake linked-service repointing")
	cmd.Flags().BoolVar(&azureSubs, "azure", false, "include pool scaling, secret sync and trigger shifts")
	cmd.Flags().StringVar(&override, "override", "", "validate and pass through an existing plan document instead of building one")
	cmd.Flags().StringVar(&out, "out", "build.json", "output path for the plan document")
	cmd.Flags().BoolVar(&upload, "upload", false, "also upload the plan to the object store")
	return cmd
}
