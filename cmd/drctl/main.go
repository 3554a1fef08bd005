// Command drctl builds and executes disaster-recovery failover plans for the
// Azure estate: storage failover, Snowflake linked-service repointing, managed
// private endpoint swaps, trigger quiesce and resume, batch pool drain and
// raise, and key-vault secret sync.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wqeqwqeq/drctl/internal/platform/env"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(logger)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errEntriesFailed) {
			return 1
		}
		logger.Error("command failed", "error", err)
		return 2
	}
	return 0
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if strings.EqualFold(env.String("DRCTL_LOG_LEVEL", "info"), "debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "drctl",
		Short:         "Disaster-recovery plan generation and execution for the Azure estate",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newPlanCmd(logger),
		newRunCmd(logger),
		newScaleCmd(logger),
		newKVSyncCmd(logger),
		newTriggerCmd(logger),
		newFqdnCmd(logger),
		newEndpointCmd(logger),
		newConnectivityCmd(logger),
	)
	return root
}
