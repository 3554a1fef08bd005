package execute

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wqeqwqeq/drctl/internal/domain"
)

// Terminal pipeline run states reported by the factory.
const (
	runStatusSucceeded = "Succeeded"
	runStatusFailed    = "Failed"
	runStatusCancelled = "Cancelled"
)

// ConnectivityTester runs the Snowflake connectivity-test pipeline on each
// linked-service factory and polls the run to a terminal status. Used after a
// rewrite to confirm the repointed account actually answers.
type ConnectivityTester struct {
	Client       FactoryClient
	Pipeline     string
	PollInterval time.Duration
	Timeout      time.Duration
	Logger       *slog.Logger
}

const defaultConnectivityPipeline = "PPL_Snowflake_connectivitytest"

func (c *ConnectivityTester) Run(ctx context.Context, refs []domain.ResourceRef, labels []string) []Outcome {
	pipeline := c.Pipeline
	if pipeline == "" {
		pipeline = defaultConnectivityPipeline
	}
	poll := c.PollInterval
	if poll <= 0 {
		poll = 10 * time.Second
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	outcomes := make([]Outcome, 0, len(refs))
	for i, ref := range refs {
		outcomes = append(outcomes, c.testOne(ctx, ref, label(labels, i), pipeline, poll, timeout))
	}
	return outcomes
}

func (c *ConnectivityTester) testOne(ctx context.Context, ref domain.ResourceRef, dom, pipeline string, poll, timeout time.Duration) Outcome {
	out := Outcome{Category: domain.CategoryLinkedServiceFQDN, Domain: dom, Target: ref.Name + "/" + pipeline}

	runID, err := c.Client.RunPipeline(ctx, ref, pipeline, nil)
	if err != nil {
		out.Status = StatusFailed
		out.Err = fmt.Sprintf("run pipeline: %v", err)
		return out
	}
	c.Logger.Info("started connectivity test", "factory", ref.Name, "pipeline", pipeline, "runId", runID)

	deadline := time.Now().Add(timeout)
	for {
		status, err := c.Client.PipelineRunStatus(ctx, ref, runID)
		if err != nil {
			out.Status = StatusFailed
			out.Err = fmt.Sprintf("poll run %s: %v", runID, err)
			return out
		}
		switch status {
		case runStatusSucceeded:
			out.Status = StatusSuccess
			out.Detail = "connectivity test succeeded"
			return out
		case runStatusFailed, runStatusCancelled:
			out.Status = StatusFailed
			out.Err = fmt.Sprintf("connectivity test run %s ended %s", runID, status)
			return out
		}
		if time.Now().After(deadline) {
			out.Status = StatusFailed
			out.Err = fmt.Sprintf("connectivity test run %s still %s after %s", runID, status, timeout)
			return out
		}
		select {
		case <-ctx.Done():
			out.Status = StatusFailed
			out.Err = ctx.Err().Error()
			return out
		case <-time.After(poll):
		}
	}
}
