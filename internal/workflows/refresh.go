package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// RefreshInput is the input for the dataset refresh workflow.
type RefreshInput struct {
	// Source labels the refresh event so consumers can tell scheduled
	// refreshes apart from API-triggered ones.
	Source string
}

// RefreshResult summarizes one refresh run.
type RefreshResult struct {
	ProductionSampled  int
	ConsumptionSampled int
}

// DatasetRefreshWorkflow samples current loads across all sites, persists
// the readings, and broadcasts a refresh so every running map session
// reconciles against fresh data. Steps are activities so each gets its own
// retry budget; a failed broadcast does not re-run the sampling.
func DatasetRefreshWorkflow(ctx workflow.Context, input RefreshInput) (RefreshResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting dataset refresh", "source", input.Source)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var result RefreshResult
	if err := workflow.ExecuteActivity(ctx, "SampleSiteLoads").Get(ctx, &result); err != nil {
		return result, err
	}

	if err := workflow.ExecuteActivity(ctx, "BroadcastRefresh", input.Source).Get(ctx, nil); err != nil {
		logger.Warn("refresh broadcast failed, data is persisted but sessions are stale", "error", err)
		return result, err
	}

	logger.Info("Dataset refresh complete",
		"production", result.ProductionSampled,
		"consumption", result.ConsumptionSampled)
	return result, nil
}
