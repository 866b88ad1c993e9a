package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// HousekeepingInput is the input for the alert housekeeping workflow.
type HousekeepingInput struct {
	// GraceHours keeps expired rows around for a while so that a report a
	// client is still displaying resolves shortly after expiry.
	GraceHours int
}

// HousekeepingWorkflow purges expired parking alerts and announces the sweep
// to live map clients when anything was removed. It is meant to run on a
// cron schedule; each run is a single sweep.
func HousekeepingWorkflow(ctx workflow.Context, input HousekeepingInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting alert housekeeping", "graceHours", input.GraceHours)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var purged int64
	if err := workflow.ExecuteActivity(ctx, "PurgeExpiredAlerts", input.GraceHours).Get(ctx, &purged); err != nil {
		return err
	}

	if purged > 0 {
		// Best effort; a missed announcement only delays map refresh.
		if err := workflow.ExecuteActivity(ctx, "AnnouncePurge", purged).Get(ctx, nil); err != nil {
			logger.Warn("purge announcement failed", "error", err)
		}
	}

	logger.Info("Alert housekeeping done", "purged", purged)
	return nil
}
