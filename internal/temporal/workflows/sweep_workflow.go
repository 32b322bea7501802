package workflows

import (
	"time"

	"github.com/stanstork/maintenance-api/internal/temporal"
	"github.com/stanstork/maintenance-api/internal/temporal/activities"
	sdktemporal "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// MaintenanceSweepWorkflow re-evaluates every equipment once. It is started
// with a cron schedule so each run is a fresh workflow execution.
func MaintenanceSweepWorkflow(ctx workflow.Context, params temporal.SweepParams) (temporal.SweepReport, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: temporal.DefaultActivityTimeout,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &sdktemporal.RetryPolicy{
			InitialInterval:    10 * time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	logger := workflow.GetLogger(ctx)
	logger.Info("Starting maintenance sweep", "trigger", params.Trigger)

	// The actual implementation is on the worker; this is just a proxy.
	var a *activities.Activities

	var report temporal.SweepReport
	if err := workflow.ExecuteActivity(ctx, a.ReevaluateAllActivity).Get(ctx, &report); err != nil {
		logger.Error("Maintenance sweep failed.", "error", err)
		return report, err
	}

	if report.Failed > 0 {
		logger.Warn("Maintenance sweep finished with failures.", "failed", report.Failed, "errors", report.Errors)
	}
	logger.Info("Maintenance sweep completed.",
		"evaluated", report.Evaluated,
		"notified", report.Notified,
		"suppressed", report.Suppressed)
	return report, nil
}
