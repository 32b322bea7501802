package activities

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/stanstork/maintenance-api/internal/maintenance"
	"github.com/stanstork/maintenance-api/internal/temporal"
	"go.temporal.io/sdk/activity"
)

// Sweeper is the part of the maintenance engine the activities drive.
type Sweeper interface {
	ReevaluateAll(ctx context.Context) (maintenance.SweepResult, error)
}

// DefaultHeartbeatInterval keeps heartbeats well inside the workflow's
// one minute heartbeat timeout.
const DefaultHeartbeatInterval = 15 * time.Second

type Activities struct {
	Engine Sweeper
	// HeartbeatInterval defaults to DefaultHeartbeatInterval.
	HeartbeatInterval time.Duration
}

// ReevaluateAllActivity runs one sweep. Per-equipment failures are reported
// in the result; only a failure to run the sweep at all fails the activity.
func (a *Activities) ReevaluateAllActivity(ctx context.Context) (temporal.SweepReport, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Re-evaluating all equipment")

	activity.RecordHeartbeat(ctx, "sweep-started")
	stop := a.heartbeat(ctx)
	result, err := a.Engine.ReevaluateAll(ctx)
	stop()
	report := temporal.SweepReport{
		Evaluated:  result.Evaluated,
		Notified:   result.Notified,
		Suppressed: result.Suppressed,
		Failed:     result.Failed,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
	}
	if err == nil {
		return report, nil
	}

	if result.Evaluated == 0 && result.Failed == 0 {
		return report, pkgerrors.Wrap(err, "failed to run maintenance sweep")
	}
	report.Errors = flatten(err)
	logger.Warn("Sweep finished with per-equipment failures", "failed", result.Failed)
	return report, nil
}

// heartbeat records a heartbeat on every interval until the returned
// function is called.
func (a *Activities) heartbeat(ctx context.Context) func() {
	interval := a.HeartbeatInterval
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				activity.RecordHeartbeat(ctx, "sweeping")
			}
		}
	}()
	return func() {
		close(done)
		<-stopped
	}
}

func flatten(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
