package temporal

import "time"

// TaskQueueName is the name of the Temporal task queue used for maintenance sweeps.
const TaskQueueName = "MAINTENANCE_SWEEP"

// SweepWorkflowID identifies the single cron workflow that runs the sweep.
const SweepWorkflowID = "maintenance-sweep"

// DefaultActivityTimeout bounds a single sweep over the whole fleet.
const DefaultActivityTimeout = 10 * time.Minute

// SweepParams defines the input for the sweep workflow.
type SweepParams struct {
	// Trigger is recorded in the logs, e.g. "cron" or "manual".
	Trigger string
}

// SweepReport summarizes one sweep run.
type SweepReport struct {
	Evaluated  int
	Notified   int
	Suppressed int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
	// Errors holds the messages of per-equipment failures.
	Errors []string
}
