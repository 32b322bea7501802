package worker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/maintenance"
)

// Engine is the part of the maintenance engine the worker drives.
type Engine interface {
	ReevaluateAll(ctx context.Context) (maintenance.SweepResult, error)
}

type WorkerConfig struct {
	Engine   Engine
	Interval time.Duration
	// RunOnStart triggers a sweep immediately instead of waiting one interval.
	RunOnStart bool
}

// Worker periodically re-evaluates every equipment so that status changes
// caused by the passage of time raise notifications without a write.
type Worker struct {
	cfg    WorkerConfig
	logger zerolog.Logger

	mu      sync.Mutex
	running bool
	last    *maintenance.SweepResult
}

func NewWorker(cfg WorkerConfig, logger zerolog.Logger) (*Worker, error) {
	if cfg.Engine == nil {
		return nil, errors.New("sweep worker requires an engine")
	}
	if cfg.Interval <= 0 {
		return nil, errors.Errorf("invalid sweep interval %s", cfg.Interval)
	}
	return &Worker{
		cfg:    cfg,
		logger: logger.With().Str("component", "sweep_worker").Logger(),
	}, nil
}

func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().Dur("interval", w.cfg.Interval).Msg("Worker started, sweeping equipment...")
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	if w.cfg.RunOnStart {
		w.runLogged(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Worker stopped")
			return ctx.Err()
		case <-ticker.C:
			w.runLogged(ctx)
		}
	}
}

func (w *Worker) runLogged(ctx context.Context) {
	if err := w.RunOnce(ctx); err != nil {
		// Log the error, but keep sweeping on the next tick
		w.logger.Error().Err(err).Msg("error sweeping equipment")
	}
}

// RunOnce performs a single sweep. Overlapping calls are skipped.
func (w *Worker) RunOnce(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Warn().Msg("previous sweep still running, skipping")
		return nil
	}
	w.running = true
	w.mu.Unlock()

	result, err := w.cfg.Engine.ReevaluateAll(ctx)

	w.mu.Lock()
	w.running = false
	w.last = &result
	w.mu.Unlock()

	if err != nil {
		return errors.Wrapf(err, "sweep finished with %d failure(s)", result.Failed)
	}
	return nil
}

// LastResult returns the outcome of the most recent sweep, if any.
func (w *Worker) LastResult() (maintenance.SweepResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return maintenance.SweepResult{}, false
	}
	return *w.last, true
}
