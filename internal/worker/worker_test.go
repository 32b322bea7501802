package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/maintenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEngine struct {
	calls atomic.Int32
	err   error
	block chan struct{}
}

func (e *countingEngine) ReevaluateAll(context.Context) (maintenance.SweepResult, error) {
	e.calls.Add(1)
	if e.block != nil {
		<-e.block
	}
	res := maintenance.SweepResult{Evaluated: 2}
	if e.err != nil {
		res.Failed = 1
	}
	return res, e.err
}

func TestNewWorker_Validates(t *testing.T) {
	_, err := NewWorker(WorkerConfig{Interval: time.Minute}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewWorker(WorkerConfig{Engine: &countingEngine{}}, zerolog.Nop())
	assert.Error(t, err)
}

func TestWorker_RunOnceRecordsResult(t *testing.T) {
	engine := &countingEngine{}
	w, err := NewWorker(WorkerConfig{Engine: engine, Interval: time.Minute}, zerolog.Nop())
	require.NoError(t, err)

	_, ok := w.LastResult()
	assert.False(t, ok)

	require.NoError(t, w.RunOnce(context.Background()))
	last, ok := w.LastResult()
	require.True(t, ok)
	assert.Equal(t, 2, last.Evaluated)
}

func TestWorker_RunOnceWrapsFailures(t *testing.T) {
	engine := &countingEngine{err: errors.New("insert failed")}
	w, err := NewWorker(WorkerConfig{Engine: engine, Interval: time.Minute}, zerolog.Nop())
	require.NoError(t, err)

	err = w.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 failure(s)")
	assert.Contains(t, err.Error(), "insert failed")
}

func TestWorker_SkipsOverlappingRuns(t *testing.T) {
	engine := &countingEngine{block: make(chan struct{})}
	w, err := NewWorker(WorkerConfig{Engine: engine, Interval: time.Minute}, zerolog.Nop())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, w.RunOnce(context.Background()))
	}()
	require.Eventually(t, func() bool { return engine.calls.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, w.RunOnce(context.Background()))
	close(engine.block)
	wg.Wait()
	assert.Equal(t, int32(1), engine.calls.Load())
}

func TestWorker_StartRunsOnStartAndStops(t *testing.T) {
	engine := &countingEngine{}
	w, err := NewWorker(WorkerConfig{Engine: engine, Interval: time.Hour, RunOnStart: true}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return engine.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_StartTicks(t *testing.T) {
	engine := &countingEngine{}
	w, err := NewWorker(WorkerConfig{Engine: engine, Interval: 5 * time.Millisecond}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	assert.Eventually(t, func() bool { return engine.calls.Load() >= 2 }, time.Second, time.Millisecond)
}
