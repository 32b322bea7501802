package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
)

// Sink persists decided notifications. Insert must fail with
// repository.ErrDuplicateUnread when an unread notification of the same type
// already exists for the equipment.
type Sink interface {
	FindUnreadByEquipmentAndType(ctx context.Context, equipmentID string, notifType models.NotificationType) (*models.Notification, error)
	Insert(ctx context.Context, notif models.Notification) (models.Notification, error)
}

type EquipmentLister interface {
	ListAll(ctx context.Context) ([]models.Equipment, error)
}

// Outcome describes one evaluation of an equipment.
type Outcome struct {
	EquipmentID    string               `json:"equipment_id"`
	Classification Classification       `json:"classification"`
	Notification   *models.Notification `json:"notification,omitempty"`
	Suppressed     bool                 `json:"suppressed"`
}

type SweepResult struct {
	Evaluated  int       `json:"evaluated"`
	Notified   int       `json:"notified"`
	Suppressed int       `json:"suppressed"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Engine applies classification and notification decision to equipment,
// either for a single write or as a sweep over every record.
type Engine struct {
	sink      Sink
	equipment EquipmentLister
	clock     Clock
	logger    zerolog.Logger
	locks     *keyedMutex
}

func NewEngine(sink Sink, equipment EquipmentLister, clock Clock, logger zerolog.Logger) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{
		sink:      sink,
		equipment: equipment,
		clock:     clock,
		logger:    logger.With().Str("component", "maintenance_engine").Logger(),
		locks:     newKeyedMutex(),
	}
}

func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

func (e *Engine) Classify(eq models.Equipment) Classification {
	return ClassifyEquipment(eq, e.clock.Now())
}

// Evaluate classifies eq and, when warranted, inserts a notification unless
// an unread one of the same type already exists for it.
func (e *Engine) Evaluate(ctx context.Context, eq models.Equipment) (Outcome, error) {
	now := e.clock.Now()
	classification := ClassifyEquipment(eq, now)
	out := Outcome{EquipmentID: eq.ID, Classification: classification}

	if !eq.HasSchedule() {
		return out, nil
	}
	candidate, ok := Decide(eq, classification, now)
	if !ok {
		return out, nil
	}

	unlock := e.locks.Lock(eq.ID)
	defer unlock()

	existing, err := e.sink.FindUnreadByEquipmentAndType(ctx, eq.ID, candidate.Type)
	if err != nil {
		return out, fmt.Errorf("check unread %s notifications for equipment %s: %w", candidate.Type, eq.ID, err)
	}
	if existing != nil {
		out.Suppressed = true
		e.logger.Debug().
			Str("equipment_id", eq.ID).
			Str("type", string(candidate.Type)).
			Str("existing_id", existing.ID).
			Msg("unread notification already exists")
		return out, nil
	}

	created, err := e.sink.Insert(ctx, candidate)
	if errors.Is(err, repository.ErrDuplicateUnread) {
		out.Suppressed = true
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("insert %s notification for equipment %s: %w", candidate.Type, eq.ID, err)
	}

	e.logger.Info().
		Str("equipment_id", eq.ID).
		Str("type", string(created.Type)).
		Str("notification_id", created.ID).
		Msg("maintenance notification created")
	out.Notification = &created
	return out, nil
}

// ReevaluateAll applies Evaluate to every equipment record. A failure on one
// record does not stop the sweep; all failures are returned joined.
func (e *Engine) ReevaluateAll(ctx context.Context) (SweepResult, error) {
	result := SweepResult{StartedAt: e.clock.Now()}

	all, err := e.equipment.ListAll(ctx)
	if err != nil {
		return result, fmt.Errorf("list equipment: %w", err)
	}

	var errs []error
	for _, eq := range all {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		out, err := e.Evaluate(ctx, eq)
		result.Evaluated++
		switch {
		case err != nil:
			result.Failed++
			errs = append(errs, err)
			e.logger.Warn().Err(err).Str("equipment_id", eq.ID).Msg("sweep evaluation failed")
		case out.Notification != nil:
			result.Notified++
		case out.Suppressed:
			result.Suppressed++
		}
	}

	result.FinishedAt = e.clock.Now()
	e.logger.Info().
		Int("evaluated", result.Evaluated).
		Int("notified", result.Notified).
		Int("suppressed", result.Suppressed).
		Int("failed", result.Failed).
		Msg("maintenance sweep finished")
	return result, errors.Join(errs...)
}
