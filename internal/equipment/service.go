package equipment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/attachments"
	"github.com/stanstork/maintenance-api/internal/maintenance"
	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
)

var (
	ErrRecordDateRequired  = errors.New("maintenance date is required")
	ErrRecordDescRequired  = errors.New("maintenance description is required")
	ErrRecordDateInFuture  = errors.New("maintenance date cannot be in the future")
	ErrAttachmentsDisabled = errors.New("attachments are not configured")
)

const warningNotificationFail = "no se pudo generar la notificación de mantenimiento"

// View is an equipment record together with its derived maintenance state.
type View struct {
	models.Equipment
	maintenance.Classification
}

// WriteResult is returned by every write. Warnings carry notification
// failures, which never fail the write itself.
type WriteResult struct {
	Equipment    View                 `json:"equipment"`
	Notification *models.Notification `json:"notification,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
}

type ListOptions struct {
	Scope  Scope
	Status maintenance.Status
}

type RecordResult struct {
	Record       models.MaintenanceRecord `json:"record"`
	Equipment    View                     `json:"equipment"`
	Advanced     bool                     `json:"advanced"`
	Notification *models.Notification     `json:"notification,omitempty"`
	Warnings     []string                 `json:"warnings,omitempty"`
}

type Service struct {
	equipment repository.EquipmentRepository
	records   repository.MaintenanceRecordRepository
	engine    *maintenance.Engine
	files     *attachments.Store
	logger    zerolog.Logger
}

func NewService(
	equipment repository.EquipmentRepository,
	records repository.MaintenanceRecordRepository,
	engine *maintenance.Engine,
	files *attachments.Store,
	logger zerolog.Logger,
) *Service {
	return &Service{
		equipment: equipment,
		records:   records,
		engine:    engine,
		files:     files,
		logger:    logger.With().Str("component", "equipment_service").Logger(),
	}
}

func (s *Service) view(eq models.Equipment) View {
	return View{Equipment: eq, Classification: s.engine.Classify(eq)}
}

func (s *Service) Get(ctx context.Context, id string) (View, error) {
	eq, err := s.equipment.Get(ctx, strings.TrimSpace(id))
	if err != nil {
		return View{}, err
	}
	return s.view(eq), nil
}

// GetScoped behaves like Get but hides equipment outside scope as not found.
func (s *Service) GetScoped(ctx context.Context, id string, scope Scope) (View, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if !scope.Allows(v.Equipment) {
		return View{}, repository.ErrNotFound
	}
	return v, nil
}

func (s *Service) List(ctx context.Context, opts ListOptions) ([]View, error) {
	if opts.Scope.Empty() {
		return []View{}, nil
	}
	all, err := s.equipment.List(ctx, opts.Scope.Filter())
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	views := make([]View, 0, len(all))
	for _, eq := range all {
		v := s.view(eq)
		if opts.Status != "" && v.Status != opts.Status {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) Create(ctx context.Context, eq models.Equipment) (WriteResult, error) {
	eq.Normalize()
	if eq.ID == "" {
		eq.ID = uuid.NewString()
	}
	if err := eq.Validate(); err != nil {
		return WriteResult{}, err
	}

	created, err := s.equipment.Create(ctx, eq)
	if err != nil {
		return WriteResult{}, err
	}
	s.logger.Info().Str("equipment_id", created.ID).Msg("equipment created")
	return s.afterWrite(ctx, created), nil
}

func (s *Service) Update(ctx context.Context, eq models.Equipment) (WriteResult, error) {
	eq.Normalize()
	if err := eq.Validate(); err != nil {
		return WriteResult{}, err
	}

	updated, err := s.equipment.Update(ctx, eq)
	if err != nil {
		return WriteResult{}, err
	}
	s.logger.Info().Str("equipment_id", updated.ID).Msg("equipment updated")
	return s.afterWrite(ctx, updated), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.equipment.Delete(ctx, strings.TrimSpace(id)); err != nil {
		return err
	}
	s.logger.Info().Str("equipment_id", id).Msg("equipment deleted")
	return nil
}

// afterWrite runs the notification decision for a freshly persisted record.
func (s *Service) afterWrite(ctx context.Context, eq models.Equipment) WriteResult {
	result := WriteResult{Equipment: s.view(eq)}
	out, err := s.engine.Evaluate(ctx, eq)
	if err != nil {
		s.logger.Warn().Err(err).Str("equipment_id", eq.ID).Msg("maintenance notification failed after write")
		result.Warnings = append(result.Warnings, warningNotificationFail)
		return result
	}
	result.Equipment.Classification = out.Classification
	result.Notification = out.Notification
	return result
}

// AddMaintenanceRecord stores a performed maintenance. When its date is later
// than the equipment's last maintenance date the equipment is advanced and
// evaluated again.
func (s *Service) AddMaintenanceRecord(ctx context.Context, rec models.MaintenanceRecord, file *attachments.Upload) (RecordResult, error) {
	rec.EquipmentID = strings.TrimSpace(rec.EquipmentID)
	rec.Description = strings.TrimSpace(rec.Description)
	rec.PerformedBy = strings.TrimSpace(rec.PerformedBy)
	if rec.Date.IsZero() {
		return RecordResult{}, ErrRecordDateRequired
	}
	if rec.Description == "" {
		return RecordResult{}, ErrRecordDescRequired
	}
	now := s.engine.Now()
	if rec.Date.After(models.DateOf(now).Time) {
		return RecordResult{}, ErrRecordDateInFuture
	}
	if _, err := s.equipment.Get(ctx, rec.EquipmentID); err != nil {
		return RecordResult{}, err
	}

	if file != nil {
		if s.files == nil {
			return RecordResult{}, ErrAttachmentsDisabled
		}
		name, err := s.files.Save(file.Name, file.Reader)
		if err != nil {
			return RecordResult{}, err
		}
		rec.AttachmentPath = &name
	}

	rec.ID = uuid.NewString()
	rec.CreatedAt = now.UTC()
	created, err := s.records.Create(ctx, rec)
	if err != nil {
		if rec.AttachmentPath != nil {
			_ = s.files.Remove(*rec.AttachmentPath)
		}
		return RecordResult{}, fmt.Errorf("create maintenance record: %w", err)
	}

	eq, advanced, err := s.equipment.AdvanceLastMaintenance(ctx, rec.EquipmentID, rec.Date)
	if err != nil {
		return RecordResult{}, fmt.Errorf("advance last maintenance of %s: %w", rec.EquipmentID, err)
	}

	result := RecordResult{Record: created, Advanced: advanced, Equipment: s.view(eq)}
	if advanced {
		write := s.afterWrite(ctx, eq)
		result.Equipment = write.Equipment
		result.Notification = write.Notification
		result.Warnings = write.Warnings
	}
	s.logger.Info().
		Str("equipment_id", rec.EquipmentID).
		Str("record_id", created.ID).
		Bool("advanced", advanced).
		Msg("maintenance record added")
	return result, nil
}

func (s *Service) ListRecords(ctx context.Context, equipmentID string) ([]models.MaintenanceRecord, error) {
	if _, err := s.equipment.Get(ctx, strings.TrimSpace(equipmentID)); err != nil {
		return nil, err
	}
	return s.records.ListByEquipment(ctx, strings.TrimSpace(equipmentID))
}
