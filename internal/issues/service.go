package issues

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/attachments"
	"github.com/stanstork/maintenance-api/internal/equipment"
	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/notification"
	"github.com/stanstork/maintenance-api/internal/repository"
)

var (
	ErrDescriptionRequired = errors.New("issue description is required")
	ErrInvalidSeverity     = errors.New("invalid issue severity")
	ErrInvalidStatus       = errors.New("invalid issue status")
	ErrAttachmentsDisabled = errors.New("attachments are not configured")
)

const warningIssueNotification = "no se pudo generar la notificación de la incidencia"

type CreateResult struct {
	Issue    models.IssueReport `json:"issue"`
	Warnings []string           `json:"warnings,omitempty"`
}

type ListOptions struct {
	Scope    equipment.Scope
	Status   models.IssueStatus
	Severity models.IssueSeverity
}

type Service struct {
	issues        repository.IssueRepository
	equipment     repository.EquipmentRepository
	notifications notification.Service
	files         *attachments.Store
	now           func() time.Time
	logger        zerolog.Logger
}

func NewService(
	issues repository.IssueRepository,
	equipmentRepo repository.EquipmentRepository,
	notifications notification.Service,
	files *attachments.Store,
	logger zerolog.Logger,
) *Service {
	return &Service{
		issues:        issues,
		equipment:     equipmentRepo,
		notifications: notifications,
		files:         files,
		now:           time.Now,
		logger:        logger.With().Str("component", "issue_service").Logger(),
	}
}

// Create stores a new issue report and raises a new_issue notification.
// A failed notification is reported as a warning.
func (s *Service) Create(ctx context.Context, issue models.IssueReport, file *attachments.Upload) (CreateResult, error) {
	issue.EquipmentID = strings.TrimSpace(issue.EquipmentID)
	issue.Description = strings.TrimSpace(issue.Description)
	issue.ReportedBy = strings.TrimSpace(issue.ReportedBy)
	issue.Severity = models.NormalizeIssueSeverity(string(issue.Severity))

	if issue.Description == "" {
		return CreateResult{}, ErrDescriptionRequired
	}
	if issue.Severity == "" {
		issue.Severity = models.IssueSeverityMinor
	}
	if !models.IsValidIssueSeverity(issue.Severity) {
		return CreateResult{}, ErrInvalidSeverity
	}
	eq, err := s.equipment.Get(ctx, issue.EquipmentID)
	if err != nil {
		return CreateResult{}, err
	}

	if file != nil && s.files == nil {
		return CreateResult{}, ErrAttachmentsDisabled
	}
	if s.files != nil {
		path, err := s.files.SaveUpload(file)
		if err != nil {
			return CreateResult{}, err
		}
		issue.AttachmentPath = path
	}

	issue.ID = uuid.NewString()
	issue.Status = models.IssueStatusOpen
	if issue.DateTime.IsZero() {
		issue.DateTime = s.now().UTC()
	}

	created, err := s.issues.Create(ctx, issue)
	if err != nil {
		if issue.AttachmentPath != nil {
			_ = s.files.Remove(*issue.AttachmentPath)
		}
		return CreateResult{}, fmt.Errorf("create issue report: %w", err)
	}
	s.logger.Info().
		Str("issue_id", created.ID).
		Str("equipment_id", created.EquipmentID).
		Str("severity", string(created.Severity)).
		Msg("issue reported")

	result := CreateResult{Issue: created}
	if err := s.notifications.NotifyNewIssue(ctx, created, eq.Name); err != nil {
		s.logger.Warn().Err(err).Str("issue_id", created.ID).Msg("new issue notification failed")
		result.Warnings = append(result.Warnings, warningIssueNotification)
	}
	return result, nil
}

// List returns the issues on equipment within the caller's scope.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]models.IssueReport, error) {
	filter := repository.IssueFilter{Status: opts.Status, Severity: opts.Severity}
	ids, err := s.scopedEquipmentIDs(ctx, opts.Scope)
	if err != nil {
		return nil, err
	}
	filter.EquipmentIDs = ids
	return s.issues.List(ctx, filter)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) (models.IssueReport, error) {
	status = models.IssueStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !models.IsValidIssueStatus(status) {
		return models.IssueReport{}, ErrInvalidStatus
	}
	updated, err := s.issues.UpdateStatus(ctx, id, status)
	if err != nil {
		return models.IssueReport{}, err
	}
	s.logger.Info().Str("issue_id", updated.ID).Str("status", string(status)).Msg("issue status updated")
	return updated, nil
}

// scopedEquipmentIDs returns nil for an unrestricted scope.
func (s *Service) scopedEquipmentIDs(ctx context.Context, scope equipment.Scope) ([]string, error) {
	if !scope.Restricted() {
		return nil, nil
	}
	if scope.Empty() {
		return []string{}, nil
	}
	list, err := s.equipment.List(ctx, scope.Filter())
	if err != nil {
		return nil, fmt.Errorf("list scoped equipment: %w", err)
	}
	ids := make([]string, 0, len(list))
	for _, eq := range list {
		ids = append(ids, eq.ID)
	}
	return ids, nil
}
