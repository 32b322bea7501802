package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
)

type Event struct {
	EquipmentID string
	Type        models.NotificationType
	Severity    models.NotificationSeverity
	Message     string
	Link        string
}

type Service interface {
	Publish(ctx context.Context, evt Event) (models.Notification, error)
	NotifyNewIssue(ctx context.Context, issue models.IssueReport, equipmentName string) error

	// Insert and FindUnreadByEquipmentAndType make the service the sink of
	// the maintenance engine.
	Insert(ctx context.Context, notif models.Notification) (models.Notification, error)
	FindUnreadByEquipmentAndType(ctx context.Context, equipmentID string, notifType models.NotificationType) (*models.Notification, error)

	ListUnread(ctx context.Context, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID string) (models.Notification, error)
}

type service struct {
	repo      repository.NotificationRepository
	logger    zerolog.Logger
	notifiers []Notifier
	now       func() time.Time
}

func NewService(repo repository.NotificationRepository, logger zerolog.Logger, notifiers ...Notifier) Service {
	active := make([]Notifier, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			active = append(active, notifier)
		}
	}
	return &service{
		repo:      repo,
		logger:    logger.With().Str("component", "notification_service").Logger(),
		notifiers: active,
		now:       time.Now,
	}
}

func (s *service) Publish(ctx context.Context, evt Event) (models.Notification, error) {
	if evt.Type == "" {
		return models.Notification{}, fmt.Errorf("notification type is required")
	}
	equipmentID := strings.TrimSpace(evt.EquipmentID)
	if equipmentID == "" {
		return models.Notification{}, fmt.Errorf("equipment id is required")
	}
	if evt.Severity == "" {
		evt.Severity = models.NotificationSeverityInfo
	}
	link := strings.TrimSpace(evt.Link)
	if link == "" {
		link = models.EquipmentPath(equipmentID)
	}

	notif := models.Notification{
		ID:          uuid.NewString(),
		EquipmentID: equipmentID,
		Type:        evt.Type,
		Severity:    evt.Severity,
		Message:     strings.TrimSpace(evt.Message),
		Link:        link,
		CreatedAt:   s.now(),
	}

	created, err := s.repo.Create(ctx, notif)
	if err != nil {
		s.logger.Error().Err(err).Str("type", string(evt.Type)).Msg("failed to persist notification")
		return models.Notification{}, err
	}
	s.fanOut(ctx, created)
	return created, nil
}

func (s *service) Insert(ctx context.Context, notif models.Notification) (models.Notification, error) {
	if notif.ID == "" {
		notif.ID = uuid.NewString()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = s.now()
	}

	var (
		created models.Notification
		err     error
	)
	if notif.Type.IsMaintenance() {
		created, err = s.repo.CreateUnique(ctx, notif)
	} else {
		created, err = s.repo.Create(ctx, notif)
	}
	if err != nil {
		if !errors.Is(err, repository.ErrDuplicateUnread) {
			s.logger.Error().Err(err).Str("type", string(notif.Type)).Str("equipment_id", notif.EquipmentID).Msg("failed to persist notification")
		}
		return models.Notification{}, err
	}
	s.fanOut(ctx, created)
	return created, nil
}

func (s *service) FindUnreadByEquipmentAndType(ctx context.Context, equipmentID string, notifType models.NotificationType) (*models.Notification, error) {
	return s.repo.FindUnreadByEquipmentAndType(ctx, equipmentID, notifType)
}

func (s *service) NotifyNewIssue(ctx context.Context, issue models.IssueReport, equipmentName string) error {
	name := fallbackName(equipmentName, issue.EquipmentID)
	severity := models.NotificationSeverityWarning
	if issue.Severity == models.IssueSeverityCritical {
		severity = models.NotificationSeverityError
	}
	_, err := s.Publish(ctx, Event{
		EquipmentID: issue.EquipmentID,
		Type:        models.NotificationNewIssue,
		Severity:    severity,
		Message:     fmt.Sprintf(`Nueva incidencia reportada para el equipo "%s".`, name),
	})
	return err
}

func (s *service) ListUnread(ctx context.Context, limit int) ([]models.Notification, error) {
	return s.repo.ListUnread(ctx, limit)
}

func (s *service) MarkRead(ctx context.Context, notificationID string) (models.Notification, error) {
	return s.repo.MarkRead(ctx, notificationID)
}

func (s *service) fanOut(ctx context.Context, notif models.Notification) {
	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, notif); err != nil {
			logNotifyError(s.logger, err, notifierChannelName(notifier), notif)
		}
	}
}

func fallbackName(name, fallback string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return fallback
}
