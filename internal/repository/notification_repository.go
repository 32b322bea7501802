package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/stanstork/maintenance-api/internal/models"
)

// NotificationRepository is the durable notification sink. At most one unread
// maintenance notification may exist per (equipment, type); the schema
// enforces this with a partial unique index.
type NotificationRepository interface {
	Create(ctx context.Context, notif models.Notification) (models.Notification, error)
	CreateUnique(ctx context.Context, notif models.Notification) (models.Notification, error)
	FindUnreadByEquipmentAndType(ctx context.Context, equipmentID string, notifType models.NotificationType) (*models.Notification, error)
	ListUnread(ctx context.Context, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID string) (models.Notification, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, equipment_id, type, severity, message, link, created_at, is_read, read_at`

func (r *notificationRepository) Create(ctx context.Context, notif models.Notification) (models.Notification, error) {
	const query = `
		INSERT INTO maint.notifications (id, equipment_id, type, severity, message, link, created_at, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		RETURNING ` + notificationColumns

	var created models.Notification
	err := r.db.GetContext(ctx, &created, query,
		notif.ID, notif.EquipmentID, notif.Type, notif.Severity, notif.Message, notif.Link, notif.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Notification{}, ErrDuplicateUnread
		}
		return models.Notification{}, err
	}
	return created, nil
}

// CreateUnique inserts notif unless an unread notification of the same type
// exists for the equipment, in which case ErrDuplicateUnread is returned.
func (r *notificationRepository) CreateUnique(ctx context.Context, notif models.Notification) (models.Notification, error) {
	const query = `
		INSERT INTO maint.notifications (id, equipment_id, type, severity, message, link, created_at, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		ON CONFLICT (equipment_id, type)
			WHERE is_read = FALSE AND type IN ('maintenance_overdue', 'maintenance_due')
			DO NOTHING
		RETURNING ` + notificationColumns

	var created models.Notification
	err := r.db.GetContext(ctx, &created, query,
		notif.ID, notif.EquipmentID, notif.Type, notif.Severity, notif.Message, notif.Link, notif.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
		return models.Notification{}, ErrDuplicateUnread
	}
	if err != nil {
		return models.Notification{}, err
	}
	return created, nil
}

func (r *notificationRepository) FindUnreadByEquipmentAndType(ctx context.Context, equipmentID string, notifType models.NotificationType) (*models.Notification, error) {
	const query = `
		SELECT ` + notificationColumns + `
		FROM maint.notifications
		WHERE equipment_id = $1 AND type = $2 AND is_read = FALSE
		ORDER BY created_at DESC
		LIMIT 1`

	var notif models.Notification
	err := r.db.GetContext(ctx, &notif, query, strings.TrimSpace(equipmentID), notifType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notif, nil
}

func (r *notificationRepository) ListUnread(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	const query = `
		SELECT ` + notificationColumns + `
		FROM maint.notifications
		WHERE is_read = FALSE
		ORDER BY created_at DESC
		LIMIT $1`

	notifications := []models.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, limit); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID string) (models.Notification, error) {
	const query = `
		UPDATE maint.notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = $1
		RETURNING ` + notificationColumns

	var notif models.Notification
	if err := r.db.GetContext(ctx, &notif, query, strings.TrimSpace(notificationID)); err != nil {
		return models.Notification{}, notFound(err)
	}
	return notif, nil
}
