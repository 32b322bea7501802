package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
)

// NotificationRepository is an in-memory sink that enforces the same
// at-most-one-unread rule as the Postgres partial unique index.
type NotificationRepository struct {
	mu            sync.Mutex
	notifications []models.Notification
	index         map[string]int
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{index: make(map[string]int)}
}

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) Create(_ context.Context, notif models.Notification) (models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(notif)
}

func (r *NotificationRepository) CreateUnique(_ context.Context, notif models.Notification) (models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(notif)
}

func (r *NotificationRepository) insertLocked(notif models.Notification) (models.Notification, error) {
	if _, exists := r.index[notif.ID]; exists {
		return models.Notification{}, repository.ErrAlreadyExists
	}
	if notif.Type.IsMaintenance() && r.findUnreadLocked(notif.EquipmentID, notif.Type) != nil {
		return models.Notification{}, repository.ErrDuplicateUnread
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now().UTC()
	}
	notif.IsRead = false
	notif.ReadAt = nil

	r.index[notif.ID] = len(r.notifications)
	r.notifications = append(r.notifications, notif)
	return notif, nil
}

func (r *NotificationRepository) findUnreadLocked(equipmentID string, notifType models.NotificationType) *models.Notification {
	for i := len(r.notifications) - 1; i >= 0; i-- {
		n := r.notifications[i]
		if !n.IsRead && n.EquipmentID == equipmentID && n.Type == notifType {
			return &n
		}
	}
	return nil
}

func (r *NotificationRepository) FindUnreadByEquipmentAndType(_ context.Context, equipmentID string, notifType models.NotificationType) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findUnreadLocked(strings.TrimSpace(equipmentID), notifType), nil
}

func (r *NotificationRepository) ListUnread(_ context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	unread := []models.Notification{}
	for _, n := range r.notifications {
		if !n.IsRead {
			unread = append(unread, n)
		}
	}
	sort.SliceStable(unread, func(i, j int) bool {
		return unread[i].CreatedAt.After(unread[j].CreatedAt)
	})
	if len(unread) > limit {
		unread = unread[:limit]
	}
	return unread, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, notificationID string) (models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[strings.TrimSpace(notificationID)]
	if !ok {
		return models.Notification{}, repository.ErrNotFound
	}
	n := &r.notifications[i]
	if !n.IsRead {
		now := time.Now().UTC()
		n.IsRead = true
		n.ReadAt = &now
	}
	return *n, nil
}

// All returns every stored notification, read or not, in insertion order.
func (r *NotificationRepository) All() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Notification, len(r.notifications))
	copy(out, r.notifications)
	return out
}
