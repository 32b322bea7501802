package models

import (
	"time"
)

type NotificationSeverity string

const (
	NotificationSeverityInfo    NotificationSeverity = "info"
	NotificationSeverityWarning NotificationSeverity = "warning"
	NotificationSeverityError   NotificationSeverity = "error"
)

type NotificationType string

const (
	NotificationMaintenanceOverdue NotificationType = "maintenance_overdue"
	NotificationMaintenanceDue     NotificationType = "maintenance_due"
	NotificationNewIssue           NotificationType = "new_issue"
)

// IsMaintenance reports whether at most one unread notification of this type
// may exist per equipment.
func (t NotificationType) IsMaintenance() bool {
	return t == NotificationMaintenanceOverdue || t == NotificationMaintenanceDue
}

type Notification struct {
	ID          string               `json:"id" db:"id"`
	EquipmentID string               `json:"equipment_id" db:"equipment_id"`
	Type        NotificationType     `json:"type" db:"type"`
	Severity    NotificationSeverity `json:"severity" db:"severity"`
	Message     string               `json:"message" db:"message"`
	Link        string               `json:"link" db:"link"`
	CreatedAt   time.Time            `json:"created_at" db:"created_at"`
	IsRead      bool                 `json:"is_read" db:"is_read"`
	ReadAt      *time.Time           `json:"read_at,omitempty" db:"read_at"`
}
