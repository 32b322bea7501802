package models

import "time"

type MaintenanceRecord struct {
	ID             string    `json:"id" db:"id"`
	EquipmentID    string    `json:"equipment_id" db:"equipment_id"`
	Date           Date      `json:"date" db:"date"`
	Description    string    `json:"description" db:"description"`
	PerformedBy    string    `json:"performed_by" db:"performed_by"`
	AttachmentPath *string   `json:"attachment_path,omitempty" db:"attachment_path"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
