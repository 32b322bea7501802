package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/stanstork/maintenance-api/internal/models"
)

type MaintenanceRecordRepository interface {
	Create(ctx context.Context, rec models.MaintenanceRecord) (models.MaintenanceRecord, error)
	ListByEquipment(ctx context.Context, equipmentID string) ([]models.MaintenanceRecord, error)
}

type maintenanceRecordRepository struct {
	db *sqlx.DB
}

func NewMaintenanceRecordRepository(db *sqlx.DB) MaintenanceRecordRepository {
	return &maintenanceRecordRepository{db: db}
}

const maintenanceRecordColumns = `id, equipment_id, date, description, performed_by, attachment_path, created_at`

func (r *maintenanceRecordRepository) Create(ctx context.Context, rec models.MaintenanceRecord) (models.MaintenanceRecord, error) {
	const query = `
		INSERT INTO maint.maintenance_records (id, equipment_id, date, description, performed_by, attachment_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + maintenanceRecordColumns

	var created models.MaintenanceRecord
	err := r.db.GetContext(ctx, &created, query,
		rec.ID, rec.EquipmentID, rec.Date, rec.Description, rec.PerformedBy, rec.AttachmentPath)
	return created, err
}

func (r *maintenanceRecordRepository) ListByEquipment(ctx context.Context, equipmentID string) ([]models.MaintenanceRecord, error) {
	const query = `
		SELECT ` + maintenanceRecordColumns + `
		FROM maint.maintenance_records
		WHERE equipment_id = $1
		ORDER BY date DESC, created_at DESC`

	records := []models.MaintenanceRecord{}
	if err := r.db.SelectContext(ctx, &records, query, equipmentID); err != nil {
		return nil, err
	}
	return records, nil
}
