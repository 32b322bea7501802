package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stanstork/maintenance-api/internal/models"
)

// EquipmentFilter narrows equipment listings. Empty fields match everything.
type EquipmentFilter struct {
	Unit      string
	Encargado string
}

type EquipmentRepository interface {
	Get(ctx context.Context, id string) (models.Equipment, error)
	List(ctx context.Context, filter EquipmentFilter) ([]models.Equipment, error)
	ListAll(ctx context.Context) ([]models.Equipment, error)
	Create(ctx context.Context, eq models.Equipment) (models.Equipment, error)
	Update(ctx context.Context, eq models.Equipment) (models.Equipment, error)
	// AdvanceLastMaintenance moves last_maintenance_date forward to date when
	// it is unset or earlier. The bool reports whether a change was made.
	AdvanceLastMaintenance(ctx context.Context, id string, date models.Date) (models.Equipment, bool, error)
	Delete(ctx context.Context, id string) error
}

type equipmentRepository struct {
	db *sqlx.DB
}

func NewEquipmentRepository(db *sqlx.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

const equipmentColumns = `
	id, name, brand, model, location_building, location_unit,
	last_calibration_date, last_maintenance_date, encargado,
	maintenance_frequency_value, maintenance_frequency_unit,
	custom_maintenance_instructions, criticality, created_at, updated_at`

type equipmentRow struct {
	ID                            string         `db:"id"`
	Name                          string         `db:"name"`
	Brand                         string         `db:"brand"`
	Model                         string         `db:"model"`
	LocationBuilding              string         `db:"location_building"`
	LocationUnit                  string         `db:"location_unit"`
	LastCalibrationDate           *models.Date   `db:"last_calibration_date"`
	LastMaintenanceDate           *models.Date   `db:"last_maintenance_date"`
	Encargado                     string         `db:"encargado"`
	FrequencyValue                sql.NullInt64  `db:"maintenance_frequency_value"`
	FrequencyUnit                 sql.NullString `db:"maintenance_frequency_unit"`
	CustomMaintenanceInstructions string         `db:"custom_maintenance_instructions"`
	Criticality                   string         `db:"criticality"`
	CreatedAt                     time.Time      `db:"created_at"`
	UpdatedAt                     time.Time      `db:"updated_at"`
}

func (r equipmentRow) toModel() models.Equipment {
	eq := models.Equipment{
		ID:                            r.ID,
		Name:                          r.Name,
		Brand:                         r.Brand,
		Model:                         r.Model,
		LocationBuilding:              r.LocationBuilding,
		LocationUnit:                  r.LocationUnit,
		LastCalibrationDate:           r.LastCalibrationDate,
		LastMaintenanceDate:           r.LastMaintenanceDate,
		Encargado:                     r.Encargado,
		CustomMaintenanceInstructions: r.CustomMaintenanceInstructions,
		Criticality:                   models.Criticality(r.Criticality),
		CreatedAt:                     r.CreatedAt,
		UpdatedAt:                     r.UpdatedAt,
	}
	if r.FrequencyValue.Valid || r.FrequencyUnit.Valid {
		eq.MaintenanceFrequency = &models.Frequency{
			Value: int(r.FrequencyValue.Int64),
			Unit:  models.FrequencyUnit(r.FrequencyUnit.String),
		}
	}
	return eq
}

func frequencyArgs(f *models.Frequency) (interface{}, interface{}) {
	if f == nil {
		return nil, nil
	}
	return f.Value, string(f.Unit)
}

func (r *equipmentRepository) Get(ctx context.Context, id string) (models.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM maint.equipment WHERE id = $1`
	var row equipmentRow
	if err := r.db.GetContext(ctx, &row, query, strings.TrimSpace(id)); err != nil {
		return models.Equipment{}, notFound(err)
	}
	return row.toModel(), nil
}

func (r *equipmentRepository) List(ctx context.Context, filter EquipmentFilter) ([]models.Equipment, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if unit := strings.TrimSpace(filter.Unit); unit != "" {
		args = append(args, unit)
		conditions = append(conditions, fmt.Sprintf("location_unit = $%d", len(args)))
	}
	if encargado := strings.TrimSpace(filter.Encargado); encargado != "" {
		args = append(args, encargado)
		conditions = append(conditions, fmt.Sprintf("encargado = $%d", len(args)))
	}

	query := `SELECT ` + equipmentColumns + ` FROM maint.equipment`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name, id"

	var rows []equipmentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	equipment := make([]models.Equipment, 0, len(rows))
	for _, row := range rows {
		equipment = append(equipment, row.toModel())
	}
	return equipment, nil
}

func (r *equipmentRepository) ListAll(ctx context.Context) ([]models.Equipment, error) {
	return r.List(ctx, EquipmentFilter{})
}

func (r *equipmentRepository) Create(ctx context.Context, eq models.Equipment) (models.Equipment, error) {
	query := `
		INSERT INTO maint.equipment (
			id, name, brand, model, location_building, location_unit,
			last_calibration_date, last_maintenance_date, encargado,
			maintenance_frequency_value, maintenance_frequency_unit,
			custom_maintenance_instructions, criticality
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + equipmentColumns

	freqValue, freqUnit := frequencyArgs(eq.MaintenanceFrequency)
	var row equipmentRow
	err := r.db.GetContext(ctx, &row, query,
		eq.ID, eq.Name, eq.Brand, eq.Model, eq.LocationBuilding, eq.LocationUnit,
		eq.LastCalibrationDate, eq.LastMaintenanceDate, eq.Encargado,
		freqValue, freqUnit,
		eq.CustomMaintenanceInstructions, string(eq.Criticality),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Equipment{}, ErrAlreadyExists
		}
		return models.Equipment{}, err
	}
	return row.toModel(), nil
}

func (r *equipmentRepository) Update(ctx context.Context, eq models.Equipment) (models.Equipment, error) {
	query := `
		UPDATE maint.equipment SET
			name = $2, brand = $3, model = $4, location_building = $5, location_unit = $6,
			last_calibration_date = $7, last_maintenance_date = $8, encargado = $9,
			maintenance_frequency_value = $10, maintenance_frequency_unit = $11,
			custom_maintenance_instructions = $12, criticality = $13, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + equipmentColumns

	freqValue, freqUnit := frequencyArgs(eq.MaintenanceFrequency)
	var row equipmentRow
	err := r.db.GetContext(ctx, &row, query,
		eq.ID, eq.Name, eq.Brand, eq.Model, eq.LocationBuilding, eq.LocationUnit,
		eq.LastCalibrationDate, eq.LastMaintenanceDate, eq.Encargado,
		freqValue, freqUnit,
		eq.CustomMaintenanceInstructions, string(eq.Criticality),
	)
	if err != nil {
		return models.Equipment{}, notFound(err)
	}
	return row.toModel(), nil
}

func (r *equipmentRepository) AdvanceLastMaintenance(ctx context.Context, id string, date models.Date) (models.Equipment, bool, error) {
	query := `
		UPDATE maint.equipment
		SET last_maintenance_date = $2, updated_at = NOW()
		WHERE id = $1 AND (last_maintenance_date IS NULL OR last_maintenance_date < $2)
		RETURNING ` + equipmentColumns

	var row equipmentRow
	err := r.db.GetContext(ctx, &row, query, id, date)
	if errors.Is(err, sql.ErrNoRows) {
		current, getErr := r.Get(ctx, id)
		return current, false, getErr
	}
	if err != nil {
		return models.Equipment{}, false, err
	}
	return row.toModel(), true, nil
}

func (r *equipmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM maint.equipment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
