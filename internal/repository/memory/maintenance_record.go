package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
)

type MaintenanceRecordRepository struct {
	mu      sync.RWMutex
	records map[string][]models.MaintenanceRecord
}

func NewMaintenanceRecordRepository() *MaintenanceRecordRepository {
	return &MaintenanceRecordRepository{records: make(map[string][]models.MaintenanceRecord)}
}

var _ repository.MaintenanceRecordRepository = (*MaintenanceRecordRepository)(nil)

func (r *MaintenanceRecordRepository) Create(_ context.Context, rec models.MaintenanceRecord) (models.MaintenanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.records[rec.EquipmentID] = append(r.records[rec.EquipmentID], rec)
	return rec, nil
}

func (r *MaintenanceRecordRepository) ListByEquipment(_ context.Context, equipmentID string) ([]models.MaintenanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := append([]models.MaintenanceRecord{}, r.records[equipmentID]...)
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date.Time) {
			return records[i].Date.After(records[j].Date.Time)
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
