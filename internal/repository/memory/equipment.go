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

// EquipmentRepository keeps equipment records in process memory.
type EquipmentRepository struct {
	mu        sync.RWMutex
	equipment map[string]models.Equipment
}

func NewEquipmentRepository() *EquipmentRepository {
	return &EquipmentRepository{equipment: make(map[string]models.Equipment)}
}

var _ repository.EquipmentRepository = (*EquipmentRepository)(nil)

func cloneEquipment(eq models.Equipment) models.Equipment {
	if eq.LastCalibrationDate != nil {
		d := *eq.LastCalibrationDate
		eq.LastCalibrationDate = &d
	}
	if eq.LastMaintenanceDate != nil {
		d := *eq.LastMaintenanceDate
		eq.LastMaintenanceDate = &d
	}
	if eq.MaintenanceFrequency != nil {
		f := *eq.MaintenanceFrequency
		eq.MaintenanceFrequency = &f
	}
	return eq
}

func (r *EquipmentRepository) Get(_ context.Context, id string) (models.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	eq, ok := r.equipment[strings.TrimSpace(id)]
	if !ok {
		return models.Equipment{}, repository.ErrNotFound
	}
	return cloneEquipment(eq), nil
}

func (r *EquipmentRepository) List(_ context.Context, filter repository.EquipmentFilter) ([]models.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	unit := strings.TrimSpace(filter.Unit)
	encargado := strings.TrimSpace(filter.Encargado)

	result := make([]models.Equipment, 0, len(r.equipment))
	for _, eq := range r.equipment {
		if unit != "" && eq.LocationUnit != unit {
			continue
		}
		if encargado != "" && eq.Encargado != encargado {
			continue
		}
		result = append(result, cloneEquipment(eq))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *EquipmentRepository) ListAll(ctx context.Context) ([]models.Equipment, error) {
	return r.List(ctx, repository.EquipmentFilter{})
}

func (r *EquipmentRepository) Create(_ context.Context, eq models.Equipment) (models.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.equipment[eq.ID]; exists {
		return models.Equipment{}, repository.ErrAlreadyExists
	}
	now := time.Now().UTC()
	eq.CreatedAt = now
	eq.UpdatedAt = now
	r.equipment[eq.ID] = cloneEquipment(eq)
	return cloneEquipment(eq), nil
}

func (r *EquipmentRepository) Update(_ context.Context, eq models.Equipment) (models.Equipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.equipment[eq.ID]
	if !ok {
		return models.Equipment{}, repository.ErrNotFound
	}
	eq.CreatedAt = existing.CreatedAt
	eq.UpdatedAt = time.Now().UTC()
	r.equipment[eq.ID] = cloneEquipment(eq)
	return cloneEquipment(eq), nil
}

func (r *EquipmentRepository) AdvanceLastMaintenance(_ context.Context, id string, date models.Date) (models.Equipment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	eq, ok := r.equipment[id]
	if !ok {
		return models.Equipment{}, false, repository.ErrNotFound
	}
	if eq.LastMaintenanceDate != nil && !eq.LastMaintenanceDate.Before(date.Time) {
		return cloneEquipment(eq), false, nil
	}
	eq.LastMaintenanceDate = &date
	eq.UpdatedAt = time.Now().UTC()
	r.equipment[id] = cloneEquipment(eq)
	return cloneEquipment(eq), true, nil
}

func (r *EquipmentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.equipment[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.equipment, id)
	return nil
}
