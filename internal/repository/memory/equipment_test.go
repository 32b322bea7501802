package memory

import (
	"context"
	"testing"

	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, raw string) models.Date {
	t.Helper()
	d, err := models.ParseDate(raw)
	require.NoError(t, err)
	return d
}

func TestEquipmentRepository_ListFilters(t *testing.T) {
	repo := NewEquipmentRepository()
	ctx := context.Background()

	for _, eq := range []models.Equipment{
		{ID: "EQ-1", Name: "Centrífuga", LocationUnit: "Hematología", Encargado: "Ana"},
		{ID: "EQ-2", Name: "Autoclave", LocationUnit: "Microbiología", Encargado: "Luis"},
		{ID: "EQ-3", Name: "Balanza", LocationUnit: "Hematología", Encargado: "Luis"},
	} {
		_, err := repo.Create(ctx, eq)
		require.NoError(t, err)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Autoclave", all[0].Name)

	unit, err := repo.List(ctx, repository.EquipmentFilter{Unit: "Hematología"})
	require.NoError(t, err)
	assert.Len(t, unit, 2)

	mine, err := repo.List(ctx, repository.EquipmentFilter{Encargado: "Luis"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = repo.Create(ctx, models.Equipment{ID: "EQ-1", Name: "dup"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestEquipmentRepository_AdvanceLastMaintenanceOnlyMovesForward(t *testing.T) {
	repo := NewEquipmentRepository()
	ctx := context.Background()
	last := mustDate(t, "2024-05-01")
	_, err := repo.Create(ctx, models.Equipment{ID: "EQ-1", Name: "Centrífuga", LastMaintenanceDate: &last})
	require.NoError(t, err)

	_, advanced, err := repo.AdvanceLastMaintenance(ctx, "EQ-1", mustDate(t, "2024-04-01"))
	require.NoError(t, err)
	assert.False(t, advanced)

	eq, advanced, err := repo.AdvanceLastMaintenance(ctx, "EQ-1", mustDate(t, "2024-06-10"))
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, "2024-06-10", eq.LastMaintenanceDate.String())

	_, _, err = repo.AdvanceLastMaintenance(ctx, "missing", last)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEquipmentRepository_ReturnsCopies(t *testing.T) {
	repo := NewEquipmentRepository()
	ctx := context.Background()
	last := mustDate(t, "2024-05-01")
	_, err := repo.Create(ctx, models.Equipment{ID: "EQ-1", Name: "Centrífuga", LastMaintenanceDate: &last})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "EQ-1")
	require.NoError(t, err)
	*got.LastMaintenanceDate = mustDate(t, "2020-01-01")

	again, err := repo.Get(ctx, "EQ-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", again.LastMaintenanceDate.String())
}
