package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/equipment"
	"github.com/stanstork/maintenance-api/internal/maintenance"
	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func withLast(id, name, unit string, daysAgo, freq int) models.Equipment {
	last := models.DateOf(now).AddDays(-daysAgo)
	return models.Equipment{
		ID:                   id,
		Name:                 name,
		LocationUnit:         unit,
		LastMaintenanceDate:  &last,
		MaintenanceFrequency: &models.Frequency{Value: freq, Unit: models.FrequencyDays},
	}
}

func TestBuild_CountsAndUpcoming(t *testing.T) {
	fleet := []models.Equipment{
		withLast("EQ-1", "Centrífuga", "Hematología", 40, 30),
		withLast("EQ-2", "Autoclave", "Microbiología", 25, 30),
		withLast("EQ-3", "Balanza", "Hematología", 28, 30),
		withLast("EQ-4", "Incubadora", "Microbiología", 1, 30),
		{ID: "EQ-5", Name: "Pipeta"},
	}
	issues := map[string]int{"EQ-1": 3, "EQ-2": 1, "EQ-9": 7}
	open := map[string]int{"EQ-1": 2, "EQ-9": 4}

	s := Build(fleet, issues, open, now)

	assert.Equal(t, 5, s.TotalEquipment)
	assert.Equal(t, StatusCounts{OK: 2, Warning: 2, Overdue: 1}, s.Status)
	assert.Equal(t, 2, s.OpenIssues)

	require.Len(t, s.Upcoming, 2)
	assert.Equal(t, "EQ-3", s.Upcoming[0].EquipmentID)
	assert.Equal(t, 2, *s.Upcoming[0].DaysRemaining)
	assert.Equal(t, "EQ-2", s.Upcoming[1].EquipmentID)

	require.Len(t, s.FailureTrend, 5)
	assert.Equal(t, FailureTrendItem{EquipmentID: "EQ-1", Name: "Centrífuga", Issues: 3}, s.FailureTrend[0])
	assert.Equal(t, "EQ-2", s.FailureTrend[1].EquipmentID)
	// Ties fall back to name order.
	assert.Equal(t, "Balanza", s.FailureTrend[2].Name)
	assert.Equal(t, 0, s.FailureTrend[4].Issues)
}

func TestBuild_CapsAtFive(t *testing.T) {
	var fleet []models.Equipment
	issues := map[string]int{}
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("EQ-%d", i)
		fleet = append(fleet, withLast(id, fmt.Sprintf("Equipo %d", i), "", 23+i%3, 30))
		issues[id] = i
	}

	s := Build(fleet, issues, nil, now)
	assert.Equal(t, 8, s.Status.Warning)
	assert.Len(t, s.Upcoming, 5)
	require.Len(t, s.FailureTrend, 5)
	assert.Equal(t, 7, s.FailureTrend[0].Issues)
	assert.Equal(t, 3, s.FailureTrend[4].Issues)

	for i := 1; i < len(s.Upcoming); i++ {
		assert.False(t, s.Upcoming[i].NextMaintenanceDate.Before(s.Upcoming[i-1].NextMaintenanceDate.Time))
	}
}

func TestBuild_EmptyFleet(t *testing.T) {
	s := Build(nil, nil, nil, now)
	assert.Equal(t, 0, s.TotalEquipment)
	assert.NotNil(t, s.Upcoming)
	assert.NotNil(t, s.FailureTrend)
}

func TestService_SummaryRespectsScope(t *testing.T) {
	ctx := context.Background()
	equipmentRepo := memory.NewEquipmentRepository()
	issueRepo := memory.NewIssueRepository()

	for _, eq := range []models.Equipment{
		withLast("EQ-1", "Centrífuga", "Hematología", 40, 30),
		withLast("EQ-2", "Autoclave", "Microbiología", 25, 30),
	} {
		_, err := equipmentRepo.Create(ctx, eq)
		require.NoError(t, err)
	}
	for i, eqID := range []string{"EQ-1", "EQ-1", "EQ-2"} {
		status := models.IssueStatusOpen
		if i == 1 {
			status = models.IssueStatusResolved
		}
		_, err := issueRepo.Create(ctx, models.IssueReport{
			ID:          fmt.Sprintf("I-%d", i),
			EquipmentID: eqID,
			Description: "falla",
			Severity:    models.IssueSeverityMinor,
			Status:      status,
			DateTime:    now,
		})
		require.NoError(t, err)
	}

	svc := NewService(equipmentRepo, issueRepo, maintenance.FixedClock{T: now}, zerolog.Nop())

	all, err := svc.Summary(ctx, equipment.Scope{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalEquipment)
	assert.Equal(t, 2, all.OpenIssues)
	assert.Equal(t, StatusCounts{Warning: 1, Overdue: 1}, all.Status)
	assert.Equal(t, 2, all.FailureTrend[0].Issues)

	unit, err := svc.Summary(ctx, equipment.Scope{Role: models.RoleUnitManager, Unit: "Hematología"})
	require.NoError(t, err)
	assert.Equal(t, 1, unit.TotalEquipment)
	assert.Equal(t, 1, unit.OpenIssues)
	assert.Empty(t, unit.Upcoming)
	require.Len(t, unit.FailureTrend, 1)
	assert.Equal(t, 2, unit.FailureTrend[0].Issues)

	unassigned, err := svc.Summary(ctx, equipment.Scope{Role: models.RoleUnitManager})
	require.NoError(t, err)
	assert.Zero(t, unassigned.TotalEquipment)
	assert.Zero(t, unassigned.OpenIssues)
	assert.Empty(t, unassigned.FailureTrend)
}
