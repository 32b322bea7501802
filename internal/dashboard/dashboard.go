package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/equipment"
	"github.com/stanstork/maintenance-api/internal/maintenance"
	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
)

const topN = 5

type StatusCounts struct {
	OK      int `json:"ok"`
	Warning int `json:"warning"`
	Overdue int `json:"overdue"`
}

type UpcomingItem struct {
	EquipmentID         string       `json:"equipment_id"`
	Name                string       `json:"name"`
	LocationUnit        string       `json:"location_unit,omitempty"`
	NextMaintenanceDate *models.Date `json:"next_maintenance_date"`
	DaysRemaining       *int         `json:"days_remaining"`
}

type FailureTrendItem struct {
	EquipmentID string `json:"equipment_id"`
	Name        string `json:"name"`
	Issues      int    `json:"issues"`
}

type Summary struct {
	TotalEquipment int                `json:"total_equipment"`
	Status         StatusCounts       `json:"status"`
	OpenIssues     int                `json:"open_issues"`
	Upcoming       []UpcomingItem     `json:"upcoming_maintenance"`
	FailureTrend   []FailureTrendItem `json:"failure_trend"`
}

type Service struct {
	equipment repository.EquipmentRepository
	issues    repository.IssueRepository
	clock     maintenance.Clock
	logger    zerolog.Logger
}

func NewService(equipmentRepo repository.EquipmentRepository, issues repository.IssueRepository, clock maintenance.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = maintenance.SystemClock{}
	}
	return &Service{
		equipment: equipmentRepo,
		issues:    issues,
		clock:     clock,
		logger:    logger.With().Str("component", "dashboard").Logger(),
	}
}

// Summary aggregates the fleet visible to scope as of the service clock.
func (s *Service) Summary(ctx context.Context, scope equipment.Scope) (Summary, error) {
	if scope.Empty() {
		return Build(nil, nil, nil, s.clock.Now()), nil
	}
	fleet, err := s.equipment.List(ctx, scope.Filter())
	if err != nil {
		return Summary{}, fmt.Errorf("list equipment: %w", err)
	}

	var issueFilter repository.IssueFilter
	if scope.Restricted() {
		issueFilter.EquipmentIDs = make([]string, 0, len(fleet))
		for _, eq := range fleet {
			issueFilter.EquipmentIDs = append(issueFilter.EquipmentIDs, eq.ID)
		}
	}
	counts, err := s.issues.CountByEquipment(ctx, issueFilter)
	if err != nil {
		return Summary{}, fmt.Errorf("count issues: %w", err)
	}
	openFilter := issueFilter
	openFilter.Status = models.IssueStatusOpen
	open, err := s.issues.CountByEquipment(ctx, openFilter)
	if err != nil {
		return Summary{}, fmt.Errorf("count open issues: %w", err)
	}

	return Build(fleet, counts, open, s.clock.Now()), nil
}

// Build computes a summary from already loaded data. Issue counts for
// equipment outside fleet are ignored.
func Build(fleet []models.Equipment, issueCounts, openCounts map[string]int, now time.Time) Summary {
	summary := Summary{
		TotalEquipment: len(fleet),
		Upcoming:       []UpcomingItem{},
		FailureTrend:   make([]FailureTrendItem, 0, len(fleet)),
	}

	for _, eq := range fleet {
		c := maintenance.ClassifyEquipment(eq, now)
		switch c.Status {
		case maintenance.StatusOK:
			summary.Status.OK++
		case maintenance.StatusWarning:
			summary.Status.Warning++
			summary.Upcoming = append(summary.Upcoming, UpcomingItem{
				EquipmentID:         eq.ID,
				Name:                eq.Name,
				LocationUnit:        eq.LocationUnit,
				NextMaintenanceDate: c.NextMaintenanceDate,
				DaysRemaining:       c.DaysRemaining,
			})
		case maintenance.StatusOverdue:
			summary.Status.Overdue++
		}
		summary.OpenIssues += openCounts[eq.ID]
		summary.FailureTrend = append(summary.FailureTrend, FailureTrendItem{
			EquipmentID: eq.ID,
			Name:        eq.Name,
			Issues:      issueCounts[eq.ID],
		})
	}

	sort.SliceStable(summary.Upcoming, func(i, j int) bool {
		a, b := summary.Upcoming[i].NextMaintenanceDate, summary.Upcoming[j].NextMaintenanceDate
		if !a.Equal(b.Time) {
			return a.Before(b.Time)
		}
		return summary.Upcoming[i].Name < summary.Upcoming[j].Name
	})
	if len(summary.Upcoming) > topN {
		summary.Upcoming = summary.Upcoming[:topN]
	}

	sort.SliceStable(summary.FailureTrend, func(i, j int) bool {
		if summary.FailureTrend[i].Issues != summary.FailureTrend[j].Issues {
			return summary.FailureTrend[i].Issues > summary.FailureTrend[j].Issues
		}
		return summary.FailureTrend[i].Name < summary.FailureTrend[j].Name
	})
	if len(summary.FailureTrend) > topN {
		summary.FailureTrend = summary.FailureTrend[:topN]
	}
	return summary
}
