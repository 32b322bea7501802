package maintenance

import (
	"strings"
	"time"

	"github.com/stanstork/maintenance-api/internal/models"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusOverdue Status = "overdue"
)

// WarningWindowDays is the number of remaining days at or below which an
// equipment is flagged as approaching its due date.
const WarningWindowDays = 7

var statusAliases = map[string]Status{
	"ok":          StatusOK,
	"warning":     StatusWarning,
	"advertencia": StatusWarning,
	"overdue":     StatusOverdue,
	"vencido":     StatusOverdue,
}

// ParseStatus accepts the canonical status names and the Spanish labels used
// by the dashboard links.
func ParseStatus(raw string) (Status, bool) {
	s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

// Classification is derived on every read and never persisted.
type Classification struct {
	DaysSinceLastMaintenance *int         `json:"days_since_last_maintenance"`
	DaysRemaining            *int         `json:"days_remaining"`
	NextMaintenanceDate      *models.Date `json:"next_maintenance_date"`
	Status                   Status       `json:"status"`
}

// Classify computes the lifecycle state of an equipment as of now. Missing
// history or a non-positive interval yields OK with no due date.
func Classify(lastMaintenance *models.Date, frequencyDays int, now time.Time) Classification {
	if lastMaintenance == nil || lastMaintenance.IsZero() || frequencyDays <= 0 {
		return Classification{Status: StatusOK}
	}

	last := models.DateOf(lastMaintenance.Time)
	daysSince := last.DaysUntil(models.DateOf(now))
	daysRemaining := frequencyDays - daysSince
	next := last.AddDays(frequencyDays)

	return Classification{
		DaysSinceLastMaintenance: &daysSince,
		DaysRemaining:            &daysRemaining,
		NextMaintenanceDate:      &next,
		Status:                   statusFor(daysRemaining),
	}
}

func ClassifyEquipment(eq models.Equipment, now time.Time) Classification {
	return Classify(eq.LastMaintenanceDate, FrequencyDays(eq.MaintenanceFrequency), now)
}

func statusFor(daysRemaining int) Status {
	switch {
	case daysRemaining <= 0:
		return StatusOverdue
	case daysRemaining <= WarningWindowDays:
		return StatusWarning
	default:
		return StatusOK
	}
}
