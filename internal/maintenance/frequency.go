package maintenance

import "github.com/stanstork/maintenance-api/internal/models"

// Calendar months are approximated as 30 days. Stored notifications and
// dashboard thresholds depend on this exact constant.
const (
	daysPerWeek  = 7
	daysPerMonth = 30
)

// NormalizeFrequency converts an interval into days. Unrecognized units
// normalize to zero, which the classifier treats as unscheduled.
func NormalizeFrequency(value int, unit models.FrequencyUnit) int {
	switch unit {
	case models.FrequencyDays:
		return value
	case models.FrequencyWeeks:
		return value * daysPerWeek
	case models.FrequencyMonths:
		return value * daysPerMonth
	default:
		return 0
	}
}

func FrequencyDays(f *models.Frequency) int {
	if f == nil || f.Value <= 0 {
		return 0
	}
	return NormalizeFrequency(f.Value, f.Unit)
}
