package maintenance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stanstork/maintenance-api/internal/models"
)

// Decide builds the notification warranted by a classification, if any.
// OK equipment produces nothing.
func Decide(eq models.Equipment, c Classification, now time.Time) (models.Notification, bool) {
	notif := models.Notification{
		ID:          uuid.NewString(),
		EquipmentID: eq.ID,
		Link:        models.EquipmentPath(eq.ID),
		CreatedAt:   now,
	}

	switch c.Status {
	case StatusOverdue:
		notif.Type = models.NotificationMaintenanceOverdue
		notif.Severity = models.NotificationSeverityError
		notif.Message = fmt.Sprintf(`Equipo "%s" tiene el mantenimiento VENCIDO.`, eq.Name)
	case StatusWarning:
		if c.DaysRemaining == nil {
			return models.Notification{}, false
		}
		notif.Type = models.NotificationMaintenanceDue
		notif.Severity = models.NotificationSeverityWarning
		if eq.Criticality == models.CriticalityHigh {
			notif.Severity = models.NotificationSeverityError
		}
		notif.Message = fmt.Sprintf(`Equipo "%s" requiere mantenimiento en %d día(s).`, eq.Name, *c.DaysRemaining)
	default:
		return models.Notification{}, false
	}

	return notif, true
}
