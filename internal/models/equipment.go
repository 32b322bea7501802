package models

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	ErrEquipmentIDRequired   = errors.New("equipment id is required")
	ErrEquipmentNameRequired = errors.New("equipment name is required")
	ErrInvalidFrequency      = errors.New("maintenance frequency value must be positive")
)

type FrequencyUnit string

const (
	FrequencyDays   FrequencyUnit = "days"
	FrequencyWeeks  FrequencyUnit = "weeks"
	FrequencyMonths FrequencyUnit = "months"
)

var frequencyUnitAliases = map[string]FrequencyUnit{
	"day":     FrequencyDays,
	"days":    FrequencyDays,
	"día":     FrequencyDays,
	"días":    FrequencyDays,
	"dias":    FrequencyDays,
	"week":    FrequencyWeeks,
	"weeks":   FrequencyWeeks,
	"semana":  FrequencyWeeks,
	"semanas": FrequencyWeeks,
	"month":   FrequencyMonths,
	"months":  FrequencyMonths,
	"mes":     FrequencyMonths,
	"meses":   FrequencyMonths,
}

// ParseFrequencyUnit maps English and Spanish unit labels onto the canonical
// units. Unknown labels are kept verbatim; they normalize to zero days.
func ParseFrequencyUnit(raw string) FrequencyUnit {
	trimmed := strings.TrimSpace(raw)
	if unit, ok := frequencyUnitAliases[strings.ToLower(trimmed)]; ok {
		return unit
	}
	return FrequencyUnit(trimmed)
}

func (u *FrequencyUnit) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = ParseFrequencyUnit(raw)
	return nil
}

// Frequency is the configured maintenance interval.
type Frequency struct {
	Value int           `json:"value"`
	Unit  FrequencyUnit `json:"unit"`
}

type Criticality string

const (
	CriticalityHigh   Criticality = "high"
	CriticalityMedium Criticality = "medium"
	CriticalityLow    Criticality = "low"
)

var criticalityAliases = map[string]Criticality{
	"high":   CriticalityHigh,
	"alta":   CriticalityHigh,
	"medium": CriticalityMedium,
	"media":  CriticalityMedium,
	"low":    CriticalityLow,
	"baja":   CriticalityLow,
}

func ParseCriticality(raw string) Criticality {
	trimmed := strings.TrimSpace(raw)
	if c, ok := criticalityAliases[strings.ToLower(trimmed)]; ok {
		return c
	}
	return Criticality(trimmed)
}

func (c *Criticality) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ParseCriticality(raw)
	return nil
}

type Equipment struct {
	ID                            string      `json:"id"`
	Name                          string      `json:"name"`
	Brand                         string      `json:"brand,omitempty"`
	Model                         string      `json:"model,omitempty"`
	LocationBuilding              string      `json:"location_building,omitempty"`
	LocationUnit                  string      `json:"location_unit,omitempty"`
	LastCalibrationDate           *Date       `json:"last_calibration_date,omitempty"`
	LastMaintenanceDate           *Date       `json:"last_maintenance_date,omitempty"`
	Encargado                     string      `json:"encargado,omitempty"`
	MaintenanceFrequency          *Frequency  `json:"maintenance_frequency,omitempty"`
	CustomMaintenanceInstructions string      `json:"custom_maintenance_instructions,omitempty"`
	Criticality                   Criticality `json:"criticality,omitempty"`
	CreatedAt                     time.Time   `json:"created_at"`
	UpdatedAt                     time.Time   `json:"updated_at"`
}

// Normalize trims text fields and collapses empty optional values so that
// absent scheduling data is always represented by nil.
func (e *Equipment) Normalize() {
	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	e.Brand = strings.TrimSpace(e.Brand)
	e.Model = strings.TrimSpace(e.Model)
	e.LocationBuilding = strings.TrimSpace(e.LocationBuilding)
	e.LocationUnit = strings.TrimSpace(e.LocationUnit)
	e.Encargado = strings.TrimSpace(e.Encargado)
	e.CustomMaintenanceInstructions = strings.TrimSpace(e.CustomMaintenanceInstructions)
	if e.LastCalibrationDate != nil && e.LastCalibrationDate.IsZero() {
		e.LastCalibrationDate = nil
	}
	if e.LastMaintenanceDate != nil && e.LastMaintenanceDate.IsZero() {
		e.LastMaintenanceDate = nil
	}
	if f := e.MaintenanceFrequency; f != nil && f.Value == 0 && f.Unit == "" {
		e.MaintenanceFrequency = nil
	}
}

func (e *Equipment) Validate() error {
	if e.ID == "" {
		return ErrEquipmentIDRequired
	}
	if e.Name == "" {
		return ErrEquipmentNameRequired
	}
	if e.MaintenanceFrequency != nil && e.MaintenanceFrequency.Value < 0 {
		return ErrInvalidFrequency
	}
	return nil
}

// HasSchedule reports whether the write path should run the notification
// decision for this equipment.
func (e *Equipment) HasSchedule() bool {
	return e.LastMaintenanceDate != nil &&
		e.MaintenanceFrequency != nil &&
		e.MaintenanceFrequency.Value > 0 &&
		e.MaintenanceFrequency.Unit != ""
}

// EquipmentPath is the UI path of an equipment detail page.
func EquipmentPath(id string) string {
	return "/equipment/" + url.PathEscape(id)
}
