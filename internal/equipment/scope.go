package equipment

import (
	"strings"

	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
)

// Scope is the portion of the fleet a caller may see: admins see everything,
// unit managers their unit and technicians the equipment assigned to them.
type Scope struct {
	Role        models.UserRole
	Unit        string
	Responsible string
}

func (s Scope) Filter() repository.EquipmentFilter {
	switch s.Role {
	case models.RoleUnitManager:
		return repository.EquipmentFilter{Unit: strings.TrimSpace(s.Unit)}
	case models.RoleTechnician:
		return repository.EquipmentFilter{Encargado: strings.TrimSpace(s.Responsible)}
	default:
		return repository.EquipmentFilter{}
	}
}

// Restricted reports whether the scope narrows the fleet at all.
func (s Scope) Restricted() bool {
	return s.Role == models.RoleUnitManager || s.Role == models.RoleTechnician
}

// Empty reports whether a restricted scope lacks the unit or name it is keyed
// on. An empty scope matches no equipment.
func (s Scope) Empty() bool {
	switch s.Role {
	case models.RoleUnitManager:
		return strings.TrimSpace(s.Unit) == ""
	case models.RoleTechnician:
		return strings.TrimSpace(s.Responsible) == ""
	default:
		return false
	}
}

// Allows reports whether eq falls inside the scope.
func (s Scope) Allows(eq models.Equipment) bool {
	if s.Empty() {
		return false
	}
	f := s.Filter()
	if f.Unit != "" && eq.LocationUnit != f.Unit {
		return false
	}
	if f.Encargado != "" && eq.Encargado != f.Encargado {
		return false
	}
	return true
}
