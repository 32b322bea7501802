package models

import "time"

type UserRole string

const (
	RoleTechnician  UserRole = "technician"
	RoleUnitManager UserRole = "unit_manager"
	RoleAdmin       UserRole = "admin"
)

var roleRank = map[UserRole]int{
	RoleTechnician:  1,
	RoleUnitManager: 2,
	RoleAdmin:       3,
}

func IsValidRole(role UserRole) bool {
	_, ok := roleRank[role]
	return ok
}

// HasAtLeast reports whether role sits at or above the required tier.
func HasAtLeast(role, required UserRole) bool {
	return roleRank[role] >= roleRank[required] && IsValidRole(role)
}

type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Role         UserRole  `json:"role" db:"role"`
	Unit         string    `json:"unit,omitempty" db:"unit"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
