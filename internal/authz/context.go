package authz

import (
	"context"
	"net/http"

	"github.com/stanstork/maintenance-api/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the authenticated caller as carried by the bearer token.
type Identity struct {
	UserID string
	Role   models.UserRole
	Unit   string
	Name   string
}

// WithIdentity stores the caller on the context. Unknown roles fall back to
// the lowest tier.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if !models.IsValidRole(id.Role) {
		id.Role = models.RoleTechnician
	}
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

func IdentityFromRequest(r *http.Request) (Identity, bool) {
	return IdentityFromContext(r.Context())
}

func UserIDFromRequest(r *http.Request) (string, bool) {
	id, ok := IdentityFromRequest(r)
	if !ok {
		return "", false
	}
	return id.UserID, true
}

func RoleFromRequest(r *http.Request) (models.UserRole, bool) {
	id, ok := IdentityFromRequest(r)
	if !ok {
		return "", false
	}
	return id.Role, true
}
