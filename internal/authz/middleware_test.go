package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRequireRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guarded := RequireRoleHandler(models.RoleUnitManager, ok)

	cases := []struct {
		name string
		id   *Identity
		want int
	}{
		{"anonymous", nil, http.StatusForbidden},
		{"technician", &Identity{UserID: "u1", Role: models.RoleTechnician}, http.StatusForbidden},
		{"unit manager", &Identity{UserID: "u2", Role: models.RoleUnitManager}, http.StatusNoContent},
		{"admin", &Identity{UserID: "u3", Role: models.RoleAdmin}, http.StatusNoContent},
		{"unknown role", &Identity{UserID: "u4", Role: "owner"}, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.id != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tc.id))
			}
			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestIdentityFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := IdentityFromRequest(req)
	assert.False(t, ok)

	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: "u1", Role: "bogus", Unit: "UCI"}))
	role, ok := RoleFromRequest(req)
	assert.True(t, ok)
	assert.Equal(t, models.RoleTechnician, role)

	userID, ok := UserIDFromRequest(req)
	assert.True(t, ok)
	assert.Equal(t, "u1", userID)
}
