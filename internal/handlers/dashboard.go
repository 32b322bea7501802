package handlers

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/dashboard"
)

type DashboardHandler struct {
	service *dashboard.Service
	logger  zerolog.Logger
}

func NewDashboardHandler(service *dashboard.Service, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("handler", "dashboard").Logger(),
	}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(r)
	if !ok {
		http.Error(w, "Missing user context", http.StatusUnauthorized)
		return
	}
	summary, err := h.service.Summary(r.Context(), scope)
	if err != nil {
		writeError(w, h.logger, err, "Failed to build dashboard")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
