package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/equipment"
	"github.com/stanstork/maintenance-api/internal/maintenance"
	"github.com/stanstork/maintenance-api/internal/models"
)

type EquipmentHandler struct {
	service *equipment.Service
	logger  zerolog.Logger
}

func NewEquipmentHandler(service *equipment.Service, logger zerolog.Logger) *EquipmentHandler {
	return &EquipmentHandler{
		service: service,
		logger:  logger.With().Str("handler", "equipment").Logger(),
	}
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(r)
	if !ok {
		http.Error(w, "Missing user context", http.StatusUnauthorized)
		return
	}

	opts := equipment.ListOptions{Scope: scope}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, ok := maintenance.ParseStatus(raw)
		if !ok {
			http.Error(w, "Invalid status filter", http.StatusBadRequest)
			return
		}
		opts.Status = status
	}

	views, err := h.service.List(r.Context(), opts)
	if err != nil {
		writeError(w, h.logger, err, "Failed to list equipment")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadScoped(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Status returns only the derived maintenance state of an equipment.
func (h *EquipmentHandler) Status(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadScoped(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view.Classification)
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(r)
	if !ok {
		http.Error(w, "Missing user context", http.StatusUnauthorized)
		return
	}

	var eq models.Equipment
	if err := json.NewDecoder(r.Body).Decode(&eq); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if scope.Role == models.RoleUnitManager && strings.TrimSpace(eq.LocationUnit) == "" {
		eq.LocationUnit = scope.Unit
	}
	eq.Normalize()
	if !scope.Allows(eq) {
		http.Error(w, "Equipment outside of your unit", http.StatusForbidden)
		return
	}

	result, err := h.service.Create(r.Context(), eq)
	if err != nil {
		writeError(w, h.logger, err, "Failed to create equipment")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := h.loadScoped(w, r)
	if !ok {
		return
	}
	scope, _ := scopeFromRequest(r)

	var eq models.Equipment
	if err := json.NewDecoder(r.Body).Decode(&eq); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	eq.ID = current.ID
	eq.Normalize()
	if !scope.Allows(eq) {
		http.Error(w, "Equipment outside of your unit", http.StatusForbidden)
		return
	}

	result, err := h.service.Update(r.Context(), eq)
	if err != nil {
		writeError(w, h.logger, err, "Failed to update equipment")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := h.loadScoped(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), current.ID); err != nil {
		writeError(w, h.logger, err, "Failed to delete equipment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EquipmentHandler) loadScoped(w http.ResponseWriter, r *http.Request) (equipment.View, bool) {
	return loadScopedEquipment(w, r, h.service, h.logger)
}

// loadScopedEquipment resolves the {equipmentID} route variable, writing the
// error response itself when the equipment is missing or not visible.
func loadScopedEquipment(w http.ResponseWriter, r *http.Request, service *equipment.Service, logger zerolog.Logger) (equipment.View, bool) {
	scope, ok := scopeFromRequest(r)
	if !ok {
		http.Error(w, "Missing user context", http.StatusUnauthorized)
		return equipment.View{}, false
	}
	id := strings.TrimSpace(mux.Vars(r)["equipmentID"])
	if id == "" {
		http.Error(w, "Equipment ID is required", http.StatusBadRequest)
		return equipment.View{}, false
	}
	view, err := service.GetScoped(r.Context(), id, scope)
	if err != nil {
		writeError(w, logger, err, "Failed to load equipment")
		return equipment.View{}, false
	}
	return view, true
}
