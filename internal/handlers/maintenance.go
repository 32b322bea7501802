package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/attachments"
	"github.com/stanstork/maintenance-api/internal/equipment"
	"github.com/stanstork/maintenance-api/internal/maintenance"
	"github.com/stanstork/maintenance-api/internal/models"
)

const (
	attachmentField = "attachment"
	formOverhead    = 1 << 20
)

type MaintenanceHandler struct {
	equipment *equipment.Service
	engine    *maintenance.Engine
	maxUpload int64
	logger    zerolog.Logger
}

func NewMaintenanceHandler(service *equipment.Service, engine *maintenance.Engine, maxUpload int64, logger zerolog.Logger) *MaintenanceHandler {
	if maxUpload <= 0 {
		maxUpload = attachments.DefaultMaxBytes
	}
	return &MaintenanceHandler{
		equipment: service,
		engine:    engine,
		maxUpload: maxUpload,
		logger:    logger.With().Str("handler", "maintenance").Logger(),
	}
}

type maintenanceRecordRequest struct {
	Date        models.Date `json:"date"`
	Description string      `json:"description"`
	PerformedBy string      `json:"performed_by"`
}

func (h *MaintenanceHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	eq, ok := loadScopedEquipment(w, r, h.equipment, h.logger)
	if !ok {
		return
	}
	records, err := h.equipment.ListRecords(r.Context(), eq.ID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to list maintenance records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// AddRecord accepts either a JSON body or a multipart form with an optional
// attachment file.
func (h *MaintenanceHandler) AddRecord(w http.ResponseWriter, r *http.Request) {
	eq, ok := loadScopedEquipment(w, r, h.equipment, h.logger)
	if !ok {
		return
	}

	req, upload, cleanup, err := h.decodeRecord(w, r)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.PerformedBy == "" {
		if scope, ok := scopeFromRequest(r); ok {
			req.PerformedBy = scope.Responsible
		}
	}

	result, err := h.equipment.AddMaintenanceRecord(r.Context(), models.MaintenanceRecord{
		EquipmentID: eq.ID,
		Date:        req.Date,
		Description: req.Description,
		PerformedBy: req.PerformedBy,
	}, upload)
	if errors.Is(err, attachments.ErrTooLarge) {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		writeError(w, h.logger, err, "Failed to add maintenance record")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *MaintenanceHandler) decodeRecord(w http.ResponseWriter, r *http.Request) (maintenanceRecordRequest, *attachments.Upload, func(), error) {
	var req maintenanceRecordRequest
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, nil, nil, fmt.Errorf("invalid request body: %w", err)
		}
		return req, nil, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+formOverhead)
	if err := r.ParseMultipartForm(formOverhead); err != nil {
		return req, nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	if raw := strings.TrimSpace(r.FormValue("date")); raw != "" {
		date, err := models.ParseDate(raw)
		if err != nil {
			return req, nil, func() { _ = r.MultipartForm.RemoveAll() }, err
		}
		req.Date = date
	}
	req.Description = r.FormValue("description")
	req.PerformedBy = strings.TrimSpace(r.FormValue("performed_by"))

	upload, cleanup, err := formUpload(r)
	return req, upload, cleanup, err
}

// formUpload returns the attachment part of a parsed multipart form, if any,
// and a cleanup func releasing the form's temporary files.
func formUpload(r *http.Request) (*attachments.Upload, func(), error) {
	removeForm := func() { _ = r.MultipartForm.RemoveAll() }
	file, header, err := r.FormFile(attachmentField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, removeForm, nil
	}
	if err != nil {
		return nil, removeForm, fmt.Errorf("invalid attachment: %w", err)
	}
	cleanup := func() {
		_ = file.Close()
		removeForm()
	}
	return &attachments.Upload{Name: header.Filename, Reader: file}, cleanup, nil
}

// Sweep re-evaluates every equipment on demand.
func (h *MaintenanceHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.ReevaluateAll(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Int("failed", result.Failed).Msg("manual sweep finished with errors")
	}
	writeJSON(w, http.StatusOK, result)
}
