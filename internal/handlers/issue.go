package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/attachments"
	"github.com/stanstork/maintenance-api/internal/issues"
	"github.com/stanstork/maintenance-api/internal/models"
)

type IssueHandler struct {
	service   *issues.Service
	maxUpload int64
	logger    zerolog.Logger
}

func NewIssueHandler(service *issues.Service, maxUpload int64, logger zerolog.Logger) *IssueHandler {
	if maxUpload <= 0 {
		maxUpload = attachments.DefaultMaxBytes
	}
	return &IssueHandler{
		service:   service,
		maxUpload: maxUpload,
		logger:    logger.With().Str("handler", "issue").Logger(),
	}
}

type issueRequest struct {
	EquipmentID string               `json:"equipment_id"`
	Description string               `json:"description"`
	Severity    models.IssueSeverity `json:"severity"`
	ReportedBy  string               `json:"reported_by"`
}

func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(r)
	if !ok {
		http.Error(w, "Missing user context", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query()
	opts := issues.ListOptions{
		Scope:    scope,
		Status:   models.IssueStatus(strings.ToLower(strings.TrimSpace(query.Get("status")))),
		Severity: models.NormalizeIssueSeverity(query.Get("severity")),
	}
	if opts.Status != "" && !models.IsValidIssueStatus(opts.Status) {
		http.Error(w, "Invalid status filter", http.StatusBadRequest)
		return
	}
	if opts.Severity != "" && !models.IsValidIssueSeverity(opts.Severity) {
		http.Error(w, "Invalid severity filter", http.StatusBadRequest)
		return
	}

	list, err := h.service.List(r.Context(), opts)
	if err != nil {
		writeError(w, h.logger, err, "Failed to list issues")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFromRequest(r)
	if !ok {
		http.Error(w, "Missing user context", http.StatusUnauthorized)
		return
	}

	req, upload, cleanup, err := h.decode(w, r)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ReportedBy) == "" {
		req.ReportedBy = scope.Responsible
	}

	result, err := h.service.Create(r.Context(), models.IssueReport{
		EquipmentID: req.EquipmentID,
		Description: req.Description,
		Severity:    req.Severity,
		ReportedBy:  req.ReportedBy,
	}, upload)
	switch {
	case errors.Is(err, attachments.ErrTooLarge):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	case errors.Is(err, issues.ErrDescriptionRequired), errors.Is(err, issues.ErrInvalidSeverity):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		writeError(w, h.logger, err, "Failed to report issue")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *IssueHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	issueID := strings.TrimSpace(mux.Vars(r)["issueID"])
	if issueID == "" {
		http.Error(w, "Issue ID is required", http.StatusBadRequest)
		return
	}

	var payload struct {
		Status models.IssueStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), issueID, payload.Status)
	if errors.Is(err, issues.ErrInvalidStatus) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeError(w, h.logger, err, "Failed to update issue")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *IssueHandler) decode(w http.ResponseWriter, r *http.Request) (issueRequest, *attachments.Upload, func(), error) {
	var req issueRequest
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
	req.EquipmentID = r.FormValue("equipment_id")
	req.Description = r.FormValue("description")
	req.Severity = models.IssueSeverity(r.FormValue("severity"))
	req.ReportedBy = r.FormValue("reported_by")

	upload, cleanup, err := formUpload(r)
	return req, upload, cleanup, err
}
