package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/authz"
	"github.com/stanstork/maintenance-api/internal/equipment"
	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/repository"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// scopeFromRequest derives the visible fleet from the caller's token.
func scopeFromRequest(r *http.Request) (equipment.Scope, bool) {
	id, ok := authz.IdentityFromRequest(r)
	if !ok {
		return equipment.Scope{}, false
	}
	return equipment.Scope{Role: id.Role, Unit: id.Unit, Responsible: id.Name}, true
}

var validationErrors = []error{
	models.ErrEquipmentIDRequired,
	models.ErrEquipmentNameRequired,
	models.ErrInvalidFrequency,
	models.ErrInvalidDate,
	equipment.ErrRecordDateRequired,
	equipment.ErrRecordDescRequired,
	equipment.ErrRecordDateInFuture,
	repository.ErrInvalidRole,
	repository.ErrUserFieldsRequired,
	repository.ErrUnitRequired,
	repository.ErrNameRequired,
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are logged
// and reported as 500 with a generic message.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrAlreadyExists):
		http.Error(w, "Already exists", http.StatusConflict)
	case isValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Error().Err(err).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	var badRequest badRequestError
	return errors.As(err, &badRequest)
}

// badRequestError marks errors raised while decoding client input.
type badRequestError struct {
	err error
}

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }
