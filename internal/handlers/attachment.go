package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/attachments"
)

type AttachmentHandler struct {
	files  *attachments.Store
	logger zerolog.Logger
}

func NewAttachmentHandler(files *attachments.Store, logger zerolog.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		files:  files,
		logger: logger.With().Str("handler", "attachment").Logger(),
	}
}

// Download streams a stored attachment by its generated name.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	f, err := h.files.Open(name)
	switch {
	case errors.Is(err, attachments.ErrInvalidName):
		http.Error(w, "Invalid attachment name", http.StatusBadRequest)
		return
	case errors.Is(err, os.ErrNotExist):
		http.Error(w, "Not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error().Err(err).Str("name", name).Msg("failed to open attachment")
		http.Error(w, "Failed to open attachment", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.logger.Error().Err(err).Str("name", name).Msg("failed to stat attachment")
		http.Error(w, "Failed to open attachment", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(name)+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}
