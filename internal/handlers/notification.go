package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/notification"
)

type NotificationHandler struct {
	service      notification.Service
	defaultLimit int
	logger       zerolog.Logger
}

func NewNotificationHandler(service notification.Service, defaultLimit int, logger zerolog.Logger) *NotificationHandler {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	return &NotificationHandler{
		service:      service,
		defaultLimit: defaultLimit,
		logger:       logger.With().Str("handler", "notification").Logger(),
	}
}

// List returns the most recent unread notifications.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := h.service.ListUnread(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list notifications")
		http.Error(w, "Failed to list notifications", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	notifID := strings.TrimSpace(mux.Vars(r)["notificationID"])
	if notifID == "" {
		http.Error(w, "Notification ID is required", http.StatusBadRequest)
		return
	}

	notif, err := h.service.MarkRead(r.Context(), notifID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to update notification")
		return
	}

	writeJSON(w, http.StatusOK, notif)
}
