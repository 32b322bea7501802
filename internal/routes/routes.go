package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stanstork/maintenance-api/internal/authz"
	"github.com/stanstork/maintenance-api/internal/handlers"
	"github.com/stanstork/maintenance-api/internal/models"
)

type Handlers struct {
	Health        http.HandlerFunc
	Auth          *handlers.AuthHandler
	Equipment     *handlers.EquipmentHandler
	Maintenance   *handlers.MaintenanceHandler
	Issues        *handlers.IssueHandler
	Notifications *handlers.NotificationHandler
	Dashboard     *handlers.DashboardHandler
	Attachments   *handlers.AttachmentHandler
	// WebSocket is optional; the route is registered only when set.
	WebSocket http.HandlerFunc
}

// NewRouter sets up the API routes
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// Public auth endpoints
	router.HandleFunc("/api/login", h.Auth.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(h.Auth.JWTMiddleware)

	manager := func(fn http.HandlerFunc) http.Handler {
		return authz.RequireRoleHandler(models.RoleUnitManager, fn)
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return authz.RequireRoleHandler(models.RoleAdmin, fn)
	}

	api.Handle("/users", admin(h.Auth.CreateUser)).Methods(http.MethodPost)

	api.HandleFunc("/equipment", h.Equipment.List).Methods(http.MethodGet)
	api.Handle("/equipment", manager(h.Equipment.Create)).Methods(http.MethodPost)
	api.HandleFunc("/equipment/{equipmentID}", h.Equipment.Get).Methods(http.MethodGet)
	api.Handle("/equipment/{equipmentID}", manager(h.Equipment.Update)).Methods(http.MethodPut)
	api.Handle("/equipment/{equipmentID}", manager(h.Equipment.Delete)).Methods(http.MethodDelete)
	api.HandleFunc("/equipment/{equipmentID}/status", h.Equipment.Status).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{equipmentID}/maintenance", h.Maintenance.ListRecords).Methods(http.MethodGet)
	api.HandleFunc("/equipment/{equipmentID}/maintenance", h.Maintenance.AddRecord).Methods(http.MethodPost)

	api.Handle("/maintenance/sweep", admin(h.Maintenance.Sweep)).Methods(http.MethodPost)

	api.HandleFunc("/issues", h.Issues.List).Methods(http.MethodGet)
	api.HandleFunc("/issues", h.Issues.Create).Methods(http.MethodPost)
	api.Handle("/issues/{issueID}/status", manager(h.Issues.UpdateStatus)).Methods(http.MethodPut)

	api.HandleFunc("/notifications", h.Notifications.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{notificationID}/read", h.Notifications.MarkRead).Methods(http.MethodPost)

	api.HandleFunc("/dashboard", h.Dashboard.Summary).Methods(http.MethodGet)

	if h.Attachments != nil {
		api.HandleFunc("/attachments/{name}", h.Attachments.Download).Methods(http.MethodGet)
	}

	if h.WebSocket != nil {
		api.HandleFunc("/ws/notifications", h.WebSocket).Methods(http.MethodGet)
	}

	return router
}
