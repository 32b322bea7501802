package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stanstork/maintenance-api/internal/attachments"
	"github.com/stanstork/maintenance-api/internal/config"
	"github.com/stanstork/maintenance-api/internal/dashboard"
	"github.com/stanstork/maintenance-api/internal/equipment"
	"github.com/stanstork/maintenance-api/internal/handlers"
	"github.com/stanstork/maintenance-api/internal/issues"
	"github.com/stanstork/maintenance-api/internal/maintenance"
	"github.com/stanstork/maintenance-api/internal/middleware"
	"github.com/stanstork/maintenance-api/internal/migration"
	"github.com/stanstork/maintenance-api/internal/models"
	"github.com/stanstork/maintenance-api/internal/notification"
	"github.com/stanstork/maintenance-api/internal/realtime"
	"github.com/stanstork/maintenance-api/internal/repository"
	"github.com/stanstork/maintenance-api/internal/repository/memory"
	"github.com/stanstork/maintenance-api/internal/routes"
	"github.com/stanstork/maintenance-api/internal/temporal"
	"github.com/stanstork/maintenance-api/internal/temporal/activities"
	"github.com/stanstork/maintenance-api/internal/temporal/workflows"
	sweeper "github.com/stanstork/maintenance-api/internal/worker"

	_ "github.com/lib/pq" // PostgreSQL driver
	tc "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

type repositories struct {
	equipment     repository.EquipmentRepository
	records       repository.MaintenanceRecordRepository
	issues        repository.IssueRepository
	notifications repository.NotificationRepository
	users         repository.UserRepository
}

type application struct {
	config        *config.Config
	db            *sqlx.DB
	repos         repositories
	clock         maintenance.Clock
	hub           *realtime.Hub
	notifications notification.Service
	engine        *maintenance.Engine
	logger        zerolog.Logger
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Load configuration.
	cfg := config.Load()

	app := &application{config: cfg, logger: logger}
	app.clock = app.newClock()

	switch cfg.Database.Driver {
	case "memory":
		logger.Warn().Msg("Using in-memory storage; data is lost on restart")
		app.repos = memoryRepositories()
	default:
		db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to the database")
		}
		defer db.Close()
		app.db = db

		// Run database migrations.
		if err := migration.RunMigrations(db.DB, logger); err != nil {
			logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
		app.repos = postgresRepositories(db)
	}

	app.bootstrapAdmin()

	// Notification sink, real-time fan-out and the maintenance engine.
	app.hub = realtime.NewHub(cfg.CORS.AllowedOrigins, logger)
	app.notifications = notification.NewService(app.repos.notifications, logger, app.hub)
	app.engine = maintenance.NewEngine(app.notifications, app.repos.equipment, app.clock, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopSweep := app.startSweep(ctx)

	// Initialize the HTTP router and middleware.
	router := app.initRouter()
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	origins := cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	corsHandler := h.CORS(
		h.AllowedOrigins(origins),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(corsHandler)

	cancel()
	stopSweep()
	app.hub.Close()
	logger.Info().Msg("Application terminated.")
}

func memoryRepositories() repositories {
	return repositories{
		equipment:     memory.NewEquipmentRepository(),
		records:       memory.NewMaintenanceRecordRepository(),
		issues:        memory.NewIssueRepository(),
		notifications: memory.NewNotificationRepository(),
		users:         memory.NewUserRepository(),
	}
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		equipment:     repository.NewEquipmentRepository(db),
		records:       repository.NewMaintenanceRecordRepository(db),
		issues:        repository.NewIssueRepository(db),
		notifications: repository.NewNotificationRepository(db),
		users:         repository.NewUserRepository(db),
	}
}

func (app *application) newClock() maintenance.Clock {
	if tz := app.config.Sweep.Timezone; tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			app.logger.Fatal().Err(err).Str("timezone", tz).Msg("Invalid timezone")
		}
		return maintenance.SystemClock{Location: loc}
	}
	return maintenance.SystemClock{}
}

// bootstrapAdmin creates the first admin account on an empty user table.
func (app *application) bootstrapAdmin() {
	email, password := app.config.Bootstrap.AdminEmail, app.config.Bootstrap.AdminPassword
	if email == "" || password == "" {
		return
	}
	ctx := context.Background()
	count, err := app.repos.users.CountUsers(ctx)
	if err != nil {
		app.logger.Fatal().Err(err).Msg("Failed to count users")
	}
	if count > 0 {
		return
	}
	admin, err := app.repos.users.CreateUser(ctx, models.User{Email: email, Name: "Administrator", Role: models.RoleAdmin}, password)
	if err != nil {
		app.logger.Fatal().Err(err).Msg("Failed to create bootstrap admin")
	}
	app.logger.Info().Str("user_id", admin.ID).Str("email", admin.Email).Msg("Bootstrap admin created")
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter() http.Handler {
	logger := app.logger

	files, err := attachments.NewStore(app.config.Uploads.Dir, app.config.Uploads.MaxBytes, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare uploads directory")
	}

	// Services
	equipmentService := equipment.NewService(app.repos.equipment, app.repos.records, app.engine, files, logger)
	issueService := issues.NewService(app.repos.issues, app.repos.equipment, app.notifications, files, logger)
	dashboardService := dashboard.NewService(app.repos.equipment, app.repos.issues, app.clock, logger)

	// Handlers
	var pinger handlers.Pinger
	if app.db != nil {
		pinger = app.db
	}

	return routes.NewRouter(routes.Handlers{
		Health:        handlers.HealthCheck(pinger),
		Auth:          handlers.NewAuthHandler(app.repos.users, app.config.JWTSecret, logger),
		Equipment:     handlers.NewEquipmentHandler(equipmentService, logger),
		Maintenance:   handlers.NewMaintenanceHandler(equipmentService, app.engine, files.MaxBytes(), logger),
		Issues:        handlers.NewIssueHandler(issueService, files.MaxBytes(), logger),
		Notifications: handlers.NewNotificationHandler(app.notifications, app.config.Notifications.UnreadLimit, logger),
		Dashboard:     handlers.NewDashboardHandler(dashboardService, logger),
		Attachments:   handlers.NewAttachmentHandler(files, logger),
		WebSocket:     app.hub.ServeWS,
	})
}

// startSweep launches the configured periodic re-evaluation and returns a
// function that stops it.
func (app *application) startSweep(ctx context.Context) func() {
	switch app.config.Sweep.Mode {
	case "ticker":
		w, err := sweeper.NewWorker(sweeper.WorkerConfig{
			Engine:     app.engine,
			Interval:   app.config.Sweep.Interval,
			RunOnStart: true,
		}, app.logger)
		if err != nil {
			app.logger.Fatal().Err(err).Msg("Failed to create sweep worker")
		}
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = w.Start(ctx)
		}()
		return func() { <-done }
	case "temporal":
		return app.startTemporalWorker(ctx)
	default:
		app.logger.Info().Msg("Periodic maintenance sweep disabled")
		return func() {}
	}
}

func (app *application) startTemporalWorker(ctx context.Context) func() {
	logger := app.logger

	// Initialize Temporal client.
	temporalClient, err := tc.Dial(tc.Options{
		HostPort:  app.config.Temporal.HostPort,
		Namespace: app.config.Temporal.Namespace,
		Logger:    temporal.NewLogAdapter(logger),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Unable to create Temporal client")
	}

	w := worker.New(temporalClient, temporal.TaskQueueName, worker.Options{})
	w.RegisterWorkflow(workflows.MaintenanceSweepWorkflow)
	w.RegisterActivity(&activities.Activities{Engine: app.engine})

	// Start the worker in a goroutine so it doesn't block.
	go func() {
		logger.Info().Msg("Starting Temporal worker...")
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Fatal().Err(err).Msg("Unable to start worker")
		}
	}()

	run, err := temporalClient.ExecuteWorkflow(ctx, tc.StartWorkflowOptions{
		ID:           temporal.SweepWorkflowID,
		TaskQueue:    temporal.TaskQueueName,
		CronSchedule: app.config.Sweep.Cron,
	}, workflows.MaintenanceSweepWorkflow, temporal.SweepParams{Trigger: "cron"})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to schedule maintenance sweep workflow")
	} else {
		logger.Info().
			Str("workflow_id", run.GetID()).
			Str("cron", app.config.Sweep.Cron).
			Msg("Maintenance sweep scheduled")
	}

	return func() {
		// Stop the Temporal worker.
		logger.Info().Msg("Stopping Temporal worker...")
		w.Stop()
		temporalClient.Close()
		logger.Info().Msg("Temporal worker stopped.")
	}
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler) {
	logger := app.logger
	server := &http.Server{
		Addr:              ":" + app.config.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}
}
