// Package app wires configuration, services, middleware and routes into
// a runnable HTTP application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mtorres1190/MATT-Report/internal/config"
	"github.com/mtorres1190/MATT-Report/internal/errors"
	"github.com/mtorres1190/MATT-Report/internal/fred"
	"github.com/mtorres1190/MATT-Report/internal/infrastructure"
	custommw "github.com/mtorres1190/MATT-Report/internal/middleware"
	"github.com/mtorres1190/MATT-Report/internal/services"
	handlers "github.com/mtorres1190/MATT-Report/internal/transport/http"
)

const (
	// Version is the application version, overridable at build time.
	Version = "1.0.0"
	// AppName is the product name shown at startup.
	AppName = "MATT Report Service"
)

// Application is the dependency container for the HTTP server.
type Application struct {
	Config *config.Config
	Paths  *config.Paths
	Router *chi.Mux
	Server *http.Server
	Logger *slog.Logger

	Reports *services.ReportService
	Health  *services.HealthService
	Rates   *fred.Client

	errorHandler *errors.ErrorHandler
}

// NewApplication loads configuration and builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version))

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logger.Info("paths resolved",
		slog.String("executable_dir", paths.ExecutableDir),
		slog.String("data_dir", paths.DataDir),
		slog.String("reports_dir", paths.ReportsDir),
		slog.String("hub_file", paths.HubFile),
		slog.String("plan_file", paths.PlanFile))

	app := &Application{
		Config:       cfg,
		Paths:        paths,
		Logger:       logger,
		errorHandler: errors.NewErrorHandler(logger),
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}
	app.setupRouter()
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() error {
	reports, err := services.NewReportService(a.Config, a.Paths, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create report service: %w", err)
	}
	a.Reports = reports
	a.Health = services.NewHealthService(Version, a.Paths, reports, a.Logger)
	a.Rates = fred.NewClient(a.Config.Fred, a.Logger)
	return nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.Metrics)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.Logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(custommw.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		if a.Config.Server.WriteTimeout > 0 {
			r.Use(custommw.Timeout(a.Config.Server.WriteTimeout, a.Logger))
		}
		r.Use(custommw.AccessCode(a.Config.Security, a.Logger))

		r.Mount("/health", handlers.NewHealthHandler(a.Health, a.Logger).Routes())
		r.Mount("/uploads", handlers.NewUploadHandler(a.Reports, a.Logger, a.errorHandler, a.Config.Server.MaxUploadBytes).Routes())
		r.Mount("/reports", handlers.NewReportHandler(a.Reports, a.Logger, a.errorHandler).Routes())
		r.Mount("/rates", handlers.NewRatesHandler(a.Rates, a.Logger, a.errorHandler).Routes())
	})

	// Outside the API group so scrapes skip the access gate.
	r.Handle("/metrics", promhttp.Handler())

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start loads reference data and starts the HTTP server. A missing
// reference table is not fatal; the health endpoint reports degraded and
// uploads are rejected until the tables appear.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	if err := a.Reports.LoadReferenceData(ctx); err != nil {
		a.Logger.WarnContext(ctx, "reference data not loaded at startup",
			slog.String("error", err.Error()))
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the HTTP server.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.ErrorContext(ctx, "failed to close log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
