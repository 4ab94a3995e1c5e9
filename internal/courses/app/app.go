package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpapi "github.com/aussiebroadwan/courses/internal/courses/http"
	"github.com/aussiebroadwan/courses/internal/courses/service"
	"github.com/aussiebroadwan/courses/internal/courses/store"
	"github.com/aussiebroadwan/courses/internal/courses/store/drivers/sqlite"
	"github.com/aussiebroadwan/courses/pkg/cryptox"
	"github.com/aussiebroadwan/courses/pkg/httpx"
	"github.com/aussiebroadwan/courses/pkg/jwtx"
	"github.com/aussiebroadwan/courses/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the course catalogue together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	hasher   cryptox.Hasher
	sessions *httpapi.Sessions
	registry *prometheus.Registry

	seedService    *service.SeedService
	catalogService *service.CatalogService
	authService    *service.AuthService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "courses",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initSecurity(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	// Seed once up front so the first request does not pay for it.
	if err := app.seedService.EnsureSeeded(slogx.WithContext(context.Background(), app.logger)); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Handler exposes the root HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("courses service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down courses service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("courses service stopped")
	return nil
}

// initSecurity builds the password hasher and the session codec.
func (app *Application) initSecurity() error {
	pepper, err := cryptox.LoadOrGeneratePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	hasher, err := cryptox.NewHasher(app.cfg.PasswordHasher, pepper)
	if err != nil {
		return fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	app.hasher = hasher

	codec, err := jwtx.NewHS256(app.cfg.SecretKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session codec: %w", err)
	}
	app.sessions = &httpapi.Sessions{
		Codec:  codec,
		Secure: app.cfg.SecureCookies,
	}

	if app.cfg.SecretKey == "your_secret_key" && app.cfg.Env != "dev" {
		app.logger.Warn("using the default secret key outside dev; sessions can be forged")
	}
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.seedService = &service.SeedService{Store: app.db}
	app.catalogService = &service.CatalogService{Store: app.db}
	app.authService = &service.AuthService{
		Store:  app.db,
		Hasher: app.hasher,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := httpapi.NewRouter(
		app.sessions,
		httpx.NewMetrics(app.registry),
		BuildVersion,
		app.db,
		app.logger,
	)

	router.SeedService = app.seedService
	router.CatalogService = app.catalogService
	router.AuthService = app.authService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
