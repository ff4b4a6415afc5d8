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

	httpapi "github.com/aussiebroadwan/jwtauth/internal/auth/http"
	"github.com/aussiebroadwan/jwtauth/internal/auth/service"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/jwtauth/pkg/cryptox"
	"github.com/aussiebroadwan/jwtauth/pkg/httpx"
	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	hasher cryptox.Hasher
	codec  *jwtx.Codec
	ledger *service.Ledger

	// Services
	authService         *service.AuthService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initCrypto(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(context.Background()); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion, "env", app.cfg.Env)
	if app.cfg.IsDevelopment() {
		app.logger.Warn("development mode: error responses include internal error chains", "env", app.cfg.Env)
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initCrypto loads the pepper and builds the password hasher and token codec.
func (app *Application) initCrypto() error {
	pepper, err := cryptox.LoadOrGeneratePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	hasher, err := cryptox.NewHasher(app.cfg.PasswordHasher, pepper)
	if err != nil {
		return err
	}
	app.hasher = hasher

	codec, err := jwtx.NewCodec(jwtx.CodecConfig{
		AccessSecret:  []byte(app.cfg.AccessTokenSecret),
		AccessTTL:     app.cfg.AccessTokenExpiry,
		RefreshSecret: []byte(app.cfg.RefreshTokenSecret),
		RefreshTTL:    app.cfg.RefreshTokenExpiry,
		Issuer:        app.cfg.Issuer,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	app.logger.Info("token codec ready",
		"access_ttl", app.cfg.AccessTokenExpiry,
		"refresh_ttl", app.cfg.RefreshTokenExpiry,
		"password_hasher", app.cfg.PasswordHasher,
	)
	return nil
}

// initDatabase opens the store named by DATABASE_URL and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db     store.Store
		err    error
		driver = "sqlite"
	)
	if app.cfg.UsesPostgres() {
		driver = "postgres"
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	} else {
		db, err = sqlite.NewStore(app.cfg.DatabaseURL)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", driver)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.ledger = &service.Ledger{}

	app.authService = &service.AuthService{
		Store:  app.db,
		Hasher: app.hasher,
		Codec:  app.codec,
		Ledger: app.ledger,
	}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.ledger,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		app.db,
		app.logger,
		httpapi.Options{
			BuildVersion: BuildVersion,
			Dev:          app.cfg.IsDevelopment(),
			SecureCookie: app.cfg.CookieSecure,
			CORS: httpx.CORSConfig{
				AllowedOrigins:   app.cfg.CORSOrigins,
				AllowCredentials: true,
			},
		},
	)

	// Wire services to router
	router.AuthService = app.authService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
