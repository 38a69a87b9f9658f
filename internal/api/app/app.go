// Package app assembles the fleet API: configuration, database, crypto,
// services, HTTP server, and lifecycle (seed on start, graceful shutdown).
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/routefleet/routerman/internal/api/authn"
	httpapi "github.com/routefleet/routerman/internal/api/http"
	"github.com/routefleet/routerman/internal/api/service"
	"github.com/routefleet/routerman/internal/api/store"
	"github.com/routefleet/routerman/internal/api/store/drivers/sqlite"
	"github.com/routefleet/routerman/pkg/cryptox"
	"github.com/routefleet/routerman/pkg/jwtx"
	"github.com/routefleet/routerman/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the fleet API with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	signer    jwtx.Signer
	verifier  jwtx.Verifier
	secretBox *cryptox.SecretBox
	resolver  *authn.Resolver

	authService       *service.AuthService
	tokenAdminService *service.TokenAdminService
	credentialService *service.CredentialService
	telemetryService  *service.TelemetryService
	updateService     *service.UpdateService
	providerService   *service.ProviderService
	profileService    *service.RouterProfileService
	seeder            *service.Seeder
	housekeeping      *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized. The config
// must already be validated.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "routerman-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	signer, err := jwtx.NewSignerHS256([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer

	verifier, err := jwtx.NewVerifierHS256([]byte(cfg.JWTSecret), cfg.Issuer, jwtx.DefaultLeeway)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	app.verifier = verifier

	box, err := cryptox.NewSecretBox([]byte(cfg.SecretStoreKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secret store: %w", err)
	}
	app.secretBox = box

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.resolver = authn.NewResolver(
		&authn.SignedStrategy{Verifier: app.verifier},
		&authn.OpaqueStrategy{Tokens: app.db.Tokens()},
	)

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run seeds the database, starts background workers and the HTTP server,
// and blocks until shutdown is requested.
func (app *Application) Run() error {
	if err := app.seeder.Seed(context.Background()); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	app.housekeeping.Start()

	app.logger.Info("fleet api starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down fleet api...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("fleet api stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:  app.db,
		Signer: app.signer,
		Issuer: app.cfg.Issuer,
	}
	app.tokenAdminService = &service.TokenAdminService{
		Store:  app.db,
		Signer: app.signer,
		Issuer: app.cfg.Issuer,
	}
	app.credentialService = &service.CredentialService{Store: app.db, Box: app.secretBox}
	app.telemetryService = &service.TelemetryService{Store: app.db}
	app.updateService = &service.UpdateService{Store: app.db}
	app.providerService = &service.ProviderService{Store: app.db}
	app.profileService = &service.RouterProfileService{Store: app.db}

	app.seeder = &service.Seeder{
		Store:           app.db,
		Box:             app.secretBox,
		Logger:          app.logger,
		AdminUsername:   app.cfg.AdminUsername,
		AdminPassword:   app.cfg.AdminPassword,
		GenericAppToken: app.cfg.GenericAppToken,
		SuperUserToken:  app.cfg.SuperUserToken,
	}

	app.housekeeping = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.TelemetryRetention,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.resolver, BuildVersion, app.db, app.logger)

	router.AuthService = app.authService
	router.TokenAdminService = app.tokenAdminService
	router.CredentialService = app.credentialService
	router.TelemetryService = app.telemetryService
	router.UpdateService = app.updateService
	router.ProviderService = app.providerService
	router.ProfileService = app.profileService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
