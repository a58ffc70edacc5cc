package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	httpapi "github.com/campusware/edukit/internal/addon/http"
	"github.com/campusware/edukit/internal/addon/service"
	"github.com/campusware/edukit/internal/addon/store"
	"github.com/campusware/edukit/internal/addon/store/drivers/sqlite"
	"github.com/campusware/edukit/pkg/cryptox"
	"github.com/campusware/edukit/pkg/jwtx"
	"github.com/campusware/edukit/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the add-on service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	sessionService      *service.SessionService
	credentialService   *service.CredentialService
	launchService       *service.LaunchService
	attachmentService   *service.AttachmentService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "addon-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("addon service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down addon service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("addon service stopped")
	return nil
}

// initDatabase opens the store with the sealing key and applies migrations
func (app *Application) initDatabase() error {
	sealKey, err := loadOrCreateSealKey(app.cfg.SealKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load seal key: %w", err)
	}
	sealer, err := cryptox.NewSealer(sealKey)
	if err != nil {
		return fmt.Errorf("failed to initialize sealer: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn, sealer)
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

// initServices initializes all business logic services
func (app *Application) initServices() error {
	endpoint := google.Endpoint
	if app.cfg.OAuthAuthURL != "" && app.cfg.OAuthTokenURL != "" {
		endpoint = oauth2.Endpoint{
			AuthURL:  app.cfg.OAuthAuthURL,
			TokenURL: app.cfg.OAuthTokenURL,
		}
	}

	app.sessionService = &service.SessionService{
		Store: app.db,
		TTL:   app.cfg.SessionTTL,
	}

	app.credentialService = &service.CredentialService{
		Store: app.db,
		OAuth: &oauth2.Config{
			ClientID:     app.cfg.OAuthClientID,
			ClientSecret: app.cfg.OAuthClientSecret,
			RedirectURL:  app.cfg.BaseURL + "/oauth2/callback",
			Scopes:       app.cfg.OAuthScopes,
			Endpoint:     endpoint,
		},
		StateTTL:      app.cfg.StateTTL,
		ExpiryMargin:  app.cfg.ExpiryMargin,
		RevocationURL: app.cfg.OAuthRevokeURL,
	}

	verifier, err := app.buildRoleVerifier()
	if err != nil {
		return err
	}

	app.launchService = &service.LaunchService{
		Store:       app.db,
		Credentials: app.credentialService,
		Verifier:    verifier,
	}

	app.attachmentService = &service.AttachmentService{
		Store:         app.db,
		Credentials:   app.credentialService,
		NewHostClient: service.ClassroomHostFactory(app.cfg.ClassroomEndpoint),
		BaseURL:       app.cfg.BaseURL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	return nil
}

// buildRoleVerifier selects the role trust source from config
func (app *Application) buildRoleVerifier() (service.RoleVerifier, error) {
	switch app.cfg.RoleSource {
	case "", "host":
		return &service.HostRoleVerifier{
			Credentials: app.credentialService,
			Endpoint:    app.cfg.ClassroomEndpoint,
		}, nil
	case "token":
		v, err := jwtx.NewVerifierFromPEMFile(
			app.cfg.LaunchKeyFile,
			app.cfg.LaunchIssuer,
			app.cfg.LaunchAudience,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load launch token key: %w", err)
		}
		return &service.TokenRoleVerifier{Verifier: v}, nil
	default:
		return nil, fmt.Errorf("unknown role source %q", app.cfg.RoleSource)
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	router.SessionService = app.sessionService
	router.CredentialService = app.credentialService
	router.LaunchService = app.launchService
	router.AttachmentService = app.attachmentService
	router.ApplyRoutes()

	app.router = router
	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}

// loadOrCreateSealKey reads the sealing key from path, generating a new one
// on first run so dev environments work out of the box.
func loadOrCreateSealKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	key = make([]byte, cryptox.SealKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
