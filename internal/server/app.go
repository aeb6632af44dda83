// Package server initializes and runs the ThriveRemote backend: it opens the
// database, applies migrations, wires the service stack, and serves the HTTP
// API until shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/thriveos/thriveremote/internal/logging"
	"github.com/thriveos/thriveremote/internal/server/config"
	"github.com/thriveos/thriveremote/internal/server/httpapi"
	"github.com/thriveos/thriveremote/internal/server/repositories/repomanager"
	"github.com/thriveos/thriveremote/internal/server/services"
	"github.com/thriveos/thriveremote/internal/sessioncache"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	manager repomanager.RepositoryManager
	handler *httpapi.Handler
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	cache := sessioncache.New()

	sessionService := services.NewSessionService(db, manager, cache, cfg, logger)
	ledgerService := services.NewLedgerService(db, manager)
	achievementService := services.NewAchievementService(db, manager, ledgerService, logger)
	activityService := services.NewActivityService(db, manager, achievementService, logger)
	userService := services.NewUserService(db, manager, sessionService, logger)
	actionService := services.NewActionService(db, manager, ledgerService, achievementService, logger)

	handler := httpapi.NewHandler(sessionService, userService, activityService,
		ledgerService, achievementService, actionService, logger)

	return &App{config: cfg, logger: logger, db: db, manager: manager, handler: handler}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	if err := app.manager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.handler.NewRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err)
	}

	return nil
}
