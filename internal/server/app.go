// Package server initializes and runs the application server.
// It opens the database, runs migrations, wires the services, handles
// graceful shutdown, and starts the HTTP endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/bluelink/internal/logging"
	"github.com/dmitrijs2005/bluelink/internal/server/config"
	"github.com/dmitrijs2005/bluelink/internal/server/httpapi"
	"github.com/dmitrijs2005/bluelink/internal/server/models"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bluelink/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	identity := services.NewIdentityService(m.Users(db), models.NewRoleRegistry(), logger)
	issuer := services.NewIssuerService(m.Tokens(db), m.Attempts(db), identity, cfg, logger)
	redeemer := services.NewRedeemerService(db, m, identity, cfg, logger)
	admin := services.NewAdminService(m.Tokens(db), m.Attempts(db), logger)

	srv := httpapi.NewServer(cfg, issuer, redeemer, admin, logger)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err)
	}
}
