// Package server wires the finsync server together: configuration, the
// Postgres pool, schema migrations, services, and the HTTP endpoint, with
// graceful shutdown on SIGINT/SIGTERM.
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

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/avoropay/finsync/internal/logging"
	"github.com/avoropay/finsync/internal/server/config"
	"github.com/avoropay/finsync/internal/server/httpapi"
	"github.com/avoropay/finsync/internal/server/migrations"
	"github.com/avoropay/finsync/internal/server/repositories/repomanager"
	"github.com/avoropay/finsync/internal/server/services"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	syncService    *services.SyncService
	budgetService  *services.BudgetService
	receiptService *services.ReceiptService
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("db migrate error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		userService:    services.NewUserService(db, m, cfg),
		syncService:    services.NewSyncService(db, m),
		budgetService:  services.NewBudgetService(db, m),
		receiptService: services.NewReceiptService(cfg),
	}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, ".")
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.config.SecretKey,
		app.userService, app.syncService, app.budgetService, app.receiptService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
