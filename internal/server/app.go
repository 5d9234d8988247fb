// Package server initializes and runs the application: it opens the
// database, runs migrations, wires the services together and serves the HTTP
// endpoint until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/secblog/internal/logging"
	"github.com/dmitrijs2005/secblog/internal/mfa"
	"github.com/dmitrijs2005/secblog/internal/server/audit"
	"github.com/dmitrijs2005/secblog/internal/server/config"
	"github.com/dmitrijs2005/secblog/internal/server/governor"
	"github.com/dmitrijs2005/secblog/internal/server/httpapi"
	"github.com/dmitrijs2005/secblog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secblog/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	audit  *audit.Recorder
	server *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	rec, err := audit.NewRecorder(cfg.AuditLogPath)
	if err != nil {
		return nil, fmt.Errorf("audit log init error: %w", err)
	}

	sessions := governor.NewStore()
	limiter := governor.NewLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow,
		cfg.GlobalRequestLimit, cfg.GlobalRateWindow)

	accounts := services.NewAccountService(db, rm, sessions, limiter,
		mfa.NewEngine(cfg.MFAIssuer), rec, logger, cfg)
	posts := services.NewPostService(db, rm, rec, logger)
	security := services.NewSecurityService(rec, logger)

	server := httpapi.NewServer(cfg, logger, rec, accounts, posts, security)

	return &App{config: cfg, logger: logger, db: db, audit: rec, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server error", "err", err)
	}

	if err := app.audit.Close(); err != nil {
		app.logger.Error(ctx, "audit log close error", "err", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "err", err)
	}

	app.logger.Info(ctx, "app stopped")
}
