// Package server initializes and runs the ViewTube server: it loads
// configuration, opens the database, runs migrations, and starts the HTTP
// API with graceful shutdown on SIGINT/SIGTERM.
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

	"github.com/viewtube/viewtube/internal/filex"
	"github.com/viewtube/viewtube/internal/logging"
	"github.com/viewtube/viewtube/internal/server/config"
	"github.com/viewtube/viewtube/internal/server/httpapi"
	"github.com/viewtube/viewtube/internal/server/repositories/repomanager"
	"github.com/viewtube/viewtube/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	spoolDir, err := filex.EnsureSubDir(c.TempUploadDir)
	if err != nil {
		return nil, fmt.Errorf("spool dir error: %w", err)
	}

	uploader := services.NewMediaService(c)
	sessionService := services.NewSessionService(db, rm, uploader, logger, c)
	videoService := services.NewVideoService(db, rm, uploader, logger)

	httpServer := httpapi.NewServer(c, logger, sessionService, videoService, spoolDir)

	return &App{config: c, logger: logger, db: db, httpServer: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

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
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
