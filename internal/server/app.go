// Package server initializes and runs the file transfer server.
// It opens the metadata database, runs migrations, selects a block storage
// backend, registers the protocol methods, and handles graceful shutdown.
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

	"github.com/dmitrijs2005/rfile/internal/logging"
	"github.com/dmitrijs2005/rfile/internal/server/config"
	"github.com/dmitrijs2005/rfile/internal/server/engine"
	"github.com/dmitrijs2005/rfile/internal/server/handlers"
	"github.com/dmitrijs2005/rfile/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rfile/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	engine *engine.Engine
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	s := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(s)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := newStorageBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	h := handlers.New(db, repos, store, logger, cfg.SecretKey, cfg.TokenValidityDuration)

	eng := engine.New(cfg.EndpointAddr, cfg.CertFile, cfg.PrivateKeyFile, logger).
		Register("ping", h.Ping).
		Register("register", h.Register).
		Register("login", h.Login).
		Register("refresh", h.Refresh).
		Register("presend", h.Presend).
		Register("send", h.Send).
		Register("finish", h.Finish).
		Register("list_file", h.ListFile).
		Register("delete_file", h.DeleteFile).
		Register("get_file_info", h.GetFileInfo).
		Register("get_block_ids", h.GetBlockIDs).
		Register("get_block_info", h.GetBlockInfo).
		Register("get_block", h.GetBlock)

	return &App{config: cfg, logger: logger, db: db, engine: eng}, nil
}

func newStorageBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.StorageBackend {
	case "local":
		return storage.NewLocalBackend(cfg.StorageDir)
	case "s3":
		return storage.NewS3Backend(ctx, storage.S3Options{
			RootUser:     cfg.S3RootUser,
			RootPassword: cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
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
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.engine.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
