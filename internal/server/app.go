// Package server initializes and runs the CloudDrop server: it wires the
// database, payload storage, mail transport and HTTP API together and
// handles graceful shutdown.
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

	"github.com/namaniisc/CloudDrop/internal/logging"
	"github.com/namaniisc/CloudDrop/internal/server/blob"
	"github.com/namaniisc/CloudDrop/internal/server/config"
	"github.com/namaniisc/CloudDrop/internal/server/mail"
	"github.com/namaniisc/CloudDrop/internal/server/repositories/repomanager"
	"github.com/namaniisc/CloudDrop/internal/server/rest"
	"github.com/namaniisc/CloudDrop/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler *rest.Handler
}

func newBlobStore(ctx context.Context, c *config.Config) (blob.Store, error) {
	switch c.BlobBackend {
	case "fs":
		return blob.NewFSStore(c.UploadDir)
	case "s3":
		return blob.NewS3Store(ctx, blob.S3Config{
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown blob backend: %s", c.BlobBackend)
	}
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := newBlobStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("blob init error: %w", err)
	}

	transport, err := mail.NewSMTPTransport(mail.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("mail init error: %w", err)
	}

	ts := services.NewTransferService(db, rm, logger)
	ss := services.NewShareService(db, rm, transport, c.BaseURL, logger)
	handler := rest.NewHandler(ts, ss, store, c.BaseURL, c.MaxUploadSize, logger)

	return &App{config: c, logger: logger, db: db, handler: handler}, nil
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

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := rest.NewRESTServer(app.config.Addr, app.handler, app.logger)

	if err := s.Run(ctx, app.config.ShutdownTimeout); err != nil {
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
		app.startRESTServer(ctx, cancelFunc)
	}()

	wg.Wait()
}

// Close releases the database connection pool.
func (app *App) Close() error {
	return app.db.Close()
}
