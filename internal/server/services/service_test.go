package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/namaniisc/CloudDrop/internal/dbx"
	"github.com/namaniisc/CloudDrop/internal/logging"
	mailx "github.com/namaniisc/CloudDrop/internal/server/mail"
	"github.com/namaniisc/CloudDrop/internal/server/repositories/transfers"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// memoryManager vends the same in-memory repository regardless of the DBTX,
// letting the services run with a nil *sql.DB.
type memoryManager struct {
	repo transfers.Repository
}

func newMemoryManager() *memoryManager {
	return &memoryManager{repo: transfers.NewMemoryRepository()}
}

func (m *memoryManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *memoryManager) Transfers(db dbx.DBTX) transfers.Repository { return m.repo }

// fakeTransport records every notification it is asked to deliver.
type fakeTransport struct {
	sent []*mailx.Notification
	err  error
}

func (f *fakeTransport) Send(ctx context.Context, n *mailx.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}
