// Package services contains server-side business logic: registering
// ingested payloads as transfer records and dispatching share notifications.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/namaniisc/CloudDrop/internal/common"
	"github.com/namaniisc/CloudDrop/internal/logging"
	"github.com/namaniisc/CloudDrop/internal/server/models"
	"github.com/namaniisc/CloudDrop/internal/server/repositories/repomanager"
)

// PayloadMeta carries the result of a successful binary ingestion. The size
// ceiling is enforced by the ingestion path; an oversized payload never
// reaches the store.
type PayloadMeta struct {
	Filename    string
	StoragePath string
	Size        int64
}

// TransferService owns transfer record identity and persistence.
type TransferService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewTransferService constructs a TransferService.
func NewTransferService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *TransferService {
	return &TransferService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "transfer_service"),
	}
}

// Create registers an ingested payload as a new transfer record. The id is
// generated server-side and never taken from the client. An id collision is
// retried once with a fresh id before giving up.
func (s *TransferService) Create(ctx context.Context, meta *PayloadMeta) (*models.Transfer, error) {
	if meta.Size <= 0 {
		return nil, fmt.Errorf("%w: empty payload", common.ErrorValidation)
	}

	repo := s.repomanager.Transfers(s.db)
	t := &models.Transfer{
		ID:          uuid.NewString(),
		Filename:    meta.Filename,
		StoragePath: meta.StoragePath,
		Size:        meta.Size,
		CreatedAt:   time.Now(),
	}

	err := repo.Create(ctx, t)
	if errors.Is(err, common.ErrorUniqueViolation) {
		s.logger.Warn(ctx, "transfer id collision, regenerating", "transfer_id", t.ID)
		t.ID = uuid.NewString()
		err = repo.Create(ctx, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	s.logger.Info(ctx, "transfer created", "transfer_id", t.ID, "size", t.Size)
	return t, nil
}

// FindByID returns the transfer record with the given id. An id that cannot
// be a record id at all reports ErrorNotFound, same as an unknown one.
func (s *TransferService) FindByID(ctx context.Context, id string) (*models.Transfer, error) {
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}

	repo := s.repomanager.Transfers(s.db)
	t, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	return t, nil
}
