// Package transfers provides persistence for Transfer records, including the
// conditional update that keeps the share transition one-shot under
// concurrent requests.
package transfers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/namaniisc/CloudDrop/internal/common"
	"github.com/namaniisc/CloudDrop/internal/dbx"
	"github.com/namaniisc/CloudDrop/internal/server/models"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// PostgresRepository implements transfer storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new transfer record. A primary-key collision is reported
// as ErrorUniqueViolation so the caller can regenerate the id.
func (r *PostgresRepository) Create(ctx context.Context, t *models.Transfer) error {
	query := `
		INSERT INTO transfers (id, filename, storage_path, size, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.Filename, t.StoragePath, t.Size, t.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return common.ErrorUniqueViolation
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the transfer with the given id. Absent sender/receiver
// columns are mapped to empty strings.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Transfer, error) {
	query := `
		SELECT id, filename, storage_path, size, COALESCE(sender, ''), COALESCE(receiver, ''), created_at
		FROM transfers
		WHERE id = $1
	`
	t := &models.Transfer{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Filename, &t.StoragePath, &t.Size, &t.Sender, &t.Receiver, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// SetParties performs the share transition. The WHERE clause makes the
// check-and-set atomic: out of any number of concurrent callers only one can
// observe sender IS NULL. Zero rows affected means the record was already
// shared (records are never deleted, so existence was established by the
// preceding load).
func (r *PostgresRepository) SetParties(ctx context.Context, id, sender, receiver string) error {
	query := `
		UPDATE transfers SET sender = $2, receiver = $3
		WHERE id = $1 AND sender IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, sender, receiver)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorAlreadyShared
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
