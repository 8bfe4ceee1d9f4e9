package transfers

import (
	"context"

	"github.com/namaniisc/CloudDrop/internal/server/models"
)

// Repository persists Transfer records.
type Repository interface {
	// Create inserts a new record with sender/receiver absent. A duplicate
	// id yields common.ErrorUniqueViolation.
	Create(ctx context.Context, t *models.Transfer) error
	// GetByID returns the record with the given id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.Transfer, error)
	// SetParties attaches sender/receiver to an unshared record. The update
	// is conditional on sender still being absent: if another caller shared
	// the record first, common.ErrorAlreadyShared is returned and nothing
	// changes.
	SetParties(ctx context.Context, id, sender, receiver string) error
}
