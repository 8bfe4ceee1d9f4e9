package transfers

import (
	"context"
	"sync"

	"github.com/namaniisc/CloudDrop/internal/common"
	"github.com/namaniisc/CloudDrop/internal/server/models"
)

// MemoryRepository is an in-memory Repository used in tests and database-less
// local runs. A single mutex held across the load-check-mutate sequence gives
// the same serialization guarantee as the conditional update of the Postgres
// implementation.
type MemoryRepository struct {
	mu        sync.Mutex
	transfers map[string]*models.Transfer
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{transfers: make(map[string]*models.Transfer)}
}

func (r *MemoryRepository) Create(ctx context.Context, t *models.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.transfers[t.ID]; ok {
		return common.ErrorUniqueViolation
	}
	stored := *t
	r.transfers[t.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.transfers[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *MemoryRepository) SetParties(ctx context.Context, id, sender, receiver string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.transfers[id]
	if !ok {
		return common.ErrorNotFound
	}
	if t.Sender != "" {
		return common.ErrorAlreadyShared
	}
	t.Sender = sender
	t.Receiver = receiver
	return nil
}
