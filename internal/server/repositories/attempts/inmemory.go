package attempts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository is a mutex-guarded slice implementation used by
// service tests.
type InMemoryRepository struct {
	mu      sync.Mutex
	records []*models.LoginAttempt
}

// NewInMemoryRepository returns an empty in-memory attempt ledger.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Add(ctx context.Context, originAddress string, attemptedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, &models.LoginAttempt{
		ID:            uuid.NewString(),
		OriginAddress: originAddress,
		AttemptedAt:   attemptedAt,
	})
	return nil
}

func (r *InMemoryRepository) CountByOrigin(ctx context.Context, originAddress string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, rec := range r.records {
		if rec.OriginAddress == originAddress {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0]
	for _, rec := range r.records {
		if !rec.AttemptedAt.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	return nil
}

func (r *InMemoryRepository) Purge(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = nil
	return nil
}
