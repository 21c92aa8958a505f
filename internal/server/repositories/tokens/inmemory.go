package tokens

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/common"
	"github.com/dmitrijs2005/bluelink/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository is a mutex-guarded map implementation used by service
// tests. Consume performs the whole match-mark-delete unit under one lock,
// giving the same exactly-once guarantee as the SQL implementation.
type InMemoryRepository struct {
	mu     sync.Mutex
	byVal  map[string]*models.Token
	nextID func() string
}

// NewInMemoryRepository returns an empty in-memory token store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byVal:  make(map[string]*models.Token),
		nextID: uuid.NewString,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, token *models.Token) (*models.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byVal[token.Value]; exists {
		return nil, common.ErrorInternal
	}

	stored := *token
	stored.ID = r.nextID()
	r.byVal[stored.Value] = &stored

	created := stored
	return &created, nil
}

func (r *InMemoryRepository) Consume(ctx context.Context, value, originAddress, clientAgent string, now time.Time) (*models.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.byVal[value]
	if !ok || token.LastUsedAt != nil || token.Expired(now) {
		return nil, common.ErrorNotFound
	}
	if token.OriginAddress != "" && token.OriginAddress != originAddress {
		return nil, common.ErrorNotFound
	}
	if token.ClientAgent != "" && token.ClientAgent != clientAgent {
		return nil, common.ErrorNotFound
	}

	used := now
	token.LastUsedAt = &used
	delete(r.byVal, value)

	consumed := *token
	return &consumed, nil
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*models.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.Token, 0, len(r.byVal))
	for _, token := range r.byVal {
		copied := *token
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byVal[value]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byVal, value)
	return nil
}
