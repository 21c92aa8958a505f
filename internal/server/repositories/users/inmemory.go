package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/common"
	"github.com/dmitrijs2005/bluelink/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository is a mutex-guarded map implementation used by service
// tests.
type InMemoryRepository struct {
	mu     sync.Mutex
	byName map[string]*models.User
}

// NewInMemoryRepository returns an empty in-memory directory.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byName: make(map[string]*models.User)}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[user.UserName]; exists {
		return nil, common.ErrorInternal
	}

	stored := *user
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	r.byName[stored.UserName] = &stored

	created := stored
	return &created, nil
}

func (r *InMemoryRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}

	found := *user
	return &found, nil
}
