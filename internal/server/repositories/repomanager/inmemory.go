package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bluelink/internal/dbx"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/users"
)

// InMemoryRepositoryManager vends singleton in-memory repositories. The DBTX
// argument is ignored; every call returns the same backing store, which keeps
// state visible across the issue and redeem paths in tests.
type InMemoryRepositoryManager struct {
	tokens   *tokens.InMemoryRepository
	attempts *attempts.InMemoryRepository
	users    *users.InMemoryRepository
}

// NewInMemoryRepositoryManager constructs a manager with fresh empty stores.
func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		tokens:   tokens.NewInMemoryRepository(),
		attempts: attempts.NewInMemoryRepository(),
		users:    users.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Tokens(db dbx.DBTX) tokens.Repository {
	return m.tokens
}

func (m *InMemoryRepositoryManager) Attempts(db dbx.DBTX) attempts.Repository {
	return m.attempts
}

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return m.users
}

// RunMigrations is a no-op for in-memory stores.
func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}
