package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bluelink/internal/dbx"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Tokens(db dbx.DBTX) tokens.Repository
	Attempts(db dbx.DBTX) attempts.Repository
	Users(db dbx.DBTX) users.Repository
}
