// Package attempts provides a PostgreSQL-backed repository for the
// failed-login attempt ledger.
package attempts

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/dbx"
)

// PostgresRepository implements the attempt ledger over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Add appends one attempt row.
func (r *PostgresRepository) Add(ctx context.Context, originAddress string, attemptedAt time.Time) error {
	query := `
		INSERT INTO login_attempts (origin_address, attempted_at)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, originAddress, attemptedAt); err != nil {
		return fmt.Errorf("error performing sql request: %v", err)
	}
	return nil
}

// CountByOrigin counts the remaining attempts for one origin.
func (r *PostgresRepository) CountByOrigin(ctx context.Context, originAddress string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM login_attempts
		WHERE origin_address = $1
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, originAddress).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

// DeleteOlderThan drops every row, regardless of origin, recorded before
// the cutoff.
func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	query := `
		DELETE FROM login_attempts
		WHERE attempted_at < $1
	`
	if _, err := r.db.ExecContext(ctx, query, cutoff); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Purge drops every row.
func (r *PostgresRepository) Purge(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM login_attempts`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
