// Package tokens provides a PostgreSQL-backed repository for issued login
// tokens.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/common"
	"github.com/dmitrijs2005/bluelink/internal/dbx"
	"github.com/dmitrijs2005/bluelink/internal/server/models"
)

// PostgresRepository implements token operations over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new token row. Empty binding metadata is stored as NULL
// so the token stays portable across origins/agents.
func (r *PostgresRepository) Create(ctx context.Context, token *models.Token) (*models.Token, error) {
	query := `
		INSERT INTO tokens (value, account, created_at, expires_at, origin_address, client_agent)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		token.Value, token.Account, token.CreatedAt, token.ExpiresAt,
		nullable(token.OriginAddress), nullable(token.ClientAgent),
	).Scan(&token.ID)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return token, nil
}

// Consume marks the matching row used and deletes it. The conditional
// update guarded by "last_used_at IS NULL" is what makes redemption
// exactly-once: of any number of concurrent calls, only one can move the
// row from unused to used. Run it inside dbx.WithTx to keep the mark and
// the delete in one unit.
func (r *PostgresRepository) Consume(ctx context.Context, value, originAddress, clientAgent string, now time.Time) (*models.Token, error) {
	mark := `
		UPDATE tokens
		SET last_used_at = $2
		WHERE value = $1
		  AND expires_at > $2
		  AND last_used_at IS NULL
		  AND (origin_address = $3 OR origin_address IS NULL)
		  AND (client_agent = $4 OR client_agent IS NULL)
		RETURNING id, value, account, created_at, expires_at, origin_address, client_agent, last_used_at
	`

	token := &models.Token{}
	var origin, agent sql.NullString
	var lastUsed sql.NullTime

	err := r.db.QueryRowContext(ctx, mark, value, now, originAddress, clientAgent).
		Scan(&token.ID, &token.Value, &token.Account, &token.CreatedAt, &token.ExpiresAt, &origin, &agent, &lastUsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	token.OriginAddress = origin.String
	token.ClientAgent = agent.String
	if lastUsed.Valid {
		token.LastUsedAt = &lastUsed.Time
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE id = $1`, token.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

// List returns all tokens ordered by creation time, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Token, error) {
	query := `
		SELECT id, value, account, created_at, expires_at, origin_address, client_agent, last_used_at
		FROM tokens
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Token
	for rows.Next() {
		token := &models.Token{}
		var origin, agent sql.NullString
		var lastUsed sql.NullTime

		if err := rows.Scan(&token.ID, &token.Value, &token.Account, &token.CreatedAt,
			&token.ExpiresAt, &origin, &agent, &lastUsed); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		token.OriginAddress = origin.String
		token.ClientAgent = agent.String
		if lastUsed.Valid {
			token.LastUsedAt = &lastUsed.Time
		}
		result = append(result, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Delete removes a token by its value.
func (r *PostgresRepository) Delete(ctx context.Context, value string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE value = $1`, value)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
