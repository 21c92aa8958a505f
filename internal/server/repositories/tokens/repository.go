// Package tokens declares the server-side repository contract for issued
// login tokens.
package tokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/server/models"
)

// Repository defines operations for creating, consuming, and revoking
// login tokens.
type Repository interface {
	// Create persists a newly minted token and returns it with its
	// store-assigned ID.
	Create(ctx context.Context, token *models.Token) (*models.Token, error)

	// Consume redeems the token with the given value: it marks the row used
	// and removes it, returning the consumed row. A row matches only while
	// unexpired and unused, and only when its binding metadata equals the
	// presented origin/agent or was never recorded. Implementations must
	// guarantee that concurrent Consume calls for one value succeed at most
	// once; callers get common.ErrorNotFound for every other outcome.
	Consume(ctx context.Context, value, originAddress, clientAgent string, now time.Time) (*models.Token, error)

	// List returns all live tokens, newest first.
	List(ctx context.Context) ([]*models.Token, error)

	// Delete removes a token by its value (manual revocation). Deleting a
	// non-existent token returns common.ErrorNotFound.
	Delete(ctx context.Context, value string) error
}
