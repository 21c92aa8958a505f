// Package attempts declares the repository contract for the failed-login
// attempt ledger backing the issuer's rate limit.
package attempts

import (
	"context"
	"time"
)

// Repository defines operations over the attempt ledger. The issuer prunes
// globally and then counts per origin on every check, so staleness is
// bounded by the time between checks.
type Repository interface {
	// Add appends one failed attempt for the origin at the given time.
	Add(ctx context.Context, originAddress string, attemptedAt time.Time) error

	// CountByOrigin returns the number of recorded attempts for the origin.
	CountByOrigin(ctx context.Context, originAddress string) (int, error)

	// DeleteOlderThan removes all attempts, for any origin, recorded before
	// the cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) error

	// Purge removes every attempt record (administrative reset).
	Purge(ctx context.Context) error
}
