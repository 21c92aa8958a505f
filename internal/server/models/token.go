// Package models holds the persistent data structures of the bluelink
// server: login tokens, failed-attempt records, directory users, and roles.
package models

import "time"

// Token is one issued, redeemable login credential.
//
// Value is the high-entropy secret embedded in the redemption link; it is
// unique across all rows ever created. OriginAddress and ClientAgent are
// optional binding metadata captured at issuance; an empty value is stored
// as NULL and matches any presentation at redemption. Account is the
// directory account resolved for the issuing credential. LastUsedAt is set
// exactly once, on successful redemption, just before the row is deleted.
type Token struct {
	ID            string
	Value         string
	Account       string
	CreatedAt     time.Time
	ExpiresAt     time.Time
	OriginAddress string
	ClientAgent   string
	LastUsedAt    *time.Time
}

// Expired reports whether the token is past its expiry at the given time.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
