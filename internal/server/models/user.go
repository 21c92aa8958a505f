package models

import "time"

// User is a directory account a redeemed token can authenticate as.
// Auto-provisioned users carry a generated bcrypt password hash that the
// magic-link flow itself never checks; login here is token-based.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash []byte
	Role         string
	CreatedAt    time.Time
}
