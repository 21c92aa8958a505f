// Package users declares the repository contract for the account directory
// the identity resolver reads from and provisions into.
package users

import (
	"context"

	"github.com/dmitrijs2005/bluelink/internal/server/models"
)

// Repository defines operations for looking up and creating directory
// accounts.
type Repository interface {
	// Create stores a new account and returns it with its store-assigned ID.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin returns the account with the given username.
	// Implementations return common.ErrorNotFound when the account is absent.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}
