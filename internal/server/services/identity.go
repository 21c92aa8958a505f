package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/bluelink/internal/common"
	"github.com/dmitrijs2005/bluelink/internal/logging"
	"github.com/dmitrijs2005/bluelink/internal/server/models"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// provisionedEmailDomain is appended to account names that are not already
// valid mail addresses when a directory entry is auto-created.
const provisionedEmailDomain = "bluelink.local"

// IdentityService maps account names to directory users, creating a
// restricted account on first use.
type IdentityService struct {
	users  users.Repository
	roles  *models.RoleRegistry
	logger logging.Logger
}

// NewIdentityService constructs an IdentityService over the given directory.
func NewIdentityService(repo users.Repository, roles *models.RoleRegistry, logger logging.Logger) *IdentityService {
	return &IdentityService{users: repo, roles: roles, logger: logger}
}

// Resolve returns the directory user for the given account name. If no such
// user exists yet, one is provisioned with the restricted role, a synthesized
// email, and a throwaway random password. Provisioning failures wrap
// common.ErrorUserCreationFailed.
func (s *IdentityService) Resolve(ctx context.Context, name string) (*models.User, error) {
	if name == "" {
		return nil, common.ErrorNoIdentityAvailable
	}

	user, err := s.users.GetUserByLogin(ctx, name)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up account %q: %w", name, err)
	}

	return s.provision(ctx, name)
}

func (s *IdentityService) provision(ctx context.Context, name string) (*models.User, error) {
	role := s.roles.Ensure(models.RestrictedRole())

	// The account never logs in with this password; it only has to be
	// unguessable.
	hash, err := bcrypt.GenerateFromPassword(common.GenerateRandByteArray(32), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUserCreationFailed, err)
	}

	user, err := s.users.Create(ctx, &models.User{
		UserName:     name,
		Email:        synthesizeEmail(name),
		PasswordHash: hash,
		Role:         role.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUserCreationFailed, err)
	}

	s.logger.Info(ctx, "provisioned restricted account", "username", user.UserName, "role", user.Role)
	return user, nil
}

// synthesizeEmail returns name unchanged when it already parses as a mail
// address, otherwise name@bluelink.local.
func synthesizeEmail(name string) string {
	if strings.Contains(name, "@") {
		if _, err := mail.ParseAddress(name); err == nil {
			return name
		}
	}
	return name + "@" + provisionedEmailDomain
}
