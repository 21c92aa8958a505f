package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bluelink/internal/logging"
	"github.com/dmitrijs2005/bluelink/internal/server/models"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/tokens"
)

// AdminService exposes the operator surface: inspecting live tokens,
// revoking one ahead of expiry, and clearing the attempt ledger.
type AdminService struct {
	tokens   tokens.Repository
	attempts attempts.Repository
	logger   logging.Logger
}

// NewAdminService constructs an AdminService over the given stores.
func NewAdminService(tokensRepo tokens.Repository, attemptsRepo attempts.Repository,
	logger logging.Logger) *AdminService {
	return &AdminService{tokens: tokensRepo, attempts: attemptsRepo, logger: logger}
}

// ListTokens returns all live tokens, newest first.
func (s *AdminService) ListTokens(ctx context.Context) ([]*models.Token, error) {
	list, err := s.tokens.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing tokens: %v", err)
	}
	return list, nil
}

// RevokeToken removes a token by value before it is redeemed or expires.
// Revoking an unknown value returns common.ErrorNotFound.
func (s *AdminService) RevokeToken(ctx context.Context, value string) error {
	if err := s.tokens.Delete(ctx, value); err != nil {
		return err
	}
	s.logger.Info(ctx, "token revoked")
	return nil
}

// ClearAttempts empties the attempt ledger, lifting any active lockouts.
func (s *AdminService) ClearAttempts(ctx context.Context) error {
	if err := s.attempts.Purge(ctx); err != nil {
		return fmt.Errorf("error clearing attempts: %v", err)
	}
	s.logger.Info(ctx, "attempt ledger cleared")
	return nil
}
