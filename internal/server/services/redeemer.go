package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/common"
	"github.com/dmitrijs2005/bluelink/internal/dbx"
	"github.com/dmitrijs2005/bluelink/internal/logging"
	"github.com/dmitrijs2005/bluelink/internal/server/auth"
	"github.com/dmitrijs2005/bluelink/internal/server/config"
	"github.com/dmitrijs2005/bluelink/internal/server/models"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/repomanager"
)

// RedeemRequest is one attempt to trade a login token for a session.
type RedeemRequest struct {
	TokenValue    string
	OriginAddress string
	ClientAgent   string
}

// RedeemResult is a successful redemption: the authenticated user, a signed
// session token, and where the browser should be sent next.
type RedeemResult struct {
	User           *models.User
	SessionToken   string
	RedirectTarget string
}

// RedeemerService consumes login tokens exactly once and establishes
// sessions for the account they resolve to.
type RedeemerService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	identity    *IdentityService
	cfg         *config.Config
	logger      logging.Logger
	now         func() time.Time
}

// NewRedeemerService constructs a RedeemerService. db may be nil when the
// repository manager vends stores that need no transaction handle.
func NewRedeemerService(db *sql.DB, m repomanager.RepositoryManager, identity *IdentityService,
	cfg *config.Config, logger logging.Logger) *RedeemerService {
	return &RedeemerService{
		db:          db,
		repomanager: m,
		identity:    identity,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Redeem consumes the presented token and, on success, mints a session for
// the account the token resolves to. A token that is unknown, expired,
// already used, or bound to a different origin or agent yields
// common.ErrorInvalidOrExpiredToken; the caller learns nothing more.
func (s *RedeemerService) Redeem(ctx context.Context, req *RedeemRequest) (*RedeemResult, error) {
	if req.TokenValue == "" {
		return nil, common.ErrorInvalidOrExpiredToken
	}

	token, err := s.consume(ctx, req)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidOrExpiredToken
		}
		return nil, err
	}

	account := s.accountFor(token)
	if account == "" {
		return nil, common.ErrorNoIdentityAvailable
	}

	user, err := s.identity.Resolve(ctx, account)
	if err != nil {
		return nil, err
	}

	session, err := auth.GenerateToken(user.ID, []byte(s.cfg.SessionSecret), s.cfg.SessionValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "token redeemed",
		"account", user.UserName, "origin", req.OriginAddress)

	return &RedeemResult{
		User:           user,
		SessionToken:   session,
		RedirectTarget: s.cfg.RedirectTarget,
	}, nil
}

// consume runs the repository consumption, transactionally when a database
// handle is present so the mark-used and delete steps land together.
func (s *RedeemerService) consume(ctx context.Context, req *RedeemRequest) (*models.Token, error) {
	if s.db == nil {
		return s.repomanager.Tokens(nil).Consume(ctx, req.TokenValue, req.OriginAddress, req.ClientAgent, s.now())
	}

	var token *models.Token
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tokens(tx)
		var consumeErr error
		token, consumeErr = repo.Consume(ctx, req.TokenValue, req.OriginAddress, req.ClientAgent, s.now())
		return consumeErr
	}); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error consuming token: %w", err)
	}
	return token, nil
}

// accountFor applies the configured identity policy to a consumed token.
// Under the owner policy a token issued before the account column was
// recorded falls back to the fixed account.
func (s *RedeemerService) accountFor(token *models.Token) string {
	if s.cfg.IdentityPolicy == config.IdentityPolicyOwner && token.Account != "" {
		return token.Account
	}
	return s.cfg.LoginAccount
}
