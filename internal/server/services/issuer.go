// Package services contains server-side business logic. This file implements
// IssuerService, which exchanges a shared credential for a short-lived,
// single-use login token and builds the redemption link.
package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/common"
	"github.com/dmitrijs2005/bluelink/internal/logging"
	"github.com/dmitrijs2005/bluelink/internal/server/config"
	"github.com/dmitrijs2005/bluelink/internal/server/models"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/tokens"
)

// IssueRequest carries everything the issuer needs to decide on one
// exchange: the presented credentials and the caller's transport facts.
type IssueRequest struct {
	Credential      string
	Username        string
	OriginAddress   string
	ClientAgent     string
	SecureTransport bool
}

// IssueResult is a successful exchange: the minted token, its expiry, the
// ready-to-open redemption link, and the account it will authenticate as.
type IssueResult struct {
	Token     string
	ExpiresAt time.Time
	LoginURL  string
	Account   string
}

// IssuerService validates issuance requests and mints login tokens.
type IssuerService struct {
	tokens   tokens.Repository
	attempts attempts.Repository
	identity *IdentityService
	cfg      *config.Config
	logger   logging.Logger
	now      func() time.Time
}

// NewIssuerService constructs an IssuerService using repositories and server
// config.
func NewIssuerService(tokensRepo tokens.Repository, attemptsRepo attempts.Repository,
	identity *IdentityService, cfg *config.Config, logger logging.Logger) *IssuerService {
	return &IssuerService{
		tokens:   tokensRepo,
		attempts: attemptsRepo,
		identity: identity,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Issue runs the full exchange for one request. Checks run in a fixed order:
// transport security, origin allow-list, rate limit, credential presence,
// credential match, identity resolution. Only a credential mismatch appends
// a failed attempt to the ledger; rejections earlier in the order do not
// count toward the rate limit.
func (s *IssuerService) Issue(ctx context.Context, req *IssueRequest) (*IssueResult, error) {
	now := s.now()

	if s.cfg.EnforceHTTPS && !req.SecureTransport {
		return nil, common.ErrorInsecureTransport
	}

	if !s.originAllowed(req.OriginAddress) {
		return nil, common.ErrorOriginNotAllowed
	}

	allowed, err := s.withinRateLimit(ctx, req.OriginAddress, now)
	if err != nil {
		return nil, err
	}
	if !allowed {
		s.logger.Warn(ctx, "issuance locked out", "origin", req.OriginAddress)
		return nil, common.ErrorTooManyAttempts
	}

	if req.Credential == "" {
		return nil, common.ErrorMissingCredentials
	}

	account, ok := s.matchCredential(req.Credential, req.Username)
	if !ok {
		if err := s.attempts.Add(ctx, req.OriginAddress, now); err != nil {
			s.logger.Error(ctx, "error recording failed attempt", "error", err)
		}
		return nil, common.ErrorInvalidCredential
	}

	if _, err := s.identity.Resolve(ctx, account); err != nil {
		return nil, err
	}

	value, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	token := &models.Token{
		Value:         value,
		Account:       account,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cfg.TokenTTL),
		OriginAddress: req.OriginAddress,
		ClientAgent:   req.ClientAgent,
	}
	if _, err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("error creating token: %v", err)
	}

	s.logger.Info(ctx, "token issued",
		"account", account, "origin", req.OriginAddress, "expires_at", token.ExpiresAt)

	return &IssueResult{
		Token:     value,
		ExpiresAt: token.ExpiresAt,
		LoginURL:  s.cfg.PublicBaseURL + "/login?token=" + url.QueryEscape(value),
		Account:   account,
	}, nil
}

// originAllowed checks the optional origin allow-list. An empty list admits
// every origin.
func (s *IssuerService) originAllowed(origin string) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}

// withinRateLimit prunes attempts older than the lockout window, then counts
// what remains for this origin. The prune is global, so any request also
// cleans up after other origins.
func (s *IssuerService) withinRateLimit(ctx context.Context, origin string, now time.Time) (bool, error) {
	if err := s.attempts.DeleteOlderThan(ctx, now.Add(-s.cfg.LockoutWindow)); err != nil {
		return false, fmt.Errorf("error pruning attempts: %v", err)
	}
	count, err := s.attempts.CountByOrigin(ctx, origin)
	if err != nil {
		return false, fmt.Errorf("error counting attempts: %v", err)
	}
	return count < s.cfg.MaxAttempts, nil
}

// matchCredential compares the presented credential against the primary and
// secondary keys and returns the account the match resolves to. Comparison
// is constant-time. When a bound username is configured, it must be
// presented alongside either key.
func (s *IssuerService) matchCredential(credential, username string) (string, bool) {
	if s.cfg.BoundUsername != "" &&
		subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.BoundUsername)) != 1 {
		return "", false
	}

	if s.cfg.APIKey != "" &&
		subtle.ConstantTimeCompare([]byte(credential), []byte(s.cfg.APIKey)) == 1 {
		return s.cfg.LoginAccount, true
	}

	if s.cfg.TestAPIKey != "" &&
		subtle.ConstantTimeCompare([]byte(credential), []byte(s.cfg.TestAPIKey)) == 1 {
		account := s.cfg.TestLoginAccount
		if account == "" {
			account = s.cfg.LoginAccount
		}
		return account, true
	}

	return "", false
}
