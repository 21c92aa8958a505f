package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/common"
	"github.com/dmitrijs2005/bluelink/internal/logging"
	"github.com/dmitrijs2005/bluelink/internal/server/config"
	"github.com/dmitrijs2005/bluelink/internal/server/models"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/attempts"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/bluelink/internal/server/repositories/users"
)

// --- helpers ---

func nopLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func baseConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIKey = "primary-key"
	cfg.TestAPIKey = "test-key"
	cfg.LoginAccount = "main_account"
	cfg.TestLoginAccount = "test_account"
	cfg.EnforceHTTPS = true
	return cfg
}

type issuerFixture struct {
	svc      *IssuerService
	tokens   *tokens.InMemoryRepository
	attempts *attempts.InMemoryRepository
	users    *users.InMemoryRepository
	cfg      *config.Config
}

func newIssuerFixture(t *testing.T, cfg *config.Config) *issuerFixture {
	t.Helper()
	if cfg == nil {
		cfg = baseConfig()
	}
	log := nopLogger()
	tokensRepo := tokens.NewInMemoryRepository()
	attemptsRepo := attempts.NewInMemoryRepository()
	usersRepo := users.NewInMemoryRepository()
	identity := NewIdentityService(usersRepo, models.NewRoleRegistry(), log)
	return &issuerFixture{
		svc:      NewIssuerService(tokensRepo, attemptsRepo, identity, cfg, log),
		tokens:   tokensRepo,
		attempts: attemptsRepo,
		users:    usersRepo,
		cfg:      cfg,
	}
}

func (f *issuerFixture) mustIssue(t *testing.T) *IssueResult {
	t.Helper()
	res, err := f.svc.Issue(context.Background(), secureRequest("primary-key"))
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return res
}

func secureRequest(credential string) *IssueRequest {
	return &IssueRequest{
		Credential:      credential,
		OriginAddress:   "203.0.113.10",
		ClientAgent:     "curl/8.0",
		SecureTransport: true,
	}
}

// --- transport and origin gates ---

func TestIssue_InsecureTransportRejected(t *testing.T) {
	f := newIssuerFixture(t, nil)

	req := secureRequest("primary-key")
	req.SecureTransport = false

	_, err := f.svc.Issue(context.Background(), req)
	if !errors.Is(err, common.ErrorInsecureTransport) {
		t.Fatalf("expected ErrorInsecureTransport, got %v", err)
	}
}

func TestIssue_InsecureTransportAllowedWhenNotEnforced(t *testing.T) {
	cfg := baseConfig()
	cfg.EnforceHTTPS = false
	f := newIssuerFixture(t, cfg)

	req := secureRequest("primary-key")
	req.SecureTransport = false

	if _, err := f.svc.Issue(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIssue_OriginNotAllowed(t *testing.T) {
	cfg := baseConfig()
	cfg.AllowedOrigins = []string{"198.51.100.1"}
	f := newIssuerFixture(t, cfg)

	_, err := f.svc.Issue(context.Background(), secureRequest("primary-key"))
	if !errors.Is(err, common.ErrorOriginNotAllowed) {
		t.Fatalf("expected ErrorOriginNotAllowed, got %v", err)
	}
}

func TestIssue_OriginOnAllowList(t *testing.T) {
	cfg := baseConfig()
	cfg.AllowedOrigins = []string{"198.51.100.1", "203.0.113.10"}
	f := newIssuerFixture(t, cfg)

	if _, err := f.svc.Issue(context.Background(), secureRequest("primary-key")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- credential checks ---

func TestIssue_MissingCredential(t *testing.T) {
	f := newIssuerFixture(t, nil)

	_, err := f.svc.Issue(context.Background(), secureRequest(""))
	if !errors.Is(err, common.ErrorMissingCredentials) {
		t.Fatalf("expected ErrorMissingCredentials, got %v", err)
	}

	n, _ := f.attempts.CountByOrigin(context.Background(), "203.0.113.10")
	if n != 0 {
		t.Fatalf("missing credential must not count as an attempt, ledger has %d", n)
	}
}

func TestIssue_WrongCredentialRecordsAttempt(t *testing.T) {
	f := newIssuerFixture(t, nil)

	_, err := f.svc.Issue(context.Background(), secureRequest("wrong"))
	if !errors.Is(err, common.ErrorInvalidCredential) {
		t.Fatalf("expected ErrorInvalidCredential, got %v", err)
	}

	n, _ := f.attempts.CountByOrigin(context.Background(), "203.0.113.10")
	if n != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", n)
	}
}

func TestIssue_BoundUsername(t *testing.T) {
	cfg := baseConfig()
	cfg.BoundUsername = "alice"
	f := newIssuerFixture(t, cfg)

	req := secureRequest("primary-key")
	req.Username = "bob"
	if _, err := f.svc.Issue(context.Background(), req); !errors.Is(err, common.ErrorInvalidCredential) {
		t.Fatalf("expected ErrorInvalidCredential for username mismatch, got %v", err)
	}

	req.Username = "alice"
	if _, err := f.svc.Issue(context.Background(), req); err != nil {
		t.Fatalf("unexpected error with matching username: %v", err)
	}
}

// --- rate limiting ---

func TestIssue_LockoutAfterMaxAttempts(t *testing.T) {
	f := newIssuerFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < f.cfg.MaxAttempts; i++ {
		if _, err := f.svc.Issue(ctx, secureRequest("wrong")); !errors.Is(err, common.ErrorInvalidCredential) {
			t.Fatalf("attempt %d: expected ErrorInvalidCredential, got %v", i, err)
		}
	}

	// Even a valid credential is refused once the origin is locked out; the
	// limit check runs before the comparison.
	_, err := f.svc.Issue(ctx, secureRequest("primary-key"))
	if !errors.Is(err, common.ErrorTooManyAttempts) {
		t.Fatalf("expected ErrorTooManyAttempts, got %v", err)
	}
}

func TestIssue_LockoutIsPerOrigin(t *testing.T) {
	f := newIssuerFixture(t, nil)
	ctx := context.Background()

	for i := 0; i < f.cfg.MaxAttempts; i++ {
		_, _ = f.svc.Issue(ctx, secureRequest("wrong"))
	}

	other := secureRequest("primary-key")
	other.OriginAddress = "203.0.113.99"
	if _, err := f.svc.Issue(ctx, other); err != nil {
		t.Fatalf("lockout leaked to another origin: %v", err)
	}
}

func TestIssue_StaleAttemptsExpire(t *testing.T) {
	f := newIssuerFixture(t, nil)
	ctx := context.Background()

	stale := time.Now().Add(-f.cfg.LockoutWindow - time.Minute)
	for i := 0; i < f.cfg.MaxAttempts; i++ {
		if err := f.attempts.Add(ctx, "203.0.113.10", stale); err != nil {
			t.Fatalf("seeding ledger: %v", err)
		}
	}

	if _, err := f.svc.Issue(ctx, secureRequest("primary-key")); err != nil {
		t.Fatalf("stale attempts should not lock out, got %v", err)
	}
}

// --- successful issuance ---

func TestIssue_Success(t *testing.T) {
	f := newIssuerFixture(t, nil)
	issuedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return issuedAt }

	res, err := f.svc.Issue(context.Background(), secureRequest("primary-key"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(res.Token) {
		t.Fatalf("token %q is not 64 lowercase hex chars", res.Token)
	}
	if !res.ExpiresAt.Equal(issuedAt.Add(f.cfg.TokenTTL)) {
		t.Fatalf("expiry %s, want %s", res.ExpiresAt, issuedAt.Add(f.cfg.TokenTTL))
	}
	if res.Account != "main_account" {
		t.Fatalf("account %q, want main_account", res.Account)
	}
	want := f.cfg.PublicBaseURL + "/login?token=" + url.QueryEscape(res.Token)
	if res.LoginURL != want {
		t.Fatalf("login url %q, want %q", res.LoginURL, want)
	}

	stored, err := f.tokens.List(context.Background())
	if err != nil || len(stored) != 1 {
		t.Fatalf("expected 1 stored token, got %d (err %v)", len(stored), err)
	}
	if stored[0].OriginAddress != "203.0.113.10" || stored[0].ClientAgent != "curl/8.0" {
		t.Fatalf("binding metadata not recorded: %+v", stored[0])
	}
	if stored[0].Account != "main_account" {
		t.Fatalf("account not recorded on token: %+v", stored[0])
	}
}

func TestIssue_TokensAreUnique(t *testing.T) {
	f := newIssuerFixture(t, nil)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		res, err := f.svc.Issue(context.Background(), secureRequest("primary-key"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[res.Token] {
			t.Fatalf("duplicate token value issued")
		}
		seen[res.Token] = true
	}
}

func TestIssue_TestKeyResolvesTestAccount(t *testing.T) {
	f := newIssuerFixture(t, nil)

	res, err := f.svc.Issue(context.Background(), secureRequest("test-key"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Account != "test_account" {
		t.Fatalf("account %q, want test_account", res.Account)
	}
}

func TestIssue_TestKeyFallsBackToLoginAccount(t *testing.T) {
	cfg := baseConfig()
	cfg.TestLoginAccount = ""
	f := newIssuerFixture(t, cfg)

	res, err := f.svc.Issue(context.Background(), secureRequest("test-key"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Account != "main_account" {
		t.Fatalf("account %q, want main_account", res.Account)
	}
}

func TestIssue_ProvisionsAccountAtIssuance(t *testing.T) {
	f := newIssuerFixture(t, nil)

	if _, err := f.svc.Issue(context.Background(), secureRequest("primary-key")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user, err := f.users.GetUserByLogin(context.Background(), "main_account")
	if err != nil {
		t.Fatalf("account should exist after issuance: %v", err)
	}
	if user.Role != models.RestrictedRoleName {
		t.Fatalf("role %q, want %q", user.Role, models.RestrictedRoleName)
	}
	if !strings.HasSuffix(user.Email, "@bluelink.local") {
		t.Fatalf("synthesized email %q lacks the local domain", user.Email)
	}
}
