package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/dmitrijs2005/bluelink/internal/common"
	"github.com/dmitrijs2005/bluelink/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// issueRequestBody is the JSON payload accepted by the issuance endpoint.
type issueRequestBody struct {
	APIKey   string `json:"api_key"`
	Username string `json:"username"`
}

// issueResponseBody is returned on successful issuance.
type issueResponseBody struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	LoginURL  string `json:"login_url"`
}

// handleIssue exchanges a shared credential for a single-use login token.
func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	var body issueRequestBody
	if r.Body != nil {
		// An empty or malformed body is treated as missing credentials
		// further down, not as a transport error.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	result, err := s.issuer.Issue(r.Context(), &services.IssueRequest{
		Credential:      body.APIKey,
		Username:        body.Username,
		OriginAddress:   clientOrigin(r),
		ClientAgent:     r.UserAgent(),
		SecureTransport: secureTransport(r),
	})
	if err != nil {
		s.respondIssueError(w, r, err)
		return
	}

	respondOk(w, &issueResponseBody{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		LoginURL:  result.LoginURL,
	})
}

func (s *Server) respondIssueError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorMissingCredentials):
		respondError(w, http.StatusBadRequest, "missing_credentials", "no credential was supplied")
	case errors.Is(err, common.ErrorInvalidCredential):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "the supplied credential was not accepted")
	case errors.Is(err, common.ErrorInsecureTransport):
		respondError(w, http.StatusForbidden, "insecure_connection", "this endpoint requires https")
	case errors.Is(err, common.ErrorOriginNotAllowed):
		respondError(w, http.StatusForbidden, "origin_not_allowed", "requests from this address are not accepted")
	case errors.Is(err, common.ErrorTooManyAttempts):
		respondError(w, http.StatusTooManyRequests, "too_many_attempts", "too many failed attempts, try again later")
	case errors.Is(err, common.ErrorUserCreationFailed):
		respondError(w, http.StatusInternalServerError, "user_creation_failed", "could not prepare the login account")
	default:
		s.logger.Error(r.Context(), "issuance failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// handleRedeem trades a login token for a browser session. Success sets the
// session cookie and redirects; any failure renders an HTML page that does
// not distinguish unknown, expired, used, or misbound tokens.
func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	result, err := s.redeemer.Redeem(r.Context(), &services.RedeemRequest{
		TokenValue:    r.URL.Query().Get("token"),
		OriginAddress: clientOrigin(r),
		ClientAgent:   r.UserAgent(),
	})
	if err != nil {
		s.renderRedeemError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    result.SessionToken,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionValidity.Seconds()),
		HttpOnly: true,
		Secure:   secureTransport(r),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, result.RedirectTarget, http.StatusFound)
}

func (s *Server) renderRedeemError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorInvalidOrExpiredToken):
		renderErrorPage(w, http.StatusUnauthorized, errorPageData{
			Title:       "This sign-in link is no longer valid",
			Message:     "The link may have expired or already been used. Request a new one.",
			SiteRootURL: s.cfg.SiteRootURL,
		})
	default:
		s.logger.Error(r.Context(), "redemption failed", "error", err)
		renderErrorPage(w, http.StatusInternalServerError, errorPageData{
			Title:       "Something went wrong",
			Message:     "The sign-in could not be completed. Please try again later.",
			SiteRootURL: s.cfg.SiteRootURL,
		})
	}
}

// handleListTokens returns every live token, newest first.
func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	list, err := s.admin.ListTokens(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "listing tokens failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	type tokenView struct {
		Value         string `json:"value"`
		Account       string `json:"account"`
		CreatedAt     string `json:"created_at"`
		ExpiresAt     string `json:"expires_at"`
		OriginAddress string `json:"origin_address,omitempty"`
		ClientAgent   string `json:"client_agent,omitempty"`
	}

	views := make([]tokenView, 0, len(list))
	for _, t := range list {
		views = append(views, tokenView{
			Value:         t.Value,
			Account:       t.Account,
			CreatedAt:     t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			ExpiresAt:     t.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			OriginAddress: t.OriginAddress,
			ClientAgent:   t.ClientAgent,
		})
	}
	respondOk(w, views)
}

// handleRevokeToken deletes one token by value ahead of its expiry.
func (s *Server) handleRevokeToken(w http.ResponseWriter, r *http.Request) {
	value := chi.URLParam(r, "value")

	err := s.admin.RevokeToken(r.Context(), value)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "no such token")
			return
		}
		s.logger.Error(r.Context(), "revoking token failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	respondOk(w, map[string]string{"status": "revoked"})
}

// handleClearAttempts empties the attempt ledger, lifting active lockouts.
func (s *Server) handleClearAttempts(w http.ResponseWriter, r *http.Request) {
	if err := s.admin.ClearAttempts(r.Context()); err != nil {
		s.logger.Error(r.Context(), "clearing attempts failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	respondOk(w, map[string]string{"status": "cleared"})
}

// clientOrigin returns the caller's network address without the port.
// middleware.RealIP has already rewritten RemoteAddr from the forwarding
// headers when the service sits behind a proxy.
func clientOrigin(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// secureTransport reports whether the request arrived over TLS, either
// directly or at a terminating proxy.
func secureTransport(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
