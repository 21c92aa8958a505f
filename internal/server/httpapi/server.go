// Package httpapi exposes the service over HTTP: the machine-facing
// issuance and admin endpoints under /api/v1, and the browser-facing
// redemption endpoint at /login.
package httpapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/bluelink/internal/logging"
	"github.com/dmitrijs2005/bluelink/internal/server/config"
	"github.com/dmitrijs2005/bluelink/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wires the services to their routes and owns the http.Server
// lifecycle.
type Server struct {
	cfg      *config.Config
	issuer   *services.IssuerService
	redeemer *services.RedeemerService
	admin    *services.AdminService
	logger   logging.Logger
	server   *http.Server
}

// NewServer constructs a Server bound to the configured endpoint address.
func NewServer(cfg *config.Config, issuer *services.IssuerService, redeemer *services.RedeemerService,
	admin *services.AdminService, logger logging.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		issuer:   issuer,
		redeemer: redeemer,
		admin:    admin,
		logger:   logger.With("module", "http_server"),
	}
	s.server = &http.Server{
		Addr:         cfg.EndpointAddr,
		Handler:      s.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/api/v1/login", s.handleIssue)
	r.Get("/login", s.handleRedeem)

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Get("/tokens", s.handleListTokens)
		r.Delete("/tokens/{value}", s.handleRevokeToken)
		r.Delete("/attempts", s.handleClearAttempts)
	})

	return r
}

// requireAPIKey guards the admin surface with the primary shared key,
// presented as a bearer token. The comparison is constant-time.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || s.cfg.APIKey == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(s.cfg.APIKey)) != 1 {
			respondError(w, http.StatusUnauthorized, "unauthorized", "a valid bearer credential is required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run starts the listener and blocks until the context is canceled or the
// server fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "starting HTTP server", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		s.logger.Error(ctx, "HTTP server error", "error", err)
		return err
	}
}
