// Package http serves the backend's REST API: the /auth/v1 account
// endpoints, the bearer-protected /rest/v1 data endpoints, health and
// Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eduxperience/eduxperience/internal/logging"
	"github.com/eduxperience/eduxperience/internal/server/auth"
	"github.com/eduxperience/eduxperience/internal/server/models"
	"github.com/eduxperience/eduxperience/internal/server/services"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// IdentityService is what the handlers need from services.IdentityService.
type IdentityService interface {
	SignUp(ctx context.Context, email, password, role string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*services.Token, error)
	Resend(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) (*models.User, error)
	Authenticate(token string) (*auth.Claims, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetRole(ctx context.Context, userID string) (string, error)
	CreateProfile(ctx context.Context, userID, kind string, payload json.RawMessage) (*models.Profile, error)
}

type Server struct {
	address  string
	identity IdentityService
	logger   logging.Logger
	metrics  *Metrics
	gatherer prometheus.Gatherer
	validate *validator.Validate
	router   chi.Router
}

// NewServer wires the routes. Metrics are registered with reg and served
// from gatherer.
func NewServer(address string, identity IdentityService, l logging.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		address:  address,
		identity: identity,
		logger:   l.With("module", "http_server"),
		metrics:  NewMetrics(reg),
		gatherer: gatherer,
		validate: newValidator(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/signup", s.handleSignUp)
		r.Post("/token", s.handleToken)
		r.Post("/resend", s.handleResend)
		r.Get("/verify", s.handleVerify)
		r.With(s.authMiddleware).Get("/user", s.handleGetUser)
	})

	r.Route("/rest/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/users/{id}/role", s.handleGetRole)
		r.Post("/profiles/{kind}", s.handleCreateProfile)
	})

	return r
}

// Router returns the root handler, useful for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
