package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eduxperience/eduxperience/internal/common"
	"github.com/eduxperience/eduxperience/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type userDTO struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Role: u.Role, EmailConfirmedAt: u.EmailConfirmedAt}
}

type signUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=student tutor institution"`
}

type tokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int64   `json:"expires_in"`
	User        userDTO `json:"user"`
}

type resendRequest struct {
	Type  string `json:"type" validate:"required,eq=signup"`
	Email string `json:"email" validate:"required,email"`
}

type profileRequest struct {
	UserID  string          `json:"user_id" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.identity.SignUp(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !s.decode(w, r, &req) {
		s.metrics.Logins.WithLabelValues(outcomeInvalidRequest).Inc()
		return
	}

	tok, err := s.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.metrics.Logins.WithLabelValues(loginOutcome(err)).Inc()
		s.respondError(w, r, err)
		return
	}

	s.metrics.Logins.WithLabelValues(outcomeSuccess).Inc()
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   int64(tok.ExpiresIn / time.Second),
		User:        toUserDTO(tok.User),
	})
}

func loginOutcome(err error) string {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return outcomeInvalidCredentials
	case errors.Is(err, common.ErrEmailNotConfirmed):
		return outcomeEmailNotConfirmed
	}
	return outcomeError
}

func (s *Server) handleResend(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.identity.Resend(r.Context(), req.Email); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "token is required")
		return
	}

	u, err := s.identity.Verify(r.Context(), token)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	u, err := s.identity.GetUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "user no longer exists")
			return
		}
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if id != claims.UserID {
		writeError(w, http.StatusForbidden, codeForbidden, "cannot read another user's role")
		return
	}

	role, err := s.identity.GetRole(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"role": role})
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req profileRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.UserID != claims.UserID {
		writeError(w, http.StatusForbidden, codeForbidden, "cannot create a profile for another user")
		return
	}

	p, err := s.identity.CreateProfile(r.Context(), req.UserID, chi.URLParam(r, "kind"), req.Payload)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id":    p.UserID,
		"kind":       p.Kind,
		"payload":    p.Payload,
		"created_at": p.CreatedAt,
	})
}
