package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduxperience/eduxperience/internal/client/models"
)

func newTestClient(t *testing.T, h http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewHTTPClient(srv.URL+"/", 2*time.Second)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient("localhost:8080", time.Second)
	require.Error(t, err)
	_, err = NewHTTPClient("ftp://x", time.Second)
	require.Error(t, err)
}

func TestSignIn_Success(t *testing.T) {
	confirmed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@x.io", body["email"])
		assert.Equal(t, "pw", body["password"])
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": "tok",
			"token_type":   "bearer",
			"expires_in":   3600,
			"user": map[string]any{
				"id": "u1", "email": "a@x.io", "role": "tutor", "email_confirmed_at": confirmed,
			},
		})
	})
	c := newTestClient(t, mux)

	id, err := c.SignIn(context.Background(), "a@x.io", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.ID)
	assert.Equal(t, "tok", id.AccessToken)
	assert.Equal(t, models.RoleTutor, id.Role)
	require.NotNil(t, id.EmailConfirmedAt)
	assert.True(t, id.EmailConfirmedAt.Equal(confirmed))
}

func TestSignIn_ErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		code   string
		want   error
	}{
		{"invalid credentials", http.StatusBadRequest, "invalid_credentials", ErrInvalidCredentials},
		{"email not confirmed", http.StatusBadRequest, "email_not_confirmed", ErrEmailNotConfirmed},
		{"unauthorized", http.StatusUnauthorized, "unauthorized", ErrUnauthorized},
		{"forbidden", http.StatusForbidden, "forbidden", ErrUnauthorized},
		{"not found", http.StatusNotFound, "not_found", ErrNotFound},
		{"conflict", http.StatusConflict, "conflict", ErrConflict},
		{"server error", http.StatusInternalServerError, "server_error", ErrUnavailable},
		{"bad gateway without body", http.StatusBadGateway, "", ErrUnavailable},
		{"other 4xx", http.StatusUnprocessableEntity, "invalid_request", ErrRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tc.code == "" {
					w.WriteHeader(tc.status)
					return
				}
				writeJSON(w, tc.status, map[string]string{"error": tc.code, "message": "msg:" + tc.code})
			}))

			_, err := c.SignIn(context.Background(), "a@x.io", "pw")
			require.ErrorIs(t, err, tc.want)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			if tc.code != "" {
				assert.Equal(t, "msg:"+tc.code, Message(err))
			}
		})
	}
}

func TestTransportFailure_IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewHTTPClient(url, time.Second)
	require.NoError(t, err)

	_, err = c.SignIn(context.Background(), "a@x.io", "pw")
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestTimeout_IsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() { close(release); srv.Close() })

	c, err := NewHTTPClient(srv.URL, 50*time.Millisecond)
	require.NoError(t, err)

	_, err = c.GetUser(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestMalformedSuccessBody_IsUnavailable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	_, err := c.GetUser(context.Background(), "tok")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestGetUser_SendsBearer(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "email": "a@x.io", "role": "student"})
	}))

	id, err := c.GetUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", id.AccessToken)
	assert.False(t, id.EmailConfirmed())
}

func TestGetRole(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/v1/users/{id}/role", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "u1":
			writeJSON(w, http.StatusOK, map[string]string{"role": "institution"})
		case "u2":
			writeJSON(w, http.StatusOK, map[string]string{"role": ""})
		default:
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden", "message": "not yours"})
		}
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	role, err := c.GetRole(ctx, "tok", "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstitution, role)

	_, err = c.GetRole(ctx, "tok", "u2")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetRole(ctx, "tok", "u3")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "not yours", Message(err))
}

func TestCreateProfile(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rest/v1/profiles/{kind}", func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "tutor", r.PathValue("kind"))
		var body struct {
			UserID  string          `json:"user_id"`
			Payload json.RawMessage `json:"payload"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body.UserID)
		assert.JSONEq(t, `{"bio":"hi"}`, string(body.Payload))
		if calls > 1 {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "conflict", "message": "profile exists"})
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	require.NoError(t, c.CreateProfile(ctx, "tok", models.ProfileTutor, "u1", json.RawMessage(`{"bio":"hi"}`)))
	err := c.CreateProfile(ctx, "tok", models.ProfileTutor, "u1", json.RawMessage(`{"bio":"hi"}`))
	require.ErrorIs(t, err, ErrConflict)
}

func TestSignUp_Resend_Ping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "student", body["role"])
		writeJSON(w, http.StatusCreated, map[string]any{"id": "u9", "email": body["email"], "role": body["role"]})
	})
	mux.HandleFunc("POST /auth/v1/resend", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] == "late@x.io" {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "invalid_request", "message": "For security purposes, you can only request this once every 60 seconds"})
			return
		}
		assert.Equal(t, "signup", body["type"])
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	id, err := c.SignUp(ctx, "n@x.io", "pw", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "u9", id.ID)

	require.NoError(t, c.Resend(ctx, ResendSignup, "n@x.io"))
	err = c.Resend(ctx, ResendSignup, "late@x.io")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, Message(err), "once every 60 seconds")

	require.NoError(t, c.Ping(ctx))
}

func TestMessage_FallsBack(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Equal(t, "backend returned status 502", (&APIError{Status: 502}).Error())
	assert.Equal(t, "conflict", (&APIError{Status: 409, Code: "conflict"}).Error())
}

func TestAPIError_ClassifiesWithoutResponse(t *testing.T) {
	assert.ErrorIs(t, &APIError{Status: 400, Code: "invalid_credentials"}, ErrInvalidCredentials)
	assert.ErrorIs(t, &APIError{Status: 403, Code: "email_not_confirmed"}, ErrEmailNotConfirmed)
	assert.ErrorIs(t, &APIError{Status: 503}, ErrUnavailable)
	assert.ErrorIs(t, &APIError{Status: 400, Code: "invalid_request"}, ErrRejected)
}
