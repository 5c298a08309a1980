package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/common"
)

// HTTPClient talks to the backend's REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL. Every
// request is bounded by timeout; zero means no limit.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type userDTO struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Role             string     `json:"role"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
}

func (u userDTO) identity(token string) *models.Identity {
	return &models.Identity{
		ID:               u.ID,
		Email:            u.Email,
		Role:             models.Role(u.Role),
		EmailConfirmedAt: u.EmailConfirmedAt,
		AccessToken:      token,
	}
}

type tokenResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	ExpiresIn   int64   `json:"expires_in"`
	User        userDTO `json:"user"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrUnavailable, err)
	}
	return nil
}

func errorFromResponse(resp *http.Response) error {
	var payload errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)

	e := &APIError{Status: resp.StatusCode, Code: payload.Error, Message: payload.Message}
	e.kind = classify(resp.StatusCode, payload.Error)
	return e
}

func classify(status int, code string) error {
	switch code {
	case "invalid_credentials":
		return ErrInvalidCredentials
	case "email_not_confirmed":
		return ErrEmailNotConfirmed
	}

	switch {
	case status >= 500:
		return ErrUnavailable
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	default:
		return ErrRejected
	}
}

func (c *HTTPClient) SignUp(ctx context.Context, email, password string, role models.Role) (*models.Identity, error) {
	req := map[string]string{"email": email, "password": password, "role": string(role)}
	var u userDTO
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", req, &u); err != nil {
		return nil, err
	}
	return u.identity(""), nil
}

func (c *HTTPClient) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	req := map[string]string{"email": email, "password": password}
	var res tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token", "", req, &res); err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", ErrUnavailable)
	}
	return res.User.identity(res.AccessToken), nil
}

func (c *HTTPClient) Resend(ctx context.Context, kind ResendType, email string) error {
	req := map[string]string{"type": string(kind), "email": email}
	return c.do(ctx, http.MethodPost, "/auth/v1/resend", "", req, nil)
}

func (c *HTTPClient) GetUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	var u userDTO
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &u); err != nil {
		return nil, err
	}
	return u.identity(accessToken), nil
}

func (c *HTTPClient) GetRole(ctx context.Context, accessToken, userID string) (models.Role, error) {
	var res struct {
		Role string `json:"role"`
	}
	path := "/rest/v1/users/" + url.PathEscape(userID) + "/role"
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &res); err != nil {
		return "", err
	}
	if res.Role == "" {
		return "", &APIError{Status: http.StatusNotFound, Code: "not_found", Message: "role not assigned", kind: ErrNotFound}
	}
	return models.Role(res.Role), nil
}

func (c *HTTPClient) CreateProfile(ctx context.Context, accessToken string, kind models.ProfileKind, userID string, payload json.RawMessage) error {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	req := struct {
		UserID  string          `json:"user_id"`
		Payload json.RawMessage `json:"payload"`
	}{UserID: userID, Payload: payload}
	return c.do(ctx, http.MethodPost, "/rest/v1/profiles/"+url.PathEscape(string(kind)), accessToken, req, nil)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/health", "", nil, nil)
	if err != nil && !errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
