package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/models"

	"github.com/rs/zerolog"
)

// LoginResult is the normalized outcome of a login call. User is nil when
// the backend answered without an embedded account record.
type LoginResult struct {
	Token string
	User  *models.User
}

type LoginClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewLoginClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *LoginClient {
	return &LoginClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func LoginPath(role models.Role) string {
	return "/api/auth/" + string(role) + "/login"
}

func (c *LoginClient) Login(ctx context.Context, creds models.Credentials, role models.Role) (*LoginResult, error) {
	payload, err := json.Marshal(loginPayload(creds, role))
	if err != nil {
		return nil, fmt.Errorf("failed to encode login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+LoginPath(role), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("role", string(role)).Msg("Login transport failed")
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readError(resp)
	}

	return decodeLoginResponse(io.LimitReader(resp.Body, 1<<20), role)
}

func loginPayload(creds models.Credentials, role models.Role) map[string]string {
	if role == models.RoleConsumer && creds.UsesPhone() {
		return map[string]string{"phone": creds.Phone, "pin": creds.PIN}
	}
	return map[string]string{"email": creds.Email, "password": creds.Password}
}
