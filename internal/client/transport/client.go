// Package transport wraps outbound HTTP with the session guard: bearer
// attachment, a single transparent refresh-and-retry on 401, and best-effort
// extraction of server error messages.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"ojcli/internal/client/session"
	pkgerrors "ojcli/pkg/errors"
	"ojcli/pkg/utils/contextkey"
	"ojcli/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRefreshPath = "/api/users/token/refresh/"

// Client issues JSON requests against the platform API on behalf of a
// session.
type Client struct {
	baseURL     string
	refreshPath string
	httpClient  *http.Client
	session     *session.Session

	// Serializes refresh attempts so concurrent 401s mint one token, not
	// a stampede of them.
	refreshMu sync.Mutex
}

// New creates a client. timeout bounds each individual HTTP call.
func New(baseURL string, timeout time.Duration, sess *session.Session) *Client {
	return &Client{
		baseURL:     baseURL,
		refreshPath: defaultRefreshPath,
		httpClient:  &http.Client{Timeout: timeout},
		session:     sess,
	}
}

// SetBaseURL replaces the API base URL.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetTimeout replaces the per-call HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
}

// Session returns the session this client guards.
func (c *Client) Session() *session.Session {
	return c.session
}

// Do issues one request and decodes the JSON response into out (skipped when
// out is nil). On 401 with a refresh token present it refreshes once and
// retries the original request once; a second 401, or a failed refresh,
// clears the session and returns a session-expired error.
func (c *Client) Do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(err, pkgerrors.RequestBuildFailed)
		}
		body = data
	}

	requestID := uuid.NewString()
	ctx = context.WithValue(ctx, contextkey.RequestID, requestID)

	access := c.session.AccessToken()
	status, raw, err := c.doOnce(ctx, method, path, body, access, requestID)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.RequestFailed)
	}

	if status == http.StatusUnauthorized {
		if c.session.RefreshToken() == "" {
			return pkgerrors.New(pkgerrors.NotAuthenticated).WithMessage(ExtractErrorMessage(raw))
		}
		newAccess, refreshErr := c.refreshAccess(ctx, access)
		if refreshErr != nil {
			logger.Warn(ctx, "token refresh failed, clearing session", zap.Error(refreshErr))
			c.session.Clear()
			return pkgerrors.SessionExpiredError(refreshErr)
		}
		status, raw, err = c.doOnce(ctx, method, path, body, newAccess, requestID)
		if err != nil {
			return pkgerrors.Wrap(err, pkgerrors.RequestFailed)
		}
		if status == http.StatusUnauthorized {
			// Refreshed token was also rejected. One retry is the limit.
			logger.Warn(ctx, "request unauthorized after refresh, clearing session",
				zap.String("path", path))
			c.session.Clear()
			return pkgerrors.New(pkgerrors.SessionExpired)
		}
	}

	if status >= 400 {
		return serverError(status, raw)
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return pkgerrors.Wrap(err, pkgerrors.ResponseDecodeFailed)
		}
	}
	return nil
}

// doOnce performs a single HTTP exchange and reads the whole body.
func (c *Client) doOnce(ctx context.Context, method, path string, body []byte, access, requestID string) (int, []byte, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s%s", c.baseURL, path), reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body failed: %w", err)
	}
	logger.Debug(ctx, "http exchange",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))
	return resp.StatusCode, raw, nil
}

// refreshAccess mints a new access token from the refresh token, at most
// once per failing request. failedAccess is the token the failed call used:
// if another goroutine already refreshed past it, that newer token is
// returned without a second refresh call.
func (c *Client) refreshAccess(ctx context.Context, failedAccess string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if current := c.session.AccessToken(); current != "" && current != failedAccess {
		return current, nil
	}
	refresh := c.session.RefreshToken()
	if refresh == "" {
		return "", pkgerrors.New(pkgerrors.RefreshFailed)
	}

	body, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.RefreshFailed)
	}
	// The refresh call itself runs unauthenticated and is never retried.
	status, raw, err := c.doOnce(ctx, http.MethodPost, c.refreshPath, body, "", uuid.NewString())
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.RefreshFailed)
	}
	if status >= 400 {
		return "", pkgerrors.New(pkgerrors.RefreshFailed).WithMessage(ExtractErrorMessage(raw))
	}

	var result struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(raw, &result); err != nil || result.Access == "" {
		return "", pkgerrors.New(pkgerrors.RefreshFailed)
	}
	c.session.SetAccessToken(result.Access)
	logger.Info(ctx, "access token refreshed")
	return result.Access, nil
}

// serverError maps a non-2xx response to a coded error carrying the
// extracted message.
func serverError(status int, raw []byte) error {
	msg := ExtractErrorMessage(raw)
	switch {
	case status == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.NotFound).WithMessage(msg)
	case status == http.StatusUnauthorized:
		return pkgerrors.New(pkgerrors.NotAuthenticated).WithMessage(msg)
	case status == http.StatusTooManyRequests:
		return pkgerrors.New(pkgerrors.RateLimited).WithMessage(msg)
	case status >= 500:
		return pkgerrors.New(pkgerrors.ServerError).WithMessage(msg).WithDetail("status", status)
	default:
		return pkgerrors.New(pkgerrors.ServerRejected).WithMessage(msg).WithDetail("status", status)
	}
}
