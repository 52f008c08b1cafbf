// Package transport wraps net/http with the conventions every AccuNode API
// call shares: base URL resolution, bearer-token injection, request ids,
// uniform envelope construction, and the single silent refresh-and-retry on
// HTTP 401. API modules build on Client and never touch net/http directly.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/errors"
	"github.com/accunode/accunode-go/pkg/logger"
	"github.com/google/uuid"
)

// TokenSource supplies bearer tokens and performs the silent refresh on 401.
// The auth store implements it; concurrent RefreshNow calls must coalesce to
// a single network refresh.
type TokenSource interface {
	// AccessToken returns the current access token, refreshing proactively
	// when the token is near expiry. Empty string means anonymous.
	AccessToken(ctx context.Context) (string, error)

	// RefreshNow forces a refresh and returns the new access token. Called
	// by the transport after a 401. A failure here is fatal to the session;
	// the token source clears its state and signals session expiry before
	// returning.
	RefreshNow(ctx context.Context) (string, error)
}

// Envelope is the uniform result shape: success with data, or a normalized
// error. The syncd HTTP surface serves these verbatim.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ToEnvelope folds a (value, error) pair into an Envelope.
func ToEnvelope(data interface{}, err error) Envelope {
	if err != nil {
		return Envelope{Success: false, Error: errors.Humanize(err)}
	}
	return Envelope{Success: true, Data: data}
}

// serverError is the error body shape the platform API returns. FastAPI-style
// "detail" is the common case; "message" is kept for older endpoints.
type serverError struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e *serverError) text() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Message != "":
		return e.Message
	default:
		return e.Error
	}
}

// Client is the shared HTTP wrapper. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logger.Logger
}

// New creates a Client against the given base URL. tokens may be nil for a
// purely anonymous client (used before login).
func New(baseURL string, timeout time.Duration, tokens TokenSource, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log.WithComponent("transport"),
	}
}

// SetTokenSource wires the auth store in after construction. The auth store
// itself needs a Client for /auth calls, so the two are tied together once
// both exist.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// Get issues an authenticated GET and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out, true)
}

// Post issues an authenticated POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out, true)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, body, out, true)
}

// Patch issues an authenticated PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, body, out, true)
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, true)
}

// PostPublic issues an unauthenticated POST. Login, register, and refresh go
// through here; a 401 on these is final, never retried.
func (c *Client) PostPublic(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out, false)
}

// Upload issues an authenticated multipart POST carrying one file plus form
// fields. Used by the bulk-upload endpoints.
func (c *Client) Upload(ctx context.Context, path, fileName string, file io.Reader, fields map[string]string, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return errors.NewNetworkError(err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return errors.NewNetworkError(err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return errors.NewNetworkError(err)
		}
	}
	if err := w.Close(); err != nil {
		return errors.NewNetworkError(err)
	}
	return c.send(ctx, http.MethodPost, path, buf.Bytes(), w.FormDataContentType(), out, true)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.NewValidationError("body", "failed to encode request body").WithCause(err)
		}
	}
	return c.send(ctx, method, path, payload, "application/json", out, authed)
}

// send performs the request once, and on a 401 for an authenticated call
// refreshes exactly once and replays. A second 401 is the fatal auth path.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, contentType string, out interface{}, authed bool) error {
	token := ""
	if authed && c.tokens != nil {
		var err error
		token, err = c.tokens.AccessToken(ctx)
		if err != nil {
			return err
		}
	}

	status, err := c.roundTrip(ctx, method, path, payload, contentType, token, out)
	if err == nil || status != http.StatusUnauthorized || !authed || c.tokens == nil {
		return err
	}

	// One silent refresh, then replay with the new token.
	c.log.Debug(ctx, "received 401, attempting token refresh", logger.Fields{"path": path})
	newToken, refreshErr := c.tokens.RefreshNow(ctx)
	if refreshErr != nil {
		return errors.NewAuthError("session expired").WithCause(refreshErr)
	}

	status, err = c.roundTrip(ctx, method, path, payload, contentType, newToken, out)
	if status == http.StatusUnauthorized {
		return errors.NewAuthError("request unauthorized after token refresh")
	}
	return err
}

// roundTrip performs a single HTTP exchange and normalizes the outcome.
// The returned status is zero on network failure.
func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, contentType, token string, out interface{}) (int, error) {
	url := c.baseURL + constants.APIBasePath + path

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, errors.NewNetworkError(err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(constants.HeaderRequestID, uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", logger.Fields{"method": method, "path": path, "error": err.Error()})
		return 0, errors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request completed", logger.Fields{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return resp.StatusCode, nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, errors.NewHTTPError(resp.StatusCode,
				fmt.Sprintf("failed to decode response: %v", err))
		}
		return resp.StatusCode, nil
	}

	var srvErr serverError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &srvErr)
	return resp.StatusCode, errors.NewHTTPError(resp.StatusCode, srvErr.text())
}
