// Package api is the portal HTTP client: it builds authorized requests
// against the configured base endpoint, normalizes response envelopes, and
// enforces the session-invalidation protocol on authorization failure.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trilhalab/portalctl/internal/errors"
	"github.com/trilhalab/portalctl/internal/log"
	"github.com/trilhalab/portalctl/internal/session"
)

const (
	// LoginPath is the credential exchange endpoint. A 401 from this path is
	// a login failure, never a session invalidation.
	LoginPath = "/users/auth/login"

	// ChangePasswordPath is the password change endpoint.
	ChangePasswordPath = "/users/auth/change-password"

	// healthPath is the liveness endpoint for external monitoring.
	healthPath = "/users/health"
)

// SessionStore is the slice of the session store the client needs: the
// current token for authorization, and the clear operation for the 401
// protocol.
type SessionStore interface {
	Load() *session.Session
	Clear()
}

// Client issues requests against the portal backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SessionStore
	logger     *log.Logger

	// onSessionExpired runs after a 401 on a non-login path has cleared the
	// store, before the session-expired error surfaces to the caller. The
	// CLI uses it to point the user back at `portalctl login`.
	onSessionExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithSessionExpiredHook installs the hook run on session invalidation.
// Passing nil disables it, which is what the interactive login flow does:
// there is no point telling a user already at the login prompt to log in.
func WithSessionExpiredHook(hook func()) Option {
	return func(c *Client) { c.onSessionExpired = hook }
}

// New creates a client for the given base URL. The URL is normalized once
// (trailing slash stripped) and validated before any request is made.
func New(baseURL string, store SessionStore, opts ...Option) (*Client, error) {
	normalized := strings.TrimRight(baseURL, "/")

	u, err := url.Parse(normalized)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewInvalidURLError(baseURL, err)
	}

	c := &Client{
		baseURL:    normalized,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		store:      store,
		logger:     log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized base endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RequestOption adjusts the headers of a single request. Whatever form the
// caller supplies, everything lands in one header set.
type RequestOption func(http.Header)

// WithHeader sets a single header.
func WithHeader(key, value string) RequestOption {
	return func(h http.Header) { h.Set(key, value) }
}

// WithHeaders merges a full http.Header.
func WithHeaders(headers http.Header) RequestOption {
	return func(h http.Header) {
		for key, values := range headers {
			for _, value := range values {
				h.Set(key, value)
			}
		}
	}
}

// WithHeaderMap merges a plain key/value map.
func WithHeaderMap(m map[string]string) RequestOption {
	return func(h http.Header) {
		for key, value := range m {
			h.Set(key, value)
		}
	}
}

// Request issues method against path and returns the parsed envelope.
//
// The path is normalized to a single leading slash and joined to the base
// URL; a malformed target fails before any network I/O. A 401 response on
// any path other than the login exchange invalidates the session: the store
// is cleared, the session-expired hook runs, and the call fails with a
// session-expired error regardless of the response body. Network-level
// failures propagate unchanged.
func (c *Client) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Envelope, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := c.baseURL + path

	if u, err := url.Parse(target); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewInvalidURLError(target, err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRequestEncoding, "failed to encode request body", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, errors.NewInvalidURLError(target, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	for _, opt := range opts {
		opt(req.Header)
	}
	if sess := c.store.Load(); sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	c.logger.Debug("api request", "method", method, "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failure: no response was obtained, nothing to translate.
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !strings.Contains(path, "/auth/login") {
		c.logger.Debug("authorization rejected, invalidating session", "path", path)
		c.store.Clear()
		if c.onSessionExpired != nil {
			c.onSessionExpired()
		}
		return nil, errors.NewSessionExpiredError()
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, errors.NewRequestFailedError(resp.StatusCode, "")
		}
		return nil, errors.NewResponseDecodeError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewRequestFailedError(resp.StatusCode, env.Message)
	}

	return &env, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Envelope, error) {
	return c.Request(ctx, http.MethodGet, path, nil, opts...)
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.Request(ctx, http.MethodPost, path, body, opts...)
}

// Put issues a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.Request(ctx, http.MethodPut, path, body, opts...)
}

// Patch issues a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Envelope, error) {
	return c.Request(ctx, http.MethodPatch, path, body, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Envelope, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, opts...)
}

// HealthCheck probes the portal liveness endpoint. It plays no part in the
// session protocol; it exists for monitoring and the `portalctl health`
// command.
func (c *Client) HealthCheck(ctx context.Context) (*Envelope, error) {
	return c.Get(ctx, healthPath)
}
