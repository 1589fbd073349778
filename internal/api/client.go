// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ShragaAI/shraga-ui/internal/model"
)

// Configuration constants for the backend client.
const (
	// DefaultTimeout is the default timeout for short API requests.
	DefaultTimeout = 30 * time.Second

	// DefaultRunTimeout is the default timeout for the run endpoint.
	// Flow executions can legitimately take minutes.
	DefaultRunTimeout = 300 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// One shared transport for all backend requests; timeouts are applied
// per call via context so long-running flow executions are not cut off
// by a blanket client timeout.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// CredentialSource supplies the Authorization header value for
// authenticated requests. Implemented by auth.Store.
type CredentialSource interface {
	Get() (string, bool)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the HTTP client for the shraga backend.
type Client struct {
	baseURL    string
	creds      CredentialSource
	httpClient *http.Client
	runTimeout time.Duration
	userAgent  string

	// limiter guards the backend against request storms from refresh
	// loops; user-visible calls are far below the limit.
	limiter *rate.Limiter

	// onUnauthorized runs once per 401 before ErrUnauthorized is
	// returned. Wired to the global logout side effect.
	onUnauthorized func()
}

// NewClient creates a backend client for the given base URL. The
// credential source may be nil for unauthenticated use (login flows).
func NewClient(baseURL string, creds CredentialSource) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		creds:      creds,
		httpClient: sharedHTTPClient,
		runTimeout: DefaultRunTimeout,
		userAgent:  "shraga-ui/0.4.0",
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
	}
}

// WithRunTimeout sets the default timeout for run requests.
func (c *Client) WithRunTimeout(timeout time.Duration) *Client {
	c.runTimeout = timeout
	return c
}

// WithOnUnauthorized sets the hook invoked when the backend rejects the
// credential.
func (c *Client) WithOnUnauthorized(fn func()) *Client {
	c.onUnauthorized = fn
	return c
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// logRequest logs an API request without exposing sensitive data.
// Headers may contain the credential and bodies the conversation, so
// only method and path are logged.
func logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs status code and duration only, no response body.
func logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// do performs a JSON request against the backend and decodes the
// response into out (which may be nil). Error mapping: 401 fires the
// unauthorized hook and returns ErrUnauthorized, 400 returns a
// *ValidationError, any other non-OK status a *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authenticated bool) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, authenticated)

	logRequest(req)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	logResponse(resp, time.Since(start))

	data, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody errorBody
		_ = json.Unmarshal(data, &errBody) // best effort; detail may be absent

		if resp.StatusCode == http.StatusBadRequest {
			return &ValidationError{Detail: errBody.Detail}
		}
		return &APIError{
			Status:  resp.StatusCode,
			Detail:  errBody.Detail,
			Trace:   errBody.Trace,
			Payload: errBody.Payload,
		}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// setHeaders sets the common headers for a backend request.
func (c *Client) setHeaders(req *http.Request, authenticated bool) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if authenticated && c.creds != nil {
		if cred, ok := c.creds.Get(); ok {
			req.Header.Set("Authorization", cred)
		}
	}
}

// get runs an authenticated GET with the default short timeout.
func (c *Client) get(ctx context.Context, path string, out any) error {
	ctx, cancel := withDefaultTimeout(ctx, DefaultTimeout)
	defer cancel()
	return c.do(ctx, http.MethodGet, path, nil, out, true)
}

// withDefaultTimeout applies a timeout only when the context has no
// deadline of its own, so callers keep control of cancellation.
func withDefaultTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// =============================================================================
// CONFIGURATION AND FLOWS
// =============================================================================

// GetConfigs fetches the backend UI configuration.
func (c *Client) GetConfigs(ctx context.Context) (*UIConfig, error) {
	var cfg UIConfig
	if err := c.get(ctx, "/api/ui/configs", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListFlows fetches the available flows with their raw preference specs.
func (c *Client) ListFlows(ctx context.Context) ([]model.Flow, error) {
	var flows []model.Flow
	if err := c.get(ctx, "/api/flows/", &flows); err != nil {
		return nil, err
	}
	return flows, nil
}

// =============================================================================
// HISTORY
// =============================================================================

// ListHistory fetches the persisted chat list. Entries are normalized:
// id preferring id over chat_id, flow derived from the first message.
func (c *Client) ListHistory(ctx context.Context) ([]*model.Chat, error) {
	var items []historyItem
	if err := c.get(ctx, "/api/history/list", &items); err != nil {
		return nil, err
	}

	chats := make([]*model.Chat, 0, len(items))
	for _, item := range items {
		chats = append(chats, item.toChat())
	}
	return chats, nil
}

// ChatMessages fetches the full message list for one chat.
func (c *Client) ChatMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	var messages []model.Message
	if err := c.get(ctx, "/api/history/"+chatID+"/messages", &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// =============================================================================
// RUN AND FEEDBACK
// =============================================================================

// Run executes a flow with the user's question. The request honors the
// caller's context for cancellation; when the context carries no
// deadline the client's run timeout (default 300s) applies. Actual
// socket release on timeout comes from context cancellation, not a
// client-side flag.
func (c *Client) Run(ctx context.Context, req RunRequest) (*RunResponse, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.runTimeout)
	defer cancel()

	var resp RunResponse
	if err := c.do(ctx, http.MethodPost, "/api/flows/run", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitFeedback records a thumbs up/down rating for a message.
func (c *Client) SubmitFeedback(ctx context.Context, req FeedbackRequest) error {
	ctx, cancel := withDefaultTimeout(ctx, DefaultTimeout)
	defer cancel()
	return c.do(ctx, http.MethodPost, "/api/history/feedback", req, nil, true)
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// WhoAmI validates the stored credential and returns the current user.
func (c *Client) WhoAmI(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/api/whoami", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// OAuthToken exchanges an OAuth authorization code for a backend token.
// Unauthenticated: it runs before any credential exists.
func (c *Client) OAuthToken(ctx context.Context, provider string, req OAuthTokenRequest) (*OAuthTokenResponse, error) {
	ctx, cancel := withDefaultTimeout(ctx, DefaultTimeout)
	defer cancel()

	var resp OAuthTokenResponse
	if err := c.do(ctx, http.MethodPost, "/oauth/"+provider+"/token", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LoginMethods returns the login methods the backend accepts.
func (c *Client) LoginMethods(ctx context.Context) ([]string, error) {
	ctx, cancel := withDefaultTimeout(ctx, DefaultTimeout)
	defer cancel()

	var methods []string
	if err := c.do(ctx, http.MethodGet, "/auth/login_methods", nil, &methods, false); err != nil {
		return nil, err
	}
	return methods, nil
}
