// Package api is the single outbound gateway to the work order
// backend. It attaches the stored bearer token to every request,
// normalizes error bodies, and clears stale credentials on an
// authentication rejection.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blackenaxe/icom/internal/storage"
)

// Client is a thin HTTP client for the backend REST API. It is a
// transport, not a resilience layer: no retries, no backoff, one
// bounded timeout per request.
type Client struct {
	baseURL    string
	creds      storage.Store
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a gateway for the backend at baseURL. Credentials
// are read from creds before every request; no call site can opt out.
func NewClient(baseURL string, creds storage.Store, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// get performs a GET request and unmarshals the JSON response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, "", nil, "", result)
}

// postJSON performs a POST request with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, "application/json", data, "", result)
}

// putJSON performs a PUT request with a JSON body.
func (c *Client) putJSON(ctx context.Context, path string, body interface{}, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, "application/json", data, "", result)
}

// postForm performs a POST request with a form-encoded body.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, result interface{}) error {
	return c.do(ctx, http.MethodPost, path,
		"application/x-www-form-urlencoded", []byte(form.Encode()), "", result)
}

// delete performs a DELETE request.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, "", nil, "", nil)
}

// do builds and executes one request. The stored token is attached as
// a bearer credential when present; tokenOverride substitutes a token
// that is not yet persisted (the login profile fetch). A 401 response
// clears both credential entries before the error is propagated
// upward unchanged; navigation recovery belongs to the session layer.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	contentType string,
	body []byte,
	tokenOverride string,
	result interface{},
) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	token := tokenOverride
	if token == "" {
		stored, ok, err := c.creds.Get(storage.KeyToken)
		if err != nil {
			return fmt.Errorf("reading stored token: %w", err)
		}
		if ok {
			token = stored
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("request", "method", method, "path", path, "request_id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Stale credentials must not survive a rejection. The error
		// itself still propagates so the session layer can react.
		c.clearCredentials()
		c.logger.Info("authentication rejected, credentials cleared",
			"method", method, "path", path, "request_id", requestID)
		return parseErrorBody(resp.StatusCode, respBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("request rejected",
			"method", method, "path", path,
			"status", resp.StatusCode, "request_id", requestID)
		return parseErrorBody(resp.StatusCode, respBody)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}

// clearCredentials removes the token and user entries together, per
// the session invariant that neither outlives the other.
func (c *Client) clearCredentials() {
	if err := c.creds.Remove(storage.KeyToken); err != nil {
		c.logger.Error("clearing stored token", "error", err)
	}
	if err := c.creds.Remove(storage.KeyUser); err != nil {
		c.logger.Error("clearing stored user", "error", err)
	}
}
