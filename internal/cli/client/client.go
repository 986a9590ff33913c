package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/foodctl/foodctl/internal/cli/session"
)

// DefaultBaseURL is the origin of the food delivery service
const DefaultBaseURL = "https://food-delivery.int.kreosoft.space"

// Client represents an HTTP client for the food delivery API. Every network
// call goes through Do, which attaches the stored bearer token and classifies
// the response.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	navigator  Navigator
	page       string
	logger     zerolog.Logger

	// expired fires the navigator once, however many calls fail with 401
	expired sync.Once
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithStore sets where the bearer token is read from and cleared
func WithStore(store session.Store) Option {
	return func(c *Client) { c.store = store }
}

// WithNavigator sets the receiver of session-expiry side effects
func WithNavigator(navigator Navigator) Option {
	return func(c *Client) { c.navigator = navigator }
}

// WithPage names the page (command) the client serves. Public pages do not
// redirect on 401.
func WithPage(page string) Option {
	return func(c *Client) { c.page = page }
}

// WithLogger sets the request logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a new API client. Without options it has no stored credential
// and ignores session-expiry side effects.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		store:      session.NewMemoryStore(""),
		navigator:  nopNavigator{},
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the origin requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Store returns the credential store used by the client
func (c *Client) Store() session.Store {
	return c.store
}

// Authenticated reports whether a credential is currently stored
func (c *Client) Authenticated() bool {
	token, err := c.store.Token()
	return err == nil && token != ""
}

// Result is the outcome of a successful call: either a JSON payload or a bare
// success marker.
type Result struct {
	method string
	path   string
	raw    json.RawMessage
}

// HasPayload reports whether the response carried a JSON body
func (r *Result) HasPayload() bool {
	return r != nil && len(r.raw) > 0
}

// Raw returns the JSON payload, or nil for a success marker
func (r *Result) Raw() json.RawMessage {
	if r == nil {
		return nil
	}
	return r.raw
}

// Decode unmarshals the payload into v
func (r *Result) Decode(v any) error {
	if !r.HasPayload() {
		return &Error{Kind: KindDecode, Method: r.method, Path: r.path, Err: fmt.Errorf("response has no payload")}
	}
	if err := json.Unmarshal(r.raw, v); err != nil {
		return &Error{Kind: KindDecode, Method: r.method, Path: r.path, Err: err}
	}
	return nil
}

// Value returns the payload as generic JSON values (maps, slices, float64...),
// or nil for a success marker.
func (r *Result) Value() (any, error) {
	if !r.HasPayload() {
		return nil, nil
	}
	var v any
	if err := r.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Do sends a request to path (relative to the base URL). An empty method means
// GET; a non-nil body is sent as JSON.
//
// A 401 clears the stored token and, unless the client serves a public page,
// notifies the user and redirects to login (once per Client). 403 and other non-2xx statuses are
// returned as *Error. 204 and any DELETE resolve to a success marker.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Result, error) {
	if method == "" {
		method = http.MethodGet
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	token, err := c.store.Token()
	if err != nil {
		return nil, &Error{Kind: KindSession, Method: method, Path: path, Err: err}
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("API request failed")
		return nil, &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Bool("authenticated", token != "").
		Dur("duration", time.Since(start)).
		Msg("API request")

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, c.handleUnauthorized(method, path, resp)
	case resp.StatusCode == http.StatusForbidden:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &Error{Kind: KindForbidden, Method: method, Path: path, StatusCode: resp.StatusCode, Message: messageFromBody(respBody)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &Error{Kind: KindHTTP, Method: method, Path: path, StatusCode: resp.StatusCode, Message: messageFromBody(respBody)}
	}

	result := &Result{method: method, path: path}

	if resp.StatusCode == http.StatusNoContent || method == http.MethodDelete {
		_, _ = io.Copy(io.Discard, resp.Body)
		return result, nil
	}

	if !isJSON(resp.Header.Get("Content-Type")) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return result, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	if !json.Valid(data) {
		return nil, &Error{Kind: KindDecode, Method: method, Path: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid JSON body")}
	}
	result.raw = data

	return result, nil
}

// handleUnauthorized clears the credential and, off public pages, sends the
// user back to login. It always returns the unauthorized error.
func (c *Client) handleUnauthorized(method, path string, resp *http.Response) error {
	respBody, _ := io.ReadAll(resp.Body)

	if err := c.store.Clear(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to clear stored token")
	}

	if !IsPublicPage(c.page) {
		c.expired.Do(func() {
			c.logger.Info().Str("page", c.page).Str("path", path).Msg("Session expired, redirecting to login")
			c.navigator.Notify(SessionExpiredMessage)
			c.navigator.RedirectToLogin()
		})
	}

	return &Error{
		Kind:       KindUnauthorized,
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Message:    messageFromBody(respBody),
	}
}

func isJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// call runs Do and decodes the payload into out when out is non-nil
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	res, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return res.Decode(out)
}
