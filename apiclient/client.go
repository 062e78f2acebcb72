// Package apiclient talks to the affiliate portal REST API on behalf of one
// client session.
//
// Every request carries the session's bearer credential when one is present.
// A 401 from any endpoint ends the session: the credential and cached user
// are cleared before the error is returned and the navigator is sent to the
// login page. A 403 is only reported. Requests are attempted once; callers
// decide whether to retry.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-affiliate-portal/internal/metrics"
	"github.com/jrsteele09/go-affiliate-portal/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const maxErrorBody = 1 << 20

// Client performs authenticated requests against the portal API.
type Client struct {
	baseURL    string // origin + base path, no trailing slash
	httpClient *http.Client
	session    *sessions.Session
	navigator  Navigator
	logger     zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithNavigator sets the navigator used for redirects.
func WithNavigator(n Navigator) ClientOption {
	return func(c *Client) {
		if n != nil {
			c.navigator = n
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the API rooted at baseURL (origin plus base path,
// e.g. "https://portal.example.com/wp-json/affiliate-portal/v1").
func New(baseURL string, session *sessions.Session, options ...ClientOption) (*Client, error) {
	if session == nil {
		return nil, errors.New("[apiclient.New] session is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[apiclient.New] invalid base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("[apiclient.New] base url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		session:    session,
		navigator:  NopNavigator{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// JoinBaseURL joins an API origin and base path.
func JoinBaseURL(origin, basePath string) string {
	return strings.TrimRight(origin, "/") + "/" + strings.Trim(basePath, "/")
}

// Session returns the session the client acts for.
func (c *Client) Session() *sessions.Session {
	return c.session
}

// Navigator returns the client's navigator.
func (c *Client) Navigator() Navigator {
	return c.navigator
}

// Request sends a JSON request to path and decodes a 2xx response into out.
// body and out may be nil. Non-2xx responses are returned as *APIError.
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	req, sent, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.APIRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, "network").Inc()
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("api request failed")
		return fmt.Errorf("%w: %w", ErrNetwork, errors.Wrapf(err, "%s %s", method, path))
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(method, metrics.StatusClass(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return c.handleFailure(method, path, sent, newAPIError(resp.StatusCode, data))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrDecode, errors.Wrapf(err, "%s %s", method, path))
	}
	return nil
}

// newRequest builds the request and returns the credential it carries, if any.
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, string, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrInvalidRequest, errors.Wrap(err, "encode body"))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	var sent string
	if tok, err := c.session.Token(); err == nil {
		tok.SetAuthHeader(req)
		sent = tok.AccessToken
	}
	return req, sent, nil
}

// handleFailure applies the session side effects of a failed response. A 401
// only ends the session when it rejected the credential the session still
// holds; a newer sign-in is left alone and the error is marked as a session
// change.
func (c *Client) handleFailure(method, path, sent string, apiErr *APIError) error {
	log := c.logger.With().Str("method", method).Str("path", path).Int("status", apiErr.Status).Logger()

	switch apiErr.Status {
	case http.StatusUnauthorized:
		if current, ok := c.session.Credential(); ok && current != sent {
			log.Info().Msg("ignoring 401 for a replaced credential")
			return fmt.Errorf("%w: %w", ErrSessionChanged, apiErr)
		}
		if err := c.session.Clear(); err != nil {
			log.Error().Err(err).Msg("failed to clear credential after 401")
		}
		metrics.SessionClearedTotal.WithLabelValues("unauthorized").Inc()
		if c.navigator.Location() != LoginPath {
			c.navigator.Redirect(LoginPath)
		}
		log.Info().Msg("session ended by api")
	case http.StatusForbidden:
		log.Info().Str("code", apiErr.Code).Msg("permission denied")
	default:
		log.Warn().Str("code", apiErr.Code).Str("message", apiErr.Message).Msg("api error")
	}
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.Request(ctx, http.MethodGet, path, nil, out)
}

// getJSON fetches path into a new T.
func getJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	var out T
	if err := c.get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// sendJSON sends body with method and decodes the response into a new T.
func sendJSON[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	var out T
	if err := c.Request(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
