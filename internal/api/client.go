package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/soaringjerry/inform/internal/config"
	"github.com/soaringjerry/inform/internal/middleware"
)

const DefaultUserAgent = "inform-cli/1.0"

// HTTPError is a non-2xx answer from the API. Message comes from the JSON
// body's "message" field, or the status text when there is none.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client talks to the InForm REST API.
type Client struct {
	base      *url.URL
	http      *http.Client
	transport http.RoundTripper
	tokens    TokenStore
	session   middleware.SessionHandler
	locale    string
	userAgent string
	timeout   time.Duration
}

type Option func(*Client)

// WithSessionHandler is called after the stored token has been cleared
// because the session expired.
func WithSessionHandler(h middleware.SessionHandler) Option {
	return func(c *Client) { c.session = h }
}

func WithTokenStore(s TokenStore) Option { return func(c *Client) { c.tokens = s } }

func WithLocale(lang string) Option { return func(c *Client) { c.locale = lang } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func WithUserAgent(ua string) Option { return func(c *Client) { c.userAgent = ua } }

// WithTransport replaces the innermost transport, mostly for tests.
func WithTransport(rt http.RoundTripper) Option { return func(c *Client) { c.transport = rt } }

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API url %q", baseURL)
	}
	c := &Client{
		base:      u,
		tokens:    &MemoryTokenStore{},
		locale:    "en",
		userAgent: DefaultUserAgent,
		timeout:   15 * time.Second,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(c)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c.http = &http.Client{
		Jar:     jar,
		Timeout: c.timeout,
		Transport: middleware.Chain(c.transport,
			middleware.WithRequestID,
			middleware.WithLogging,
			middleware.WithUserAgent(c.userAgent),
			middleware.WithLocale(c.locale),
			middleware.WithNoCache,
			middleware.WithAuth(c.tokens, middleware.SessionHandlerFunc(c.sessionExpired)),
		),
	}
	return c, nil
}

// sessionExpired drops the stale token, then notifies the caller's handler.
func (c *Client) sessionExpired(ctx context.Context) {
	if err := c.tokens.Clear(); err != nil {
		config.WithContext(ctx).WithError(err).Warn("could not clear session token")
	}
	if c.session != nil {
		c.session.OnSessionExpired(ctx)
	}
}

// Tokens exposes the client's token store.
func (c *Client) Tokens() TokenStore { return c.tokens }

func (c *Client) endpoint(parts ...string) string {
	u := *c.base
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(escaped, "/")
	return u.String()
}

// do sends body as JSON and decodes a 2xx answer into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) && errors.Is(uerr.Err, middleware.ErrSessionExpired) {
			return nil, middleware.ErrSessionExpired
		}
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return resp, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, decodeHTTPError(resp.StatusCode, data)
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, fmt.Errorf("decode %s %s: %w", method, req.URL.Path, err)
		}
	}
	return resp, nil
}

func decodeHTTPError(status int, data []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(data, &payload)
	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: msg}
}
