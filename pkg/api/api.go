// Package api provides a fluent, cookie-aware HTTP client for the VPerfumes
// tracking API.
//
// Usage:
//
//	c, _ := api.New()
//	resp, err := c.Get("/orders").WithContext(ctx).Send()
//
//	var orders []models.Order
//	err = resp.JSON(&orders)
//
//	// POST JSON body
//	resp, err := c.Post("/auth/login").Body(map[string]any{
//	    "username": "acme1", "password": "secret",
//	}).Send()
//
// The client authenticates with the server's session cookie. The jar is
// persisted to a file between process runs so the CLI keeps its ambient
// credential, mirroring a browser profile.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	gohttp "net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/vperfumes/tracker/config"
	"github.com/vperfumes/tracker/pkg/crypt"
	"github.com/vperfumes/tracker/pkg/logger"
)

// defaultTransport is the connection-pooled transport used in production.
// Tests can replace a Client's HTTP transport to inject mocks.
var defaultTransport = &gohttp.Transport{
	MaxIdleConns:        200,
	MaxIdleConnsPerHost: 100,
	IdleConnTimeout:     90 * time.Second,
}

// ─── Client ───────────────────────────────────────────────────────────────────

// Client is a base-URL-bound HTTP client with a persistent cookie jar.
type Client struct {
	base       string
	http       *gohttp.Client
	jar        *cookiejar.Jar
	cookieFile string
}

// Option customises a Client at construction time.
type Option func(*Client)

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.base = base }
}

// WithCookieFile overrides where the session cookie is persisted.
// An empty path disables persistence (tests use this).
func WithCookieFile(path string) Option {
	return func(c *Client) { c.cookieFile = path }
}

// New builds a Client from config, loading any previously saved session
// cookie from disk.
func New(opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("api: cookie jar: %w", err)
	}

	c := &Client{
		base:       config.APIBaseURL(),
		jar:        jar,
		cookieFile: config.CookieFile(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http = &gohttp.Client{Transport: defaultTransport, Jar: jar}

	if err := c.loadCookies(); err != nil {
		// A corrupt or missing cookie file just means "not logged in".
		logger.Debug("api: no saved session", "error", err)
	}
	return c, nil
}

// BaseURL returns the API base URL the client is bound to.
func (c *Client) BaseURL() string { return c.base }

// Get starts a GET request against the API path.
func (c *Client) Get(path string) *Request { return c.newRequest(gohttp.MethodGet, path) }

// Post starts a POST request against the API path.
func (c *Client) Post(path string) *Request { return c.newRequest(gohttp.MethodPost, path) }

// Put starts a PUT request against the API path.
func (c *Client) Put(path string) *Request { return c.newRequest(gohttp.MethodPut, path) }

// Delete starts a DELETE request against the API path.
func (c *Client) Delete(path string) *Request { return c.newRequest(gohttp.MethodDelete, path) }

func (c *Client) newRequest(method, path string) *Request {
	return &Request{
		client:    c,
		method:    method,
		url:       c.base + path,
		headers:   map[string]string{"Content-Type": "application/json", "Accept": "application/json"},
		query:     url.Values{},
		timeout:   30 * time.Second,
		retries:   1, // no automatic retry: failed mutations surface to the user
		retryWait: 500 * time.Millisecond,
		ctx:       context.Background(),
	}
}

// ─── Cookie persistence ───────────────────────────────────────────────────────

type storedCookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

// SaveSession persists the current session cookies to the cookie file.
// Call after a successful login.
func (c *Client) SaveSession() error {
	if c.cookieFile == "" {
		return nil
	}
	u, err := url.Parse(c.base)
	if err != nil {
		return fmt.Errorf("api: parse base url: %w", err)
	}

	var stored []storedCookie
	for _, ck := range c.jar.Cookies(u) {
		stored = append(stored, storedCookie{
			Name: ck.Name, Value: ck.Value, Path: ck.Path,
			Expires: ck.Expires, Secure: ck.Secure, HTTPOnly: ck.HttpOnly,
		})
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("api: marshal cookies: %w", err)
	}
	// With APP_KEY set the jar is encrypted at rest; otherwise the 0600
	// file mode is the only protection.
	if crypt.Enabled() {
		enc, err := crypt.EncryptBytes(raw)
		if err != nil {
			return fmt.Errorf("api: encrypt cookies: %w", err)
		}
		raw = []byte(enc)
	}
	if err := os.MkdirAll(filepath.Dir(c.cookieFile), 0o700); err != nil {
		return fmt.Errorf("api: mkdir: %w", err)
	}
	// The session cookie is a credential: owner-only permissions.
	if err := os.WriteFile(c.cookieFile, raw, 0o600); err != nil {
		return fmt.Errorf("api: write cookie file: %w", err)
	}
	return nil
}

// ClearSession drops the in-memory cookies and deletes the cookie file.
// Call after logout.
func (c *Client) ClearSession() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("api: cookie jar: %w", err)
	}
	c.jar = jar
	c.http.Jar = jar

	if c.cookieFile == "" {
		return nil
	}
	if err := os.Remove(c.cookieFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("api: remove cookie file: %w", err)
	}
	return nil
}

// CookieHeader returns the Cookie header value for the API host, used when
// dialling the push channel so it is bound to the session rather than only
// the URL-embedded id.
func (c *Client) CookieHeader() string {
	u, err := url.Parse(c.base)
	if err != nil {
		return ""
	}
	var buf bytes.Buffer
	for i, ck := range c.jar.Cookies(u) {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(ck.Name)
		buf.WriteByte('=')
		buf.WriteString(ck.Value)
	}
	return buf.String()
}

func (c *Client) loadCookies() error {
	if c.cookieFile == "" {
		return nil
	}
	raw, err := os.ReadFile(c.cookieFile)
	if err != nil {
		return err
	}
	if crypt.Enabled() {
		plain, err := crypt.DecryptBytes(string(raw))
		if err != nil {
			return fmt.Errorf("api: decrypt cookie file: %w", err)
		}
		raw = plain
	}
	var stored []storedCookie
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("api: decode cookie file: %w", err)
	}
	u, err := url.Parse(c.base)
	if err != nil {
		return fmt.Errorf("api: parse base url: %w", err)
	}

	cookies := make([]*gohttp.Cookie, 0, len(stored))
	for _, s := range stored {
		if !s.Expires.IsZero() && s.Expires.Before(time.Now()) {
			continue
		}
		cookies = append(cookies, &gohttp.Cookie{
			Name: s.Name, Value: s.Value, Path: s.Path,
			Expires: s.Expires, Secure: s.Secure, HttpOnly: s.HTTPOnly,
		})
	}
	c.jar.SetCookies(u, cookies)
	return nil
}

// ─── Request ──────────────────────────────────────────────────────────────────

// Request is a fluent HTTP request builder.
type Request struct {
	client    *Client
	method    string
	url       string
	headers   map[string]string
	query     url.Values
	body      interface{}
	timeout   time.Duration
	retries   int
	retryWait time.Duration
	ctx       context.Context
}

// Header adds a single header to the request.
func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Query adds a URL query parameter.
func (r *Request) Query(key, value string) *Request {
	r.query.Set(key, value)
	return r
}

// Body sets the request body. v is marshalled to JSON automatically.
// Pass a string or []byte to send raw bodies.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

// Timeout sets the per-attempt timeout.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry configures automatic retries on transport failure.
// n is total attempts (1 = no retry), wait is the initial backoff (doubles
// each attempt).
func (r *Request) Retry(n int, wait time.Duration) *Request {
	r.retries = n
	r.retryWait = wait
	return r
}

// WithContext sets a custom context.
func (r *Request) WithContext(ctx context.Context) *Request {
	r.ctx = ctx
	return r
}

// Send executes the request and returns a Response.
func (r *Request) Send() (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= r.retries; attempt++ {
		resp, err := r.do()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt < r.retries {
			backoff := time.Duration(float64(r.retryWait) * math.Pow(2, float64(attempt-1)))
			logger.Warn("api: request failed, retrying",
				"url", r.url, "attempt", attempt, "backoff", backoff, "error", err)
			time.Sleep(backoff)
		}
	}

	return nil, fmt.Errorf("api: %s %s: %w", r.method, r.url, lastErr)
}

func (r *Request) do() (*Response, error) {
	body, err := r.buildBody()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	target := r.url
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := gohttp.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.client.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: send: %w", err)
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("api: read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Raw:        raw,
	}, nil
}

func (r *Request) buildBody() (io.Reader, error) {
	if r.body == nil {
		return nil, nil
	}
	switch v := r.body.(type) {
	case string:
		return bytes.NewBufferString(v), nil
	case []byte:
		return bytes.NewReader(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("api: marshal body: %w", err)
		}
		return bytes.NewReader(b), nil
	}
}

// ─── Response ─────────────────────────────────────────────────────────────────

// Response wraps the HTTP response with convenience methods.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into dest.
func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("api: decode JSON: %w", err)
	}
	return nil
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Raw)
}

// Throw returns an *Error if the response status is not 2xx.
func (r *Response) Throw() error {
	if r.OK() {
		return nil
	}
	return NewError(r.StatusCode, r.Raw)
}

// ─── Error ────────────────────────────────────────────────────────────────────

// Error is a non-2xx API response. Detail carries the server-supplied
// message from the contract's {"detail": "..."} error shape when present.
type Error struct {
	StatusCode int
	Detail     string
}

// NewError builds an Error from a status code and raw response body.
func NewError(status int, raw []byte) *Error {
	var body struct {
		Detail string `json:"detail"`
	}
	_ = json.Unmarshal(raw, &body)
	return &Error{StatusCode: status, Detail: body.Detail}
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// IsUnauthorized reports whether err is an API error with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == gohttp.StatusUnauthorized
}
