package rig

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dysperse/rigpanel/common"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id so client and server logs can be
// matched up.
const RequestIDHeader = "X-Request-ID"

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: server answered %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error {
	return common.ErrUnexpectedStatus
}

// Client is a rig server client. It is safe for concurrent use.
type Client struct {
	base  string
	http  *http.Client
	token string
	log   common.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l common.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for the server at base, e.g. "http://192.168.1.44:5000".
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: common.RequestTimeout},
		log:  common.GetLogger().With("rig"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server base address.
func (c *Client) BaseURL() string {
	return c.base
}

// Status probes the server.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	res, err := c.do(ctx, http.MethodGet, "/", nil, nil)
	if err != nil {
		return st, err
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("decode status: %w", err)
	}
	return st, nil
}

// Online reports whether the status probe succeeds and says ONLINE.
// Every failure, including a malformed body, counts as offline.
func (c *Client) Online(ctx context.Context) bool {
	st, err := c.Status(ctx)
	if err != nil {
		c.log.Debug("status probe failed: %v", err)
		return false
	}
	return st.Online()
}

// SetColor sets the RGB strip color. value may carry a leading '#'.
func (c *Client) SetColor(ctx context.Context, value string) error {
	hex, err := NormalizeColor(value)
	if err != nil {
		return err
	}
	return c.get(ctx, "/set-rgb-color", url.Values{"value": {hex}})
}

// SetStyle sets the RGB strip animation style.
func (c *Client) SetStyle(ctx context.Context, style Style) error {
	if _, err := ParseStyle(string(style)); err != nil {
		return err
	}
	return c.get(ctx, "/set-rgb-style", url.Values{"value": {string(style)}})
}

// SendAmbient sends a raw ambient lighting command.
func (c *Client) SendAmbient(ctx context.Context, command string) error {
	if command == "" {
		return fmt.Errorf("%w: empty command", common.ErrUnknownScene)
	}
	return c.get(ctx, "/ambient_lighting", url.Values{"value": {command}})
}

// TriggerLock is the manual lock/unlock override.
func (c *Client) TriggerLock(ctx context.Context, event EventType) error {
	if _, err := ParseEventType(string(event)); err != nil {
		return err
	}
	return c.get(ctx, "/lock_event", url.Values{"eventType": {string(event)}})
}

// NotifyLock posts a power event to the server.
func (c *Client) NotifyLock(ctx context.Context, event EventType) error {
	if _, err := ParseEventType(string(event)); err != nil {
		return err
	}
	body, err := json.Marshal(struct {
		EventType EventType `json:"event_type"`
	}{event})
	if err != nil {
		return err
	}

	res, err := c.do(ctx, http.MethodPost, "/lock_event", nil, body)
	if err != nil {
		return err
	}
	drain(res)
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) error {
	res, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return err
	}
	drain(res)
	return nil
}

// do sends one request. Transport failures wrap ErrServerUnreachable and
// non-2xx answers come back as *StatusError with the body already closed.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte) (*http.Response, error) {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s: %v", common.ErrServerUnreachable, method, path, err)
	}
	c.log.Debug("%s %s -> %d in %v (id %s)", method, path, res.StatusCode, time.Since(start).Round(time.Millisecond), reqID)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		drain(res)
		return nil, &StatusError{Method: method, Path: path, Code: res.StatusCode}
	}
	return res, nil
}

// drain discards a bounded amount of the body so the connection can be reused.
func drain(res *http.Response) {
	io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
	res.Body.Close()
}
