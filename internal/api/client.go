// internal/api/client.go
//
// JSON client for the external student registry.
//
// Context
// -------
// Every outgoing backend call goes through `Client.Do`.  It builds the
// request, runs it through `Authorize` with whatever token the caller's
// TokenSource yields, records Prometheus metrics, and decodes the response.
// Non-2xx answers become `*Error`.
//
// Notes
// -----
//   • No retries and no token refresh.  A stale token comes back as a plain
//     `*Error` with the backend's status.
//   • `op` is a short metric label ("login", "students.list", …).
//   • Path segments supplied by callers must already be escaped.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/yanizio/studentdesk/internal/logger"
	"github.com/yanizio/studentdesk/internal/metrics"
)

// TokenSource yields the bearer token for the current caller, if any.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Client talks JSON to the backend under one base URL.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens TokenSource
}

// Option tweaks a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New parses baseURL and returns a Client.  tokens may be nil for
// anonymous use.
func New(baseURL string, timeout time.Duration, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Do sends method path with in encoded as JSON (nil for no body) and decodes
// a 2xx body into out (nil to discard).
func (c *Client) Do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode %s: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	target := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("api: build %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		if tok, ok := c.tokens.Token(ctx); ok {
			req = Authorize(req, tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.APIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(op, "0").Inc()
		logger.FromContext(ctx).Warnw("api transport failure", "op", op, "err", err)
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()
	metrics.APIRequestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		e := &Error{
			Op:      op,
			Status:  resp.StatusCode,
			Message: extractMessage(resp.Header.Get("Content-Type"), raw),
		}
		logger.FromContext(ctx).Infow("api error", "op", op, "status", e.Status, "message", e.Message)
		return e
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("api: decode %s: %w", op, err)
	}
	return nil
}
