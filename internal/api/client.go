// Package api is the HTTP adapter for the notes backend. It is the only place
// that knows endpoint paths and wire field names.
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
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/errs"
)

// UpdateStrategy selects how UpdateNote modifies a note.
type UpdateStrategy int

const (
	// UpdateRecreate creates a new note and then deletes the old one. The note
	// gets a new id. Not idempotent: at most once per attempt.
	UpdateRecreate UpdateStrategy = iota
	// UpdateReplace issues a single idempotent PUT /notes/{id}.
	UpdateReplace
)

// ParseUpdateStrategy maps "recreate"/"replace" to a strategy.
func ParseUpdateStrategy(s string) (UpdateStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "recreate":
		return UpdateRecreate, nil
	case "replace":
		return UpdateReplace, nil
	}
	return 0, fmt.Errorf("unknown update strategy %q", s)
}

func (s UpdateStrategy) String() string {
	if s == UpdateReplace {
		return "replace"
	}
	return "recreate"
}

// Client talks to the notes backend.
type Client struct {
	base     *url.URL
	http     *http.Client
	log      *zap.Logger
	strategy UpdateStrategy
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped, not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithUpdateStrategy fixes the strategy UpdateNote uses for this client.
func WithUpdateStrategy(s UpdateStrategy) Option {
	return func(c *Client) { c.strategy = s }
}

// New constructs a Client for baseURL. Every request carries the token held by tokens.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url: unsupported scheme %q", u.Scheme)
	}
	if tokens == nil {
		return nil, errors.New("nil token source")
	}

	c := &Client{base: u, http: &http.Client{}, log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}

	next := c.http.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	wrapped := *c.http
	wrapped.Transport = &bearerTransport{
		tokens: tokens,
		next:   &loggingTransport{next: next, log: c.log},
	}
	c.http = &wrapped
	return c, nil
}

// Strategy returns the update strategy fixed at construction.
func (c *Client) Strategy() UpdateStrategy { return c.strategy }

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// doJSON sends body (JSON-encoded when non-nil) and decodes a 2xx response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// doForm sends an application/x-www-form-urlencoded body.
func (c *Client) doForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", errs.ErrNetwork, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(req, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", errs.ErrNetwork, req.Method, req.URL.Path, err)
	}
	return nil
}

// decodeAPIError reads FastAPI-style {"detail": "..."} or {"error": "..."} bodies.
func decodeAPIError(req *http.Request, resp *http.Response) error {
	ae := &errs.APIError{Method: req.Method, Path: req.URL.Path, Status: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil {
		var s string
		switch {
		case len(body.Detail) > 0 && json.Unmarshal(body.Detail, &s) == nil:
			ae.Detail = s
		case len(body.Detail) > 0:
			// validation errors arrive as a list of objects
			ae.Detail = string(body.Detail)
		default:
			ae.Detail = body.Error
		}
	}
	return ae
}
