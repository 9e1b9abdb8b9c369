// Package api is the client for the shop backend's HTTP API.
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

	"github.com/MrJamesThe3rd/tillpad/internal/bill"
	"github.com/MrJamesThe3rd/tillpad/internal/catalog"
	"github.com/MrJamesThe3rd/tillpad/internal/export"
	"github.com/MrJamesThe3rd/tillpad/internal/search"
	"github.com/MrJamesThe3rd/tillpad/internal/stocksheet"
)

const (
	HeaderCSRF        = "X-CSRFToken"
	HeaderRequestedBy = "X-Requested-With"
	requestedBy       = "XMLHttpRequest"

	// maxBody caps how much of a JSON response is read.
	maxBody = 8 << 20
)

var (
	_ bill.Backend       = (*Client)(nil)
	_ search.Source      = (*Client)(nil)
	_ catalog.Backend    = (*Client)(nil)
	_ export.Source      = (*Client)(nil)
	_ stocksheet.Backend = (*Client)(nil)
)

type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client for the backend at baseURL. Without a token
// source the csrf token is read from the backend's landing page.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.tokens == nil {
		c.tokens = NewPageToken(c.url("/", nil), c.http)
	}

	return c, nil
}

func (c *Client) url(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path

	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

// envelope is the status part the backend puts in JSON object bodies.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e envelope) text() string {
	if e.Error != "" {
		return e.Error
	}

	return e.Message
}

// do performs a JSON request. body is encoded when non-nil and the response
// is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, op, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if err := c.check(resp, op, data); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Op: op, Err: err}
	}

	return nil
}

// stream performs a request and hands back the open response on success.
// The caller closes the body.
func (c *Client) stream(ctx context.Context, method, path string) (*http.Response, error) {
	resp, op, err := c.send(ctx, method, path, nil, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))

		return nil, c.check(resp, op, data)
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, string, error) {
	op := method + " " + path

	var reader io.Reader

	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, op, fmt.Errorf("%s: encoding body: %w", op, err)
		}

		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), reader)
	if err != nil {
		return nil, op, fmt.Errorf("%s: creating request: %w", op, err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, op, fmt.Errorf("%s: csrf token: %w", op, err)
	}

	req.Header.Set(HeaderCSRF, token)
	req.Header.Set(HeaderRequestedBy, requestedBy)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "error", err)
		return nil, op, &NetworkError{Op: op, Err: err}
	}

	c.logger.Debug("request", "op", op, "status", resp.StatusCode, "took", time.Since(start))

	return resp, op, nil
}

// check turns failure statuses and success:false bodies into HTTPError.
func (c *Client) check(resp *http.Response, op string, data []byte) error {
	var env envelope

	trimmed := bytes.TrimSpace(data)
	isObject := len(trimmed) > 0 && trimmed[0] == '{'

	if isObject {
		// A body that is not valid JSON is only a problem for 2xx responses,
		// where the decode of the result reports it.
		_ = json.Unmarshal(trimmed, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusForbidden {
			c.invalidateToken()
		}

		return &HTTPError{Op: op, Status: resp.StatusCode, Message: env.text()}
	}

	if env.Success != nil && !*env.Success {
		return &HTTPError{Op: op, Status: resp.StatusCode, Message: env.text()}
	}

	return nil
}

// invalidateToken drops a cached page token so a rejected one is not reused.
func (c *Client) invalidateToken() {
	if inv, ok := c.tokens.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
}
