// Package plotclient fetches projections from the /plot endpoint.
package plotclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/fireplot/internal/projection"
)

const (
	plotPath    = "/plot"
	maxBodySize = 8 << 20 // 8 MB
	userAgent   = "github.com/theirongolddev/fireplot/1.0"
)

// Client issues projection requests against a calculator server.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient creates a client for the server at baseURL.
// Returns an error if baseURL is empty or not absolute.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("plotclient: server URL is empty")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("plotclient: server URL %q must start with http:// or https://", baseURL)
	}

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the request URL for an encoded query string.
func (c *Client) URL(query string) string {
	if query == "" {
		return c.baseURL + plotPath
	}
	return c.baseURL + plotPath + "?" + query
}

// Fetch performs one GET /plot?query and decodes the JSON body.
// It does not validate the payload shape.
func (c *Client) Fetch(ctx context.Context, query string) (*projection.Response, error) {
	body, err := c.get(ctx, c.URL(query))
	if err != nil {
		return nil, err
	}

	resp, err := projection.Decode(body)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return resp, nil
}

// get performs the GET request and returns the response body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	//nolint:gosec // URL is built from the configured server
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// A truncated or unreadable body still yields a status error.
		return nil, newHTTPStatusError(resp.StatusCode, string(body))
	}
	if readErr != nil {
		return nil, &NetworkError{Err: fmt.Errorf("reading response: %w", readErr)}
	}
	return body, nil
}
