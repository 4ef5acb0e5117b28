// Package leaderboard fetches the ranked completion-time list from the
// leaderboard endpoint, renders it as text, and serves that endpoint.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultPath is the endpoint path the client requests.
const DefaultPath = "/api/leaderboards"

// Entry is one ranked row. Order is decided by the server.
type Entry struct {
	Username string `json:"username"`
	Time     string `json:"time"`
}

// Client performs leaderboard requests. It does not retry or cache.
type Client struct {
	baseURL string
	path    string
	http    *http.Client
	logger  *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithPath overrides the endpoint path.
func WithPath(p string) ClientOption {
	return func(c *Client) {
		if p != "" {
			c.path = p
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the request timeout on the HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			clone := *c.http
			clone.Timeout = d
			c.http = &clone
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    DefaultPath,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the full endpoint URL.
func (c *Client) URL() string {
	return c.baseURL + "/" + strings.TrimLeft(c.path, "/")
}

// Fetch performs a single GET and decodes the ranked list.
func (c *Client) Fetch(ctx context.Context) ([]Entry, error) {
	endpoint := c.URL()
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("leaderboard: bad endpoint %q: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("error fetching leaderboards data", "url", endpoint, "error", err)
		return nil, fmt.Errorf("leaderboard: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		//nolint:errcheck // Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		c.logger.Error("error fetching leaderboards data", "url", endpoint, "status", resp.StatusCode)
		return nil, fmt.Errorf("leaderboard: unexpected status %s", resp.Status)
	}

	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		c.logger.Error("error decoding leaderboards data", "url", endpoint, "error", err)
		return nil, fmt.Errorf("leaderboard: decode: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
