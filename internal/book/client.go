package book

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"flipfetch/internal/logging"
)

// DefaultUserAgent mimics a desktop browser; the reader serves different
// markup to clients it does not recognize.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client fetches reader documents over HTTP.
type Client struct {
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewClient builds a reader client. A zero timeout falls back to 30 seconds
// and an empty userAgent to DefaultUserAgent.
func NewClient(timeout time.Duration, userAgent string, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logging.NewComponentLogger(logger, "book"),
	}
}

// SetHTTPClient replaces the underlying HTTP client. Tests use it to point
// the client at an httptest server.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.http = client
	}
}

// FetchHTML retrieves the book's reader HTML.
func (c *Client) FetchHTML(ctx context.Context, baseURL string) (string, error) {
	return c.get(ctx, baseURL)
}

// FetchConfig retrieves and parses the book's config.js.
func (c *Client) FetchConfig(ctx context.Context, configURL string) (*Config, error) {
	text, err := c.get(ctx, configURL)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", configURL, err)
	}
	return cfg, nil
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	c.logger.Debug("document fetched",
		logging.String("url", url),
		logging.Int("bytes", len(body)),
		logging.Duration("elapsed", time.Since(start)))
	return string(body), nil
}
