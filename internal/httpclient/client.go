package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds every upstream request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Config holds timeout and header configuration.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   DefaultTimeout,
		UserAgent: "marquee/1.0",
	}
}

// Client wraps http.Client with a bounded timeout and request logging.
// Each call to Do issues exactly one outbound request; there is no retry.
type Client struct {
	http   *http.Client
	config Config
	logger *slog.Logger
}

// New creates a new Client with a default http.Client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout}, logger)
}

// NewWithHTTPClient creates a Client with a custom http.Client (e.g. for tests
// that need a specific transport).
func NewWithHTTPClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:   httpClient,
		config: cfg,
		logger: logger,
	}
}

// Timeout returns the per-request timeout in effect.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// Do executes a single HTTP request. A context cancellation is returned as-is
// so callers can tell it apart from a transport failure.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.config.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, ctxErr
		}
		// url.Error embeds the raw URL, secrets included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		c.logger.Debug("request failed",
			slog.String("method", req.Method),
			slog.String("url", RedactURL(req.URL)),
			slog.String("elapsed", elapsed.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%s %s: %w", req.Method, RedactURL(req.URL), err)
	}

	c.logger.Debug("request completed",
		slog.String("method", req.Method),
		slog.String("url", RedactURL(req.URL)),
		slog.Int("status", resp.StatusCode),
		slog.String("elapsed", elapsed.String()),
	)
	return resp, nil
}

// sensitiveParams are query parameters never written to logs or errors.
var sensitiveParams = []string{"api_key", "token", "access_token"}

// RedactURL renders u with credentials and secret query values masked.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	clean := *u
	clean.User = nil
	q := clean.Query()
	for _, p := range sensitiveParams {
		if q.Has(p) {
			q.Set(p, "***")
		}
	}
	clean.RawQuery = q.Encode()
	return clean.String()
}
