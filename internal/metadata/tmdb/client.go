package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/vadimtrunov/marquee/internal/httpclient"
)

const (
	// DefaultBaseURL is the TMDb v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// DefaultLanguage is sent with every request unless configured otherwise.
	DefaultLanguage = "en-US"

	firstPage       = "1"
	maxErrorBodyLen = 512
)

// Endpoint names reported to the Observer.
const (
	EndpointPopular = "popular"
	EndpointMovie   = "movie"
	EndpointCredits = "credits"
	EndpointVideos  = "videos"
	EndpointReviews = "reviews"
	EndpointSimilar = "similar"
	EndpointOther   = "other"
)

// Outcomes reported to the Observer.
const (
	OutcomeOK        = "ok"
	OutcomeHTTPError = "http_error"
	OutcomeNetwork   = "network_error"
	OutcomeParse     = "parse_error"
	OutcomeCanceled  = "canceled"
)

// Observer receives one notification per upstream call.
type Observer interface {
	ObserveUpstream(endpoint, outcome string, elapsed time.Duration)
}

// Config holds the settings needed to talk to TMDb.
type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithObserver reports every upstream call to o.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(h *httpclient.Client) Option {
	return func(c *Client) { c.http = h }
}

// Client is a TMDb API v3 client. It never caches and never retries.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	http     *httpclient.Client
	observer Observer
	logger   *slog.Logger
}

// New creates a new TMDb client. It fails fast when no API key is configured.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	httpCfg := httpclient.DefaultConfig()
	if cfg.Timeout > 0 {
		httpCfg.Timeout = cfg.Timeout
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		http:     httpclient.New(httpCfg, logger),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PopularMovies returns the first page of /movie/popular in API order.
func (c *Client) PopularMovies(ctx context.Context) ([]MovieSummary, error) {
	var resp pageResponse[MovieSummary]
	params := url.Values{"page": {firstPage}}
	if err := c.fetch(ctx, EndpointPopular, "/movie/popular", params, &resp); err != nil {
		return nil, fmt.Errorf("popular movies: %w", err)
	}
	return resp.Results, nil
}

// Movie retrieves full details for a movie. A 404 from the API, or a body
// without an id, is reported as ErrNotFound.
func (c *Client) Movie(ctx context.Context, id int) (*MovieDetail, error) {
	var details MovieDetail
	path := fmt.Sprintf("/movie/%d", id)
	if err := c.fetch(ctx, EndpointMovie, path, nil, &details); err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, notFound(err))
	}
	if details.ID == 0 {
		return nil, fmt.Errorf("get movie %d: %w", id, ErrNotFound)
	}
	return &details, nil
}

// notFound marks a 404 on a per-movie path as ErrNotFound. The
// *NetworkError stays reachable through errors.As.
func notFound(err error) error {
	var netErr *NetworkError
	if errors.As(err, &netErr) && netErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

// Credits returns the full cast list of a movie in billing order. Like the
// other per-movie lookups, an unknown id is reported as ErrNotFound.
func (c *Client) Credits(ctx context.Context, id int) ([]CastMember, error) {
	var resp creditsResponse
	path := fmt.Sprintf("/movie/%d/credits", id)
	if err := c.fetch(ctx, EndpointCredits, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get credits for %d: %w", id, notFound(err))
	}
	return resp.Cast, nil
}

// Videos returns every video attached to a movie.
func (c *Client) Videos(ctx context.Context, id int) ([]Video, error) {
	var resp pageResponse[Video]
	path := fmt.Sprintf("/movie/%d/videos", id)
	if err := c.fetch(ctx, EndpointVideos, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get videos for %d: %w", id, notFound(err))
	}
	return resp.Results, nil
}

// Reviews returns the first page of reviews for a movie.
func (c *Client) Reviews(ctx context.Context, id int) ([]Review, error) {
	var resp pageResponse[Review]
	path := fmt.Sprintf("/movie/%d/reviews", id)
	if err := c.fetch(ctx, EndpointReviews, path, url.Values{"page": {firstPage}}, &resp); err != nil {
		return nil, fmt.Errorf("get reviews for %d: %w", id, notFound(err))
	}
	return resp.Results, nil
}

// Similar returns the first page of movies similar to the given one, in API order.
func (c *Client) Similar(ctx context.Context, id int) ([]MovieSummary, error) {
	var resp pageResponse[MovieSummary]
	path := fmt.Sprintf("/movie/%d/similar", id)
	if err := c.fetch(ctx, EndpointSimilar, path, url.Values{"page": {firstPage}}, &resp); err != nil {
		return nil, fmt.Errorf("get similar for %d: %w", id, notFound(err))
	}
	return resp.Results, nil
}

// Get performs an authenticated GET against an arbitrary API path and decodes
// the JSON body into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.fetch(ctx, EndpointOther, path, params, out)
}

// fetch performs one authenticated GET request and decodes the JSON response.
func (c *Client) fetch(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	start := time.Now()
	outcome := OutcomeOK
	defer func() {
		if c.observer != nil {
			c.observer.ObserveUpstream(endpoint, outcome, time.Since(start))
		}
	}()

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		outcome = OutcomeNetwork
		return &NetworkError{Path: path, Err: fmt.Errorf("invalid URL: %w", err)}
	}

	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		outcome = OutcomeNetwork
		return &NetworkError{Path: path, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			outcome = OutcomeCanceled
			return fmt.Errorf("tmdb %s: %w", path, err)
		}
		outcome = OutcomeNetwork
		return &NetworkError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = OutcomeHTTPError
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		c.logger.Warn("tmdb API error",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return &NetworkError{Path: path, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			outcome = OutcomeCanceled
			return fmt.Errorf("tmdb %s: %w", path, err)
		}
		outcome = OutcomeNetwork
		return &NetworkError{Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		outcome = OutcomeParse
		return &ParseError{Path: path, Err: err}
	}
	return nil
}
