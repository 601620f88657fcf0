// Package mcp exposes the movie catalog as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/goccy/go-json"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/marquee/internal/catalog"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

// Catalog is the view-model the tools expose.
type Catalog interface {
	Popular(ctx context.Context) ([]tmdb.MovieSummary, error)
	Detail(ctx context.Context, id int) (*catalog.Detail, error)
}

// Server wraps an MCP SDK server with Marquee tool handlers.
type Server struct {
	server  *mcpsdk.Server
	catalog Catalog
	logger  *slog.Logger
}

// NewServer creates an MCP server with the catalog tools registered.
func NewServer(c Catalog, version string, logger *slog.Logger) *Server {
	if c == nil {
		panic("mcp.NewServer: catalog must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "marquee",
			Version: version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{server: s, catalog: c, logger: logger}
	srv.registerTools()
	return srv
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying MCP SDK server (for testing).
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

func (s *Server) registerTools() {
	s.server.AddTool(popularMoviesTool(), s.handlePopularMovies)
	s.server.AddTool(movieDetailsTool(), s.handleMovieDetails)
}

func popularMoviesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "popular_movies",
		Description: "List currently popular movies from TMDb, highest rated first. Returns ids, titles, ratings and poster URLs.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Optional maximum number of movies to return",
				},
			},
		},
	}
}

func movieDetailsTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "movie_details",
		Description: "Get the full detail view of a movie by its TMDb ID: genres, rating, top 10 cast, YouTube trailer, review excerpts and similar movies.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"tmdb_id": map[string]any{
					"type":        "integer",
					"description": "The TMDb ID of the movie",
				},
			},
			"required": []any{"tmdb_id"},
		},
	}
}

// movieCard is a popular list entry with its poster resolved.
type movieCard struct {
	tmdb.MovieSummary
	PosterURL string  `json:"poster_url,omitempty"`
	Rating    float64 `json:"rating_percent"`
}

// reviewExcerpt is a review as shown in the detail view.
type reviewExcerpt struct {
	Author  string `json:"author"`
	Excerpt string `json:"excerpt"`
	URL     string `json:"url,omitempty"`
}

// detailResult is the movie_details payload.
type detailResult struct {
	Movie      tmdb.MovieDetail    `json:"movie"`
	PosterURL  string              `json:"poster_url,omitempty"`
	Cast       []tmdb.CastMember   `json:"cast"`
	TrailerURL string              `json:"trailer_url,omitempty"`
	Reviews    []reviewExcerpt     `json:"reviews"`
	Similar    []tmdb.MovieSummary `json:"similar"`
}

func (s *Server) handlePopularMovies(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	limit, err := optionalInt(req.Params.Arguments, "limit")
	if err != nil {
		return toolError(err.Error()), nil
	}

	movies, err := s.catalog.Popular(ctx)
	if err != nil {
		return toolError(fmt.Sprintf("%s %v", catalog.MsgListFailed, err)), nil
	}
	if limit > 0 && len(movies) > limit {
		movies = movies[:limit]
	}

	cards := make([]movieCard, len(movies))
	for i, m := range movies {
		cards[i] = movieCard{
			MovieSummary: m,
			PosterURL:    tmdb.ImageURL(m.PosterPath, tmdb.SizePoster),
			Rating:       m.RatingPercent(),
		}
	}
	return toolJSON(cards)
}

func (s *Server) handleMovieDetails(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	tmdbID, err := extractIntFromArgs(req.Params.Arguments, "tmdb_id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	d, err := s.catalog.Detail(ctx, tmdbID)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			return toolError(catalog.MsgNotFound), nil
		}
		return toolError(fmt.Sprintf("%s %v", catalog.MsgDetailFailed, err)), nil
	}

	out := detailResult{
		Movie:     d.Movie,
		PosterURL: tmdb.ImageURL(d.Movie.PosterPath, tmdb.SizePoster),
		Cast:      d.Cast,
		Reviews:   make([]reviewExcerpt, len(d.Reviews)),
		Similar:   d.Similar,
	}
	if d.Trailer != nil {
		out.TrailerURL = tmdb.YouTubeWatchURL(d.Trailer.Key)
	}
	for i, r := range d.Reviews {
		out.Reviews[i] = reviewExcerpt{
			Author:  r.Author,
			Excerpt: catalog.Excerpt(r.Content, catalog.ExcerptLen),
			URL:     r.URL,
		}
	}
	return toolJSON(out)
}

// Helper functions.

var errArgRequired = errors.New("is required")

// toolJSON marshals v to JSON and returns it as text content.
func toolJSON(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

// toolError returns a tool result indicating an error.
func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}

// extractIntFromArgs extracts an integer argument from raw JSON arguments.
func extractIntFromArgs(raw []byte, key string) (int, error) {
	var args map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return 0, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	val, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s %w", key, errArgRequired)
	}

	switch v := val.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, val)
	}
}

// optionalInt is extractIntFromArgs for arguments that may be omitted, in
// which case it returns zero.
func optionalInt(raw []byte, key string) (int, error) {
	n, err := extractIntFromArgs(raw, key)
	if errors.Is(err, errArgRequired) {
		return 0, nil
	}
	return n, err
}
