package core

import (
	"context"

	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

// MovieSource defines the upstream metadata calls the view-models depend on.
// *tmdb.Client is the production implementation.
type MovieSource interface {
	// PopularMovies returns the first page of popular movies in API order
	PopularMovies(ctx context.Context) ([]tmdb.MovieSummary, error)

	// Movie returns full details, or an error wrapping tmdb.ErrNotFound
	Movie(ctx context.Context, id int) (*tmdb.MovieDetail, error)

	// Credits returns the cast in billing order
	Credits(ctx context.Context, id int) ([]tmdb.CastMember, error)

	// Videos returns every video attached to the movie
	Videos(ctx context.Context, id int) ([]tmdb.Video, error)

	// Reviews returns the first page of reviews
	Reviews(ctx context.Context, id int) ([]tmdb.Review, error)

	// Similar returns the first page of similar movies in API order
	Similar(ctx context.Context, id int) ([]tmdb.MovieSummary, error)
}

// Frontend defines the interface for long-running views (web, Telegram)
type Frontend interface {
	// Start runs the frontend until ctx is canceled
	Start(ctx context.Context) error

	// Name returns the frontend name (e.g., "web", "telegram")
	Name() string
}

// compile-time check.
var _ MovieSource = (*tmdb.Client)(nil)
