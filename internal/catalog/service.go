package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vadimtrunov/marquee/internal/core"
	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

// Service loads and shapes movie data for the views.
type Service struct {
	src    core.MovieSource
	logger *slog.Logger
}

// New creates a catalog Service backed by src.
func New(src core.MovieSource, logger *slog.Logger) *Service {
	if src == nil {
		panic("catalog.New: src must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{src: src, logger: logger}
}

// Popular returns the first page of popular movies ordered by rating.
func (s *Service) Popular(ctx context.Context) ([]tmdb.MovieSummary, error) {
	movies, err := s.src.PopularMovies(ctx)
	if err != nil {
		s.logFailure("load popular movies", err)
		return nil, fmt.Errorf("load popular movies: %w", err)
	}
	return SortByRatingDescending(movies), nil
}

// Detail loads everything the detail view shows for one movie. The five
// upstream calls run concurrently. The first failure cancels the others and
// fails the whole load; no partial record is ever returned. An unknown id
// is always reported as tmdb.ErrNotFound.
func (s *Service) Detail(ctx context.Context, id int) (*Detail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("load movie %d: %w", id, tmdb.ErrNotFound)
	}

	var (
		movie   *tmdb.MovieDetail
		cast    []tmdb.CastMember
		videos  []tmdb.Video
		reviews []tmdb.Review
		similar []tmdb.MovieSummary
		// movieErr is read after Wait so an unknown id wins over
		// whichever sibling call failed first.
		movieErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		movie, movieErr = s.src.Movie(gctx, id)
		return movieErr
	})
	g.Go(func() (err error) {
		cast, err = s.src.Credits(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		videos, err = s.src.Videos(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		reviews, err = s.src.Reviews(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		similar, err = s.src.Similar(gctx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(movieErr, tmdb.ErrNotFound) {
			err = movieErr
		}
		s.logFailure("load movie detail", err, slog.Int("movie_id", id))
		return nil, fmt.Errorf("load movie %d: %w", id, err)
	}
	if movie == nil {
		return nil, fmt.Errorf("load movie %d: %w", id, tmdb.ErrNotFound)
	}

	return &Detail{
		Movie:   *movie,
		Cast:    TopCast(cast),
		Trailer: FirstTrailer(videos),
		Reviews: orEmpty(reviews),
		Similar: SortByRatingDescending(similar),
	}, nil
}

// logFailure records a load error. Cancellations are expected when a view
// goes away, so they stay at debug level.
func (s *Service) logFailure(msg string, err error, attrs ...slog.Attr) {
	level := slog.LevelError
	switch {
	case errors.Is(err, context.Canceled):
		level = slog.LevelDebug
	case errors.Is(err, tmdb.ErrNotFound):
		level = slog.LevelInfo
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(context.Background(), level, msg, attrs...)
}
