// Package catalog holds the view-models shared by every Marquee frontend:
// rating-ordered movie lists and the aggregated movie detail record.
package catalog

import (
	"cmp"
	"slices"

	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

// SortByRatingDescending returns a new slice ordered by VoteAverage, highest
// first. Equal ratings are ordered by ascending ID so the result never
// depends on input order. The input slice is not modified.
func SortByRatingDescending(movies []tmdb.MovieSummary) []tmdb.MovieSummary {
	sorted := make([]tmdb.MovieSummary, len(movies))
	copy(sorted, movies)
	slices.SortFunc(sorted, compareByRating)
	return sorted
}

func compareByRating(a, b tmdb.MovieSummary) int {
	if c := cmp.Compare(b.VoteAverage, a.VoteAverage); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
