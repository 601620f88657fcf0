package catalog

import (
	"errors"

	"github.com/vadimtrunov/marquee/internal/metadata/tmdb"
)

const (
	// MaxCast is how many cast members a detail record keeps.
	MaxCast = 10
	// ExcerptLen is the rune length of a review excerpt.
	ExcerptLen = 200
)

// Messages shown by every view when a load fails or has nothing to show.
const (
	MsgNotFound     = "Movie not found."
	MsgListFailed   = "Failed to load movies."
	MsgDetailFailed = "Failed to load movie details."
	MsgNoReviews    = "No reviews available."
)

// DetailFailureMessage maps a Service.Detail error to the message a view
// shows in place of the detail.
func DetailFailureMessage(err error) string {
	if errors.Is(err, tmdb.ErrNotFound) {
		return MsgNotFound
	}
	return MsgDetailFailed
}

// Detail is the aggregated record behind a movie detail view.
type Detail struct {
	Movie   tmdb.MovieDetail    `json:"movie"`
	Cast    []tmdb.CastMember   `json:"cast"`
	Trailer *tmdb.Video         `json:"trailer,omitempty"`
	Reviews []tmdb.Review       `json:"reviews"`
	Similar []tmdb.MovieSummary `json:"similar"`
}

// TopCast returns the first MaxCast members in their original order.
func TopCast(cast []tmdb.CastMember) []tmdb.CastMember {
	n := min(len(cast), MaxCast)
	out := make([]tmdb.CastMember, n)
	copy(out, cast[:n])
	return out
}

// FirstTrailer returns the first YouTube trailer, or nil when none exists.
func FirstTrailer(videos []tmdb.Video) *tmdb.Video {
	for i := range videos {
		if videos[i].IsYouTubeTrailer() {
			v := videos[i]
			return &v
		}
	}
	return nil
}

// Excerpt shortens s to n runes and marks the cut with "...".
// Strings that already fit are returned unchanged.
func Excerpt(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
