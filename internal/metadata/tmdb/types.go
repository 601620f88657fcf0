package tmdb

// MovieSummary is the card-sized movie record returned by list endpoints
// (popular, similar). An empty PosterPath means the movie has no poster.
type MovieSummary struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date,omitempty"`
	Overview    string  `json:"overview,omitempty"`
}

// RatingPercent returns VoteAverage scaled to 0-100, clamped to that range.
func (m MovieSummary) RatingPercent() float64 {
	p := m.VoteAverage * 10
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// MovieDetail is the full record returned by /movie/{id}.
type MovieDetail struct {
	MovieSummary
	Genres  []Genre `json:"genres"`
	Runtime int     `json:"runtime,omitempty"`
	Tagline string  `json:"tagline,omitempty"`
}

// Genre represents a movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is one entry of /movie/{id}/credits.cast.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path"`
}

// Video is one entry of /movie/{id}/videos.results.
type Video struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// IsYouTubeTrailer reports whether v is a trailer hosted on YouTube.
func (v Video) IsYouTubeTrailer() bool {
	return v.Site == "YouTube" && v.Type == "Trailer"
}

// Review is one entry of /movie/{id}/reviews.results.
type Review struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// pageResponse is the TMDb paginated envelope. Only the first page is ever
// requested.
type pageResponse[T any] struct {
	Page    int `json:"page"`
	Results []T `json:"results"`
}

// creditsResponse wraps /movie/{id}/credits.
type creditsResponse struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
}
