package tmdb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the API answered but the primary record is missing.
	ErrNotFound = errors.New("tmdb: not found")

	// ErrMissingAPIKey is returned by New when no credential is configured.
	ErrMissingAPIKey = errors.New("tmdb: api key is required")
)

// NetworkError reports a transport failure, a timeout, or a non-2xx answer.
// StatusCode is zero when no response was received.
type NetworkError struct {
	Path       string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tmdb %s: HTTP %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("tmdb %s: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a response body that is not valid JSON for the
// expected shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tmdb %s: decode response: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
