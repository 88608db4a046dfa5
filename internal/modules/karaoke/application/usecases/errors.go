package usecases

import "errors"

var (
	// ErrSongLookupDisabled is returned when no song searcher is configured.
	ErrSongLookupDisabled = errors.New("song lookup is not configured")

	// ErrNoResults is returned when a song search yields no results.
	ErrNoResults = errors.New("no results found")

	// ErrInvalidPosition is returned when a displayed queue position does not exist.
	ErrInvalidPosition = errors.New("invalid queue position")
)
