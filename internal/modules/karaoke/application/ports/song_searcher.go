package ports

import (
	"context"
	"time"
)

// SongInfo is one search hit for a backing track.
type SongInfo struct {
	Title    string
	Artist   string
	URI      string
	Duration time.Duration
	IsStream bool
}

// SongSearcher searches a music source for backing tracks.
type SongSearcher interface {
	SearchSongs(ctx context.Context, query string) ([]SongInfo, error)
}
