package infrastructure

import (
	"testing"
	"time"

	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/stretchr/testify/assert"
)

func lavalinkTrack(title, uri string, stream bool) lavalink.Track {
	return lavalink.Track{
		Encoded: "encoded-" + title,
		Info: lavalink.TrackInfo{
			Identifier: title,
			Title:      title,
			Author:     "Sing King",
			Length:     180000,
			IsStream:   stream,
			URI:        &uri,
		},
	}
}

func TestSearchIdentifier(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{query: "hello adele karaoke", want: "ytsearch:hello adele karaoke"},
		{query: "  creep ", want: "ytsearch:creep"},
		{query: "https://youtu.be/abc", want: "https://youtu.be/abc"},
		{query: "scsearch:creep", want: "scsearch:creep"},
		{query: "song: the remix", want: "ytsearch:song: the remix"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, searchIdentifier(tt.query))
		})
	}
}

func TestSongsFromLoadResult(t *testing.T) {
	tests := []struct {
		name      string
		result    *lavalink.LoadResult
		wantTitle []string
	}{
		{
			name: "single track",
			result: &lavalink.LoadResult{
				LoadType: lavalink.LoadTypeTrack,
				Data:     lavalinkTrack("Hello", "https://a", false),
			},
			wantTitle: []string{"Hello"},
		},
		{
			name: "search results",
			result: &lavalink.LoadResult{
				LoadType: lavalink.LoadTypeSearch,
				Data: lavalink.Search{
					lavalinkTrack("One", "https://1", false),
					lavalinkTrack("Two", "https://2", true),
				},
			},
			wantTitle: []string{"One", "Two"},
		},
		{
			name: "playlist",
			result: &lavalink.LoadResult{
				LoadType: lavalink.LoadTypePlaylist,
				Data: lavalink.Playlist{
					Info:   lavalink.PlaylistInfo{Name: "Karaoke Hits"},
					Tracks: []lavalink.Track{lavalinkTrack("Three", "https://3", false)},
				},
			},
			wantTitle: []string{"Three"},
		},
		{
			name:      "empty",
			result:    &lavalink.LoadResult{LoadType: lavalink.LoadTypeEmpty, Data: lavalink.Empty{}},
			wantTitle: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			songs := songsFromLoadResult(tt.result)

			titles := make([]string, len(songs))
			for i, s := range songs {
				titles[i] = s.Title
			}
			assert.Equal(t, tt.wantTitle, titles)
		})
	}
}

func TestConvertSong(t *testing.T) {
	song := convertSong(lavalinkTrack("Hello", "https://a", true))

	assert.Equal(t, "Hello", song.Title)
	assert.Equal(t, "Sing King", song.Artist)
	assert.Equal(t, "https://a", song.URI)
	assert.Equal(t, 3*time.Minute, song.Duration)
	assert.True(t, song.IsStream)

	noURI := lavalinkTrack("Bare", "", false)
	noURI.Info.URI = nil
	assert.Empty(t, convertSong(noURI).URI)
}
