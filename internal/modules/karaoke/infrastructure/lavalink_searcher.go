package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
)

// defaultSearchPrefix selects the Lavalink search source for plain queries.
const defaultSearchPrefix = "ytsearch:"

// Ensure LavalinkSongSearcher implements ports.SongSearcher.
var _ ports.SongSearcher = (*LavalinkSongSearcher)(nil)

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	Address  string
	Password string
	Secure   bool
}

// LavalinkSongSearcher searches backing tracks through a Lavalink node.
// It never joins voice; only the REST track loader is used.
type LavalinkSongSearcher struct {
	link disgolink.Client
}

// NewLavalinkSongSearcher connects to a Lavalink node on behalf of botID.
func NewLavalinkSongSearcher(
	ctx context.Context,
	botID snowflake.ID,
	config LavalinkConfig,
) (*LavalinkSongSearcher, error) {
	link := disgolink.New(botID)

	node, err := link.AddNode(ctx, disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return &LavalinkSongSearcher{link: link}, nil
}

// SearchSongs loads tracks matching the query.
func (s *LavalinkSongSearcher) SearchSongs(ctx context.Context, query string) ([]ports.SongInfo, error) {
	node := s.link.BestNode()
	if node == nil {
		return nil, fmt.Errorf("no available Lavalink node")
	}

	result, err := node.LoadTracks(ctx, searchIdentifier(query))
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	if exception, ok := result.Data.(lavalink.Exception); ok {
		return nil, fmt.Errorf("lavalink search failed: %s", exception.Message)
	}

	return songsFromLoadResult(result), nil
}

// Close disconnects from all nodes.
func (s *LavalinkSongSearcher) Close() {
	s.link.Close()
}

// searchIdentifier prefixes plain queries with the search source.
// URLs and already-prefixed queries are passed through.
func searchIdentifier(query string) string {
	query = strings.TrimSpace(query)
	if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
		return query
	}
	if prefix, _, ok := strings.Cut(query, ":"); ok && strings.HasSuffix(prefix, "search") {
		return query
	}
	return defaultSearchPrefix + query
}

// songsFromLoadResult flattens a load result into a list of songs.
func songsFromLoadResult(result *lavalink.LoadResult) []ports.SongInfo {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return []ports.SongInfo{convertSong(data)}

	case lavalink.Playlist:
		songs := make([]ports.SongInfo, len(data.Tracks))
		for i, track := range data.Tracks {
			songs[i] = convertSong(track)
		}
		return songs

	case lavalink.Search:
		songs := make([]ports.SongInfo, len(data))
		for i, track := range data {
			songs[i] = convertSong(track)
		}
		return songs

	default:
		return []ports.SongInfo{}
	}
}

func convertSong(track lavalink.Track) ports.SongInfo {
	info := track.Info
	uri := ""
	if info.URI != nil {
		uri = *info.URI
	}

	return ports.SongInfo{
		Title:    info.Title,
		Artist:   info.Author,
		URI:      uri,
		Duration: time.Duration(info.Length) * time.Millisecond,
		IsStream: info.IsStream,
	}
}
