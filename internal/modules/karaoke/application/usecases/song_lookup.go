package usecases

import (
	"context"
	"strings"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
)

// MaxSuggestions is the most choices Discord accepts in an autocomplete response.
const MaxSuggestions = 25

// DefaultSearchSuffix is appended to searches so they favor karaoke versions.
const DefaultSearchSuffix = "karaoke"

// SuggestInput contains the input for the Suggest use case.
type SuggestInput struct {
	Query string
	Limit int // Optional, defaults to MaxSuggestions
}

// SuggestOutput contains the result of the Suggest use case.
type SuggestOutput struct {
	Songs []ports.SongInfo
}

// SongLookupService searches for karaoke backing tracks.
type SongLookupService struct {
	searcher ports.SongSearcher
	suffix   string
}

// NewSongLookupService creates a new SongLookupService.
// An empty suffix disables the karaoke suffix.
func NewSongLookupService(searcher ports.SongSearcher, suffix string) *SongLookupService {
	return &SongLookupService{
		searcher: searcher,
		suffix:   strings.TrimSpace(suffix),
	}
}

// Suggest returns backing track suggestions for a partial song query.
func (s *SongLookupService) Suggest(ctx context.Context, input SuggestInput) (*SuggestOutput, error) {
	if s.searcher == nil {
		return nil, ErrSongLookupDisabled
	}

	limit := input.Limit
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	songs, err := s.searcher.SearchSongs(ctx, s.searchQuery(input.Query))
	if err != nil {
		return nil, err
	}
	if len(songs) > limit {
		songs = songs[:limit]
	}

	return &SuggestOutput{Songs: songs}, nil
}

// BestMatch returns the first backing track found for a song.
func (s *SongLookupService) BestMatch(
	ctx context.Context,
	song, artist string,
) (ports.SongInfo, error) {
	if s.searcher == nil {
		return ports.SongInfo{}, ErrSongLookupDisabled
	}

	songs, err := s.searcher.SearchSongs(ctx, s.searchQuery(song+" "+artist))
	if err != nil {
		return ports.SongInfo{}, err
	}

	for _, candidate := range songs {
		if !candidate.IsStream && candidate.URI != "" {
			return candidate, nil
		}
	}
	return ports.SongInfo{}, ErrNoResults
}

func (s *SongLookupService) searchQuery(query string) string {
	terms := strings.Fields(query)
	if s.suffix != "" && !containsFold(terms, s.suffix) {
		terms = append(terms, s.suffix)
	}
	return strings.Join(terms, " ")
}

func containsFold(terms []string, word string) bool {
	for _, term := range terms {
		if strings.EqualFold(term, word) {
			return true
		}
	}
	return false
}
