package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/karaoke/internal/bot"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/usecases"
)

// autocompleteTimeout keeps suggestions inside Discord's response window.
const autocompleteTimeout = 2500 * time.Millisecond

// AutocompleteHandler handles autocomplete requests.
type AutocompleteHandler struct {
	lookup     *usecases.SongLookupService
	projection *usecases.ProjectionService
}

// NewAutocompleteHandler creates a new AutocompleteHandler.
// lookup may be nil when no song search is configured.
func NewAutocompleteHandler(
	lookup *usecases.SongLookupService,
	projection *usecases.ProjectionService,
) *AutocompleteHandler {
	return &AutocompleteHandler{
		lookup:     lookup,
		projection: projection,
	}
}

// Handle routes an autocomplete interaction by command name.
func (h *AutocompleteHandler) Handle(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	data := i.ApplicationCommandData()

	var choices []*discordgo.ApplicationCommandOptionChoice
	switch data.Name {
	case commandSing:
		choices = h.songChoices(focusedString(data.Options))
	case commandDone, commandRemove, commandMove:
		choices = h.positionChoices()
	}
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
}

func focusedString(options []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, opt := range options {
		if opt.Focused && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

// songChoices suggests song titles. The chosen value is the title itself so
// the request stores what the singer will see.
func (h *AutocompleteHandler) songChoices(query string) []*discordgo.ApplicationCommandOptionChoice {
	// Don't search for very short queries
	if h.lookup == nil || len([]rune(query)) < 2 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()

	output, err := h.lookup.Suggest(ctx, usecases.SuggestInput{Query: query})
	if err != nil {
		slog.Warn("failed to suggest songs", "query", query, "error", err)
		return nil
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(output.Songs))
	for _, song := range output.Songs {
		name := song.Title
		if song.Artist != "" {
			name = fmt.Sprintf("%s - %s", song.Title, song.Artist)
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(name, 100),
			Value: truncate(song.Title, 100),
		})
	}
	return choices
}

// positionChoices lists the current queue with 1-indexed positions.
func (h *AutocompleteHandler) positionChoices() []*discordgo.ApplicationCommandOptionChoice {
	queue := h.projection.Current().OrderedQueue

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, min(len(queue), usecases.MaxSuggestions))
	for idx, record := range queue {
		if idx == usecases.MaxSuggestions {
			break
		}
		pos := idx + 1
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("%d. %s (%s)", pos, record.Song, record.ParticipantName), 100),
			Value: pos,
		})
	}
	return choices
}
