package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/usecases"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
	colorQueue   = 0x9B59B6
)

const (
	maxQueueLines   = 20
	maxHistoryLines = 15
)

// Custom ID prefixes of board buttons.
const (
	componentPrefix = "karaoke"
	actionDone      = "done"
	actionRemove    = "remove"
)

func requestedAt(record usecases.RequestRecord) time.Time {
	return time.UnixMilli(record.CreatedAt.Millis)
}

// songLabel renders the song, linked to its backing track when there is one.
func songLabel(record usecases.RequestRecord) string {
	title := fmt.Sprintf("**%s**", record.Song)
	if record.BackingTrackURL != "" {
		title = fmt.Sprintf("[%s](%s)", record.Song, record.BackingTrackURL)
	}
	if artist := record.ArtistName(); artist != "" {
		title += " by " + artist
	}
	return title
}

// QueueEmbed renders the ordered queue.
func QueueEmbed(p usecases.Projection, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Karaoke Queue",
		Color: colorQueue,
	}

	if len(p.OrderedQueue) == 0 {
		embed.Description = "The queue is empty. Use `/sing` to request a song."
		return embed
	}

	var sb strings.Builder
	for i, record := range p.OrderedQueue {
		if i == maxQueueLines {
			fmt.Fprintf(&sb, "...and %d more", len(p.OrderedQueue)-maxQueueLines)
			break
		}

		pin := ""
		if record.IsPinned() {
			pin = " 📌"
		}
		fmt.Fprintf(&sb, "`%d.` %s%s\n", i+1, songLabel(record), pin)
		fmt.Fprintf(&sb, "    %s · %s · requested %s\n",
			record.ParticipantName,
			usecases.SingerStatus(i, p.ActiveIndex),
			usecases.FormatTimeAgo(now, requestedAt(record)),
		)
	}
	embed.Description = sb.String()

	if active, ok := p.Active(); ok {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Now singing: %s · %d in queue", active.ParticipantName, len(p.OrderedQueue)),
		}
	}

	return embed
}

// HistoryEmbed renders the completed songs, newest first.
func HistoryEmbed(p usecases.Projection, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Karaoke History",
		Color: colorQueue,
	}

	if len(p.CompletedHistory) == 0 {
		embed.Description = "Nobody has sung yet."
		return embed
	}

	var sb strings.Builder
	for i, record := range p.CompletedHistory {
		if i == maxHistoryLines {
			fmt.Fprintf(&sb, "...and %d more", len(p.CompletedHistory)-maxHistoryLines)
			break
		}
		fmt.Fprintf(&sb, "%s sang %s · requested %s\n",
			record.ParticipantName,
			songLabel(record),
			usecases.FormatTimeAgo(now, requestedAt(record)),
		)
	}
	embed.Description = sb.String()

	return embed
}

// BoardComponents renders buttons for the active request.
func BoardComponents(p usecases.Projection) []discordgo.MessageComponent {
	active, ok := p.Active()
	if !ok {
		return []discordgo.MessageComponent{}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Sung",
					Style:    discordgo.SuccessButton,
					CustomID: componentID(actionDone, active.ID),
				},
				discordgo.Button{
					Label:    "Remove",
					Style:    discordgo.DangerButton,
					CustomID: componentID(actionRemove, active.ID),
				},
			},
		},
	}
}

// BoardRenderer returns the renderer for the live queue board.
func BoardRenderer(
	now func() time.Time,
) func(usecases.Projection) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	return func(p usecases.Projection) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent) {
		return []*discordgo.MessageEmbed{QueueEmbed(p, now())}, BoardComponents(p)
	}
}

func componentID(action string, id usecases.RequestID) string {
	return componentPrefix + ":" + action + ":" + id.String()
}

// parseComponentID splits a board button custom ID into its action and request ID.
func parseComponentID(customID string) (string, usecases.RequestID, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != componentPrefix {
		return "", 0, fmt.Errorf("malformed component ID %q", customID)
	}
	id, err := usecases.ParseRequestID(parts[2])
	if err != nil {
		return "", 0, fmt.Errorf("malformed request ID in %q: %w", customID, err)
	}
	return parts[1], id, nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
