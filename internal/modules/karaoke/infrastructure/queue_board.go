package infrastructure

import (
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// messageSender posts and edits channel messages. *discordgo.Session satisfies it.
type messageSender interface {
	ChannelMessageSendComplex(
		channelID string,
		data *discordgo.MessageSend,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
	ChannelMessageEditComplex(
		m *discordgo.MessageEdit,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// BoardRenderer turns a projection into a board message.
type BoardRenderer func(domain.Projection) ([]*discordgo.MessageEmbed, []discordgo.MessageComponent)

// QueueBoard keeps a single message in a channel showing the current queue.
// The first update posts the message; later updates edit it in place.
type QueueBoard struct {
	sender    messageSender
	channelID snowflake.ID
	render    BoardRenderer

	mu        sync.Mutex
	messageID string
}

// NewQueueBoard creates a new QueueBoard for channelID.
func NewQueueBoard(sender messageSender, channelID snowflake.ID, render BoardRenderer) *QueueBoard {
	return &QueueBoard{
		sender:    sender,
		channelID: channelID,
		render:    render,
	}
}

// Update renders the projection onto the board.
// Failures are logged; the next projection retries.
func (b *QueueBoard) Update(projection domain.Projection) {
	embeds, components := b.render(projection)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.messageID != "" {
		edit := discordgo.NewMessageEdit(b.channelID.String(), b.messageID)
		edit.Embeds = &embeds
		edit.Components = &components

		_, err := b.sender.ChannelMessageEditComplex(edit)
		if err == nil {
			return
		}
		slog.Warn("failed to edit queue board, posting a new one",
			"channel", b.channelID,
			"message", b.messageID,
			"error", err,
		)
	}

	msg, err := b.sender.ChannelMessageSendComplex(b.channelID.String(), &discordgo.MessageSend{
		Embeds:     embeds,
		Components: components,
	})
	if err != nil {
		slog.Error("failed to post queue board", "channel", b.channelID, "error", err)
		b.messageID = ""
		return
	}
	b.messageID = msg.ID
}

// MessageID returns the ID of the board message, or an empty string.
func (b *QueueBoard) MessageID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.messageID
}
