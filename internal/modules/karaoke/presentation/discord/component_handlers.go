package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/karaoke/internal/bot"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/usecases"
)

// ComponentPrefix is the custom ID prefix routed to HandleBoardButton.
const ComponentPrefix = componentPrefix

// HandleBoardButton handles the queue board's buttons.
// Replies are ephemeral; the board itself refreshes from the next projection.
func (h *CommandHandlers) HandleBoardButton(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	action, id, err := parseComponentID(i.MessageComponentData().CustomID)
	if err != nil {
		return respondError(r, "Unknown button")
	}

	actor, err := h.actor(ctx, i)
	if err != nil {
		return respondError(r, err.Error())
	}

	switch action {
	case actionDone:
		output, err := h.queue.Complete(ctx, usecases.CompleteInput{Actor: actor, RecordID: id})
		if err != nil {
			return respondMutationError(r, err)
		}
		if !output.Applied {
			return respondEphemeral(r, "That song was already sung or removed.")
		}
		return respondEphemeral(r, fmt.Sprintf("Marked %s as sung.", songLabel(output.Record)))

	case actionRemove:
		output, err := h.queue.Remove(ctx, usecases.RemoveInput{Actor: actor, RecordID: id})
		if err != nil {
			return respondMutationError(r, err)
		}
		if !output.Applied {
			return respondEphemeral(r, "That song was already removed.")
		}
		return respondEphemeral(r, fmt.Sprintf("Removed %s.", songLabel(output.Record)))

	default:
		return respondError(r, "Unknown button")
	}
}
