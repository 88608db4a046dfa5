package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/bot"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/usecases"
)

// CommandHandlers holds all the command handlers.
type CommandHandlers struct {
	queue      *usecases.QueueService
	projection *usecases.ProjectionService
	roles      *usecases.RoleService
	identity   *usecases.IdentityService
	now        func() time.Time
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(
	queue *usecases.QueueService,
	projection *usecases.ProjectionService,
	roles *usecases.RoleService,
	identity *usecases.IdentityService,
	now func() time.Time,
) *CommandHandlers {
	if now == nil {
		now = time.Now
	}
	return &CommandHandlers{
		queue:      queue,
		projection: projection,
		roles:      roles,
		identity:   identity,
		now:        now,
	}
}

// actor resolves the member issuing the interaction.
func (h *CommandHandlers) actor(ctx context.Context, i *discordgo.InteractionCreate) (usecases.Actor, error) {
	if i.Member == nil || i.Member.User == nil {
		return usecases.Actor{}, errors.New("karaoke commands are only available in servers")
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return usecases.Actor{}, errors.New("invalid guild")
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return usecases.Actor{}, errors.New("invalid user")
	}

	return h.identity.Identify(ctx, usecases.IdentifyInput{GuildID: guildID, UserID: userID})
}

// HandleSing handles the /sing command.
func (h *CommandHandlers) HandleSing(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	actor, err := h.actor(ctx, i)
	if err != nil {
		return respondError(r, err.Error())
	}

	var song, artist string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "song":
			song = opt.StringValue()
		case "artist":
			artist = opt.StringValue()
		}
	}

	output, err := h.queue.Submit(ctx, usecases.SubmitInput{
		Participant: actor.Name,
		Song:        song,
		Artist:      artist,
	})
	if err != nil {
		return respondMutationError(r, err)
	}

	description := fmt.Sprintf("%s requested **%s**.", actor.Name, output.Song)
	if output.BackingTrackURL != "" {
		description = fmt.Sprintf("%s requested [%s](%s).", actor.Name, output.Song, output.BackingTrackURL)
	}
	if pos := h.projection.Position(actor.Name); pos.Found {
		description += fmt.Sprintf("\nNext turn: %s.", pos.Status)
	}

	return respondEmbed(r, description, colorSuccess)
}

// HandleQueue handles the /queue command.
func (h *CommandHandlers) HandleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{QueueEmbed(h.projection.Current(), h.now())},
		},
	})
}

// HandleHistory handles the /history command.
func (h *CommandHandlers) HandleHistory(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	p := h.projection.Current()
	embed := HistoryEmbed(p, h.now())

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

// HandlePosition handles the /position command.
func (h *CommandHandlers) HandlePosition(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	actor, err := h.actor(ctx, i)
	if err != nil {
		return respondError(r, err.Error())
	}

	pos := h.projection.Position(actor.Name)
	if !pos.Found {
		return respondEphemeral(r, "You have no songs in the queue. Use `/sing` to request one.")
	}

	sung := h.projection.Current().TimesPerformed[actor.Name]
	return respondEphemeral(r, fmt.Sprintf(
		"You are at position **%d** (%s). You have sung %d time(s) tonight.",
		pos.Position+1, pos.Status, sung,
	))
}

// HandleDone handles the /done command.
func (h *CommandHandlers) HandleDone(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	actor, err := h.actor(ctx, i)
	if err != nil {
		return respondError(r, err.Error())
	}

	record, err := h.projection.RecordAt(intOption(i, "position"))
	if err != nil {
		return respondError(r, err.Error())
	}

	output, err := h.queue.Complete(ctx, usecases.CompleteInput{Actor: actor, RecordID: record.ID})
	if err != nil {
		return respondMutationError(r, err)
	}
	if !output.Applied {
		return respondEphemeral(r, "That song was already sung or removed.")
	}

	return respondEmbed(r, fmt.Sprintf("%s sang %s.", output.Record.ParticipantName, songLabel(output.Record)), colorSuccess)
}

// HandleRemove handles the /remove command.
func (h *CommandHandlers) HandleRemove(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	actor, err := h.actor(ctx, i)
	if err != nil {
		return respondError(r, err.Error())
	}

	record, err := h.projection.RecordAt(intOption(i, "position"))
	if err != nil {
		return respondError(r, err.Error())
	}

	output, err := h.queue.Remove(ctx, usecases.RemoveInput{Actor: actor, RecordID: record.ID})
	if err != nil {
		return respondMutationError(r, err)
	}
	if !output.Applied {
		return respondEphemeral(r, "That song was already removed.")
	}

	return respondEmbed(r, fmt.Sprintf("Removed %s.", songLabel(output.Record)), colorSuccess)
}

// HandleMove handles the /move command.
func (h *CommandHandlers) HandleMove(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	actor, err := h.actor(ctx, i)
	if err != nil {
		return respondError(r, err.Error())
	}

	// Positions are 1-indexed in the UI.
	output, err := h.queue.Reorder(ctx, usecases.ReorderInput{
		Actor:     actor,
		FromIndex: intOption(i, "from") - 1,
		ToIndex:   intOption(i, "to") - 1,
		Queue:     h.projection.Current().OrderedQueue,
	})
	if err != nil {
		return respondMutationError(r, err)
	}

	return respondEmbed(r, fmt.Sprintf(
		"Moved %s (%s) to position %d.",
		songLabel(output.Moved), output.Moved.ParticipantName, intOption(i, "to"),
	), colorSuccess)
}

// HandleRole handles the /role command.
func (h *CommandHandlers) HandleRole(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	actor, err := h.actor(ctx, i)
	if err != nil {
		return respondError(r, err.Error())
	}

	data := i.ApplicationCommandData()
	var memberID, roleName string
	for _, opt := range data.Options {
		switch opt.Name {
		case "member":
			if id, ok := opt.Value.(string); ok {
				memberID = id
			}
		case "role":
			roleName = opt.StringValue()
		}
	}

	userID, err := snowflake.Parse(memberID)
	participant := resolvedDisplayName(data.Resolved, memberID)
	if err != nil || participant == "" {
		return respondError(r, "Unknown member")
	}

	role, err := usecases.ParseRole(roleName)
	if err != nil {
		return respondError(r, err.Error())
	}

	err = h.roles.SetRole(ctx, usecases.SetRoleInput{
		Actor:  actor,
		UserID: userID,
		Name:   participant,
		Role:   role,
	})
	if err != nil {
		return respondMutationError(r, err)
	}

	return respondEmbed(r, fmt.Sprintf("%s is now **%s**.", participant, role), colorSuccess)
}

// resolvedDisplayName returns the display name of a user option's member.
// Priority: guild nickname > global display name > username.
func resolvedDisplayName(resolved *discordgo.ApplicationCommandInteractionDataResolved, userID string) string {
	if resolved == nil || userID == "" {
		return ""
	}
	if member, ok := resolved.Members[userID]; ok && member.Nick != "" {
		return member.Nick
	}
	user, ok := resolved.Users[userID]
	if !ok {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func intOption(i *discordgo.InteractionCreate, name string) int {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return int(opt.IntValue())
		}
	}
	return 0
}

// respondMutationError maps a failed mutation onto a user-facing message.
func respondMutationError(r bot.Responder, err error) error {
	switch {
	case errors.Is(err, usecases.ErrPermission):
		return respondError(r, "Access denied: your role does not allow this.")
	case errors.Is(err, usecases.ErrValidation):
		return respondError(r, "Invalid input: "+err.Error())
	case errors.Is(err, usecases.ErrStoreUnavailable):
		slog.Error("record store unavailable", "error", err)
		return respondError(r, "The queue is temporarily unavailable. Please try again.")
	default:
		return respondError(r, err.Error())
	}
}

func respondError(r bot.Responder, message string) error {
	return r.Respond(bot.EmbedResponse(&discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}, true))
}

func respondEmbed(r bot.Responder, description string, color int) error {
	return r.Respond(bot.EmbedResponse(&discordgo.MessageEmbed{
		Description: description,
		Color:       color,
	}, false))
}

func respondEphemeral(r bot.Responder, content string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
