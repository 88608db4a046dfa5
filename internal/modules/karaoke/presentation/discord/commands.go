package discord

import "github.com/bwmarrin/discordgo"

// Command names.
const (
	commandSing     = "sing"
	commandQueue    = "queue"
	commandHistory  = "history"
	commandPosition = "position"
	commandDone     = "done"
	commandRemove   = "remove"
	commandMove     = "move"
	commandRole     = "role"
)

// Commands returns the slash commands for the karaoke module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        commandSing,
			Description: "Request a song",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "song",
					Description:  "Song title",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "artist",
					Description: "Artist",
					Required:    false,
				},
			},
		},
		{
			Name:        commandQueue,
			Description: "Show the singing order",
		},
		{
			Name:        commandHistory,
			Description: "Show songs that have been sung",
		},
		{
			Name:        commandPosition,
			Description: "Show when your next turn is",
		},
		{
			Name:        commandDone,
			Description: "Mark a song as sung",
			Options: []*discordgo.ApplicationCommandOption{
				positionOption("position", "Queue position (1 = now singing)"),
			},
		},
		{
			Name:        commandRemove,
			Description: "Remove a song from the queue",
			Options: []*discordgo.ApplicationCommandOption{
				positionOption("position", "Queue position"),
			},
		},
		{
			Name:        commandMove,
			Description: "Move a song to another position",
			Options: []*discordgo.ApplicationCommandOption{
				positionOption("from", "Current position"),
				positionOption("to", "New position"),
			},
		},
		{
			Name:        commandRole,
			Description: "Set a singer's role",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Member to update",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "role",
					Description: "New role",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "admin", Value: "admin"},
						{Name: "user", Value: "user"},
					},
				},
			},
		},
	}
}

func positionOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionInteger,
		Name:         name,
		Description:  description,
		Required:     true,
		MinValue:     floatPtr(1),
		Autocomplete: true,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
