package bot

import "github.com/bwmarrin/discordgo"

// Responder provides an abstraction for responding to Discord interactions.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Respond sends a response to an interaction.
	Respond(response *discordgo.InteractionResponse) error
}

// EmbedResponse builds a channel message response carrying a single embed.
// Ephemeral responses are only shown to the user who interacted.
func EmbedResponse(embed *discordgo.MessageEmbed, ephemeral bool) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

// DiscordResponder implements Responder using a live Discord session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

// NewDiscordResponder creates a new DiscordResponder.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Respond sends a response to the interaction via Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(r.interaction, response)
}

// MockResponder is a test double for Responder that records every response.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	Responses    []*discordgo.InteractionResponse
	Err          error
}

// Respond records the response for testing.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	m.Responses = append(m.Responses, response)
	return m.Err
}

// Ephemeral reports whether the last response is only visible to the caller.
func (m *MockResponder) Ephemeral() bool {
	return m.LastResponse != nil && m.LastResponse.Data != nil &&
		m.LastResponse.Data.Flags&discordgo.MessageFlagsEphemeral != 0
}

// LastEmbed returns the first embed of the last response, or nil.
func (m *MockResponder) LastEmbed() *discordgo.MessageEmbed {
	if m.LastResponse == nil || m.LastResponse.Data == nil || len(m.LastResponse.Data.Embeds) == 0 {
		return nil
	}
	return m.LastResponse.Data.Embeds[0]
}
