package infrastructure

import (
	"context"
	"fmt"
	"slices"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// Ensure DiscordActorResolver implements ports.ActorResolver.
var _ ports.ActorResolver = (*DiscordActorResolver)(nil)

// memberSource fetches guild members. *discordgo.Session satisfies it.
type memberSource interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
}

// DiscordActorResolver resolves actors from guild members.
//
// The role is taken from the account's explicit assignment in the role store
// if there is one, then from the configured admin Discord role, and defaults
// to standard.
type DiscordActorResolver struct {
	members     memberSource
	roles       ports.RoleStore
	adminRoleID snowflake.ID // 0 disables role-based admin
}

// NewDiscordActorResolver creates a new DiscordActorResolver.
func NewDiscordActorResolver(
	members memberSource,
	roles ports.RoleStore,
	adminRoleID snowflake.ID,
) *DiscordActorResolver {
	return &DiscordActorResolver{
		members:     members,
		roles:       roles,
		adminRoleID: adminRoleID,
	}
}

// ResolveActor fetches the member and determines their name and role.
func (r *DiscordActorResolver) ResolveActor(
	ctx context.Context,
	guildID, userID snowflake.ID,
) (domain.Actor, error) {
	member, err := r.members.GuildMember(guildID.String(), userID.String())
	if err != nil {
		return domain.Actor{}, fmt.Errorf("failed to fetch guild member: %w", err)
	}

	// Looked up by account. Display names are chosen by the member.
	role, ok, err := r.roles.GetRole(ctx, userID)
	if err != nil {
		return domain.Actor{}, err
	}
	if !ok {
		role = domain.RoleFromAdmin(
			r.adminRoleID != 0 && slices.Contains(member.Roles, r.adminRoleID.String()),
		)
	}

	return domain.Actor{Name: getDisplayName(member), Role: role}, nil
}

// getDisplayName returns the effective display name for a guild member.
// Priority: guild nickname > global display name > username.
func getDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
