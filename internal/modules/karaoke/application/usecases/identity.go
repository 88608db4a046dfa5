package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// IdentifyInput contains the input for the Identify use case.
type IdentifyInput struct {
	GuildID snowflake.ID
	UserID  snowflake.ID
}

// IdentityService resolves who is acting. It is called on every interaction,
// so a role change takes effect on the actor's next action.
type IdentityService struct {
	resolver ports.ActorResolver
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(resolver ports.ActorResolver) *IdentityService {
	return &IdentityService{resolver: resolver}
}

// Identify returns the actor for a guild member.
func (s *IdentityService) Identify(ctx context.Context, input IdentifyInput) (domain.Actor, error) {
	return s.resolver.ResolveActor(ctx, input.GuildID, input.UserID)
}
