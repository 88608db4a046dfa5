package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// ActorResolver resolves the display name and role of the user issuing a command.
type ActorResolver interface {
	ResolveActor(ctx context.Context, guildID, userID snowflake.ID) (domain.Actor, error)
}
