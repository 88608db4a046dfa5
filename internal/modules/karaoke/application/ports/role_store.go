package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// RoleStore keeps explicit role assignments per Discord account.
type RoleStore interface {
	// GetRole returns the role assigned to the user.
	// The second return value is false when no role was assigned.
	GetRole(ctx context.Context, userID snowflake.ID) (domain.Role, bool, error)

	// SetRole creates or replaces the assignment for assignment.UserID.
	SetRole(ctx context.Context, assignment domain.RoleAssignment) error

	// ListRoles returns all assignments ordered by user ID.
	ListRoles(ctx context.Context) ([]domain.RoleAssignment, error)
}
