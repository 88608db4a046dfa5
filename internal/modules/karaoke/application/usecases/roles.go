package usecases

import (
	"context"
	"strings"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/ports"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// SetRoleInput contains the input for the SetRole use case.
type SetRoleInput struct {
	Actor  domain.Actor
	UserID snowflake.ID
	Name   string // Display name shown in listings
	Role   domain.Role
}

// ListRolesOutput contains the result of the ListRoles use case.
type ListRolesOutput struct {
	Roles []domain.RoleAssignment
}

// RoleService manages explicit role assignments.
type RoleService struct {
	store ports.RoleStore
}

// NewRoleService creates a new RoleService.
func NewRoleService(store ports.RoleStore) *RoleService {
	return &RoleService{store: store}
}

// SetRole assigns a role to a Discord account. Only actors who may reorder
// the queue may manage roles.
func (s *RoleService) SetRole(ctx context.Context, input SetRoleInput) error {
	if err := input.Actor.Require(domain.PermissionReorderQueue); err != nil {
		return err
	}

	if input.UserID == 0 {
		return &domain.ValidationError{Field: "user", Reason: "must be a Discord user ID"}
	}
	if input.Role != domain.RolePrivileged && input.Role != domain.RoleStandard {
		return &domain.ValidationError{Field: "role", Reason: "unknown role"}
	}

	return s.store.SetRole(ctx, domain.RoleAssignment{
		UserID: input.UserID,
		Name:   strings.TrimSpace(input.Name),
		Role:   input.Role,
	})
}

// ListRoles returns all explicit assignments.
func (s *RoleService) ListRoles(ctx context.Context) (*ListRolesOutput, error) {
	roles, err := s.store.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	return &ListRolesOutput{Roles: roles}, nil
}
