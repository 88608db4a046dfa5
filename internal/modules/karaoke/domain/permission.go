package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/disgoorg/snowflake/v2"
)

// Role is the access level of an actor.
type Role string

const (
	// RolePrivileged has full control over the queue.
	RolePrivileged Role = "admin"
	// RoleStandard may only act on its own requests.
	RoleStandard Role = "user"
)

// ParseRole parses a role name. "admin"/"privileged" and "user"/"standard" are accepted.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "privileged":
		return RolePrivileged, nil
	case "user", "standard":
		return RoleStandard, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// RoleFromAdmin maps the binary admin flag onto the graduated role model.
func RoleFromAdmin(isAdmin bool) Role {
	if isAdmin {
		return RolePrivileged
	}
	return RoleStandard
}

// RoleAssignment is an explicit role held by one Discord account.
// Name is the display name at assignment time and is informational only;
// lookups always go by UserID.
type RoleAssignment struct {
	UserID snowflake.ID
	Name   string
	Role   Role
}

// Permission is a kind of mutation an actor may perform.
type Permission string

const (
	PermissionSubmitSong    Permission = "submit_song"
	PermissionMarkOwnSung   Permission = "mark_own_sung"
	PermissionRemoveOwnSong Permission = "remove_own_song"
	PermissionMarkAnySung   Permission = "mark_any_sung"
	PermissionRemoveAnySong Permission = "remove_any_song"
	PermissionReorderQueue  Permission = "reorder_queue"
)

var rolePermissions = map[Role][]Permission{
	RolePrivileged: {
		PermissionMarkOwnSung,
		PermissionRemoveOwnSong,
		PermissionMarkAnySung,
		PermissionRemoveAnySong,
		PermissionReorderQueue,
	},
	RoleStandard: {
		PermissionMarkOwnSung,
		PermissionRemoveOwnSong,
	},
}

// RolePermissions returns a copy of the gated permissions held by a role.
func RolePermissions(role Role) []Permission {
	return slices.Clone(rolePermissions[role])
}

// Authorize reports whether the role holds the permission.
// Submitting is never gated. Unknown roles hold no gated permission.
func Authorize(role Role, permission Permission) bool {
	if permission == PermissionSubmitSong {
		return true
	}
	return slices.Contains(rolePermissions[role], permission)
}

// Actor is the identity performing a mutation.
type Actor struct {
	Name string
	Role Role
}

// Can reports whether the actor holds the permission.
func (a Actor) Can(permission Permission) bool {
	return Authorize(a.Role, permission)
}

// Owns reports whether the record was submitted by the actor.
func (a Actor) Owns(record RequestRecord) bool {
	return record.ParticipantName == a.Name
}

// CompletePermission returns the permission needed to mark the record sung.
func (a Actor) CompletePermission(record RequestRecord) Permission {
	if a.Owns(record) {
		return PermissionMarkOwnSung
	}
	return PermissionMarkAnySung
}

// RemovePermission returns the permission needed to remove the record.
func (a Actor) RemovePermission(record RequestRecord) Permission {
	if a.Owns(record) {
		return PermissionRemoveOwnSong
	}
	return PermissionRemoveAnySong
}

// Require returns a PermissionError unless the actor holds the permission.
func (a Actor) Require(permission Permission) error {
	if a.Can(permission) {
		return nil
	}
	return &PermissionError{Actor: a.Name, Role: a.Role, Permission: permission}
}
