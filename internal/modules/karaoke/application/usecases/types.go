package usecases

import (
	"time"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// Re-export domain types for presentation layer use.
// This allows presentation to depend only on usecases without importing domain directly.

// RequestRecord is an alias for domain.RequestRecord.
type RequestRecord = domain.RequestRecord

// RequestID is an alias for domain.RequestID.
type RequestID = domain.RequestID

// Projection is an alias for domain.Projection.
type Projection = domain.Projection

// Actor is an alias for domain.Actor.
type Actor = domain.Actor

// Role is an alias for domain.Role.
type Role = domain.Role

// Permission is an alias for domain.Permission.
type Permission = domain.Permission

// NoActiveIndex is the ActiveIndex of a projection with an empty queue.
const NoActiveIndex = domain.NoActiveIndex

// Permissions checked by presentation to decide which controls to offer.
const (
	PermissionMarkAnySung   = domain.PermissionMarkAnySung
	PermissionRemoveAnySong = domain.PermissionRemoveAnySong
	PermissionReorderQueue  = domain.PermissionReorderQueue
)

// Error sentinels matched by presentation.
var (
	ErrValidation       = domain.ErrValidation
	ErrPermission       = domain.ErrPermission
	ErrStoreUnavailable = domain.ErrStoreUnavailable
)

// ParseRole parses a role name.
func ParseRole(s string) (Role, error) {
	return domain.ParseRole(s)
}

// ParseRequestID parses a decimal RequestID.
func ParseRequestID(s string) (RequestID, error) {
	return domain.ParseRequestID(s)
}

// SingerStatus returns the label for a queue position relative to the active one.
func SingerStatus(index, active int) string {
	return domain.SingerStatus(index, active)
}

// FormatTimeAgo formats the time elapsed between then and now.
func FormatTimeAgo(now, then time.Time) string {
	return domain.FormatTimeAgo(now, then)
}
