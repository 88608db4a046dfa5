package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("invalid input")

	// ErrPermission matches every PermissionError.
	ErrPermission = errors.New("access denied")

	// ErrStoreUnavailable matches every StoreUnavailableError.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrRecordNotFound is returned by record stores when an ID is absent.
	ErrRecordNotFound = errors.New("request record not found")
)

// ValidationError reports malformed input. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PermissionError reports an actor lacking the permission a mutation needs.
type PermissionError struct {
	Actor      string
	Role       Role
	Permission Permission
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s (role %q) lacks permission %q", e.Actor, e.Role, e.Permission)
}

// Is makes errors.Is(err, ErrPermission) match.
func (e *PermissionError) Is(target error) bool {
	return target == ErrPermission
}

// StoreUnavailableError reports a failed read or write at the record store.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("record store %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStoreUnavailable) match.
func (e *StoreUnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
