// Package fault defines the failure categories shared by the core services.
// Handlers map them onto HTTP statuses with Status; everything else uses
// errors.As to branch on category.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports a bad field on an incoming request. Recoverable
// by the caller; surfaced per-field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// StateError reports an operation that is illegal for the current match
// lifecycle state.
type StateError struct{ Msg string }

func (e *StateError) Error() string { return e.Msg }

// NotFoundError reports an unknown match, event, team or player reference.
type NotFoundError struct{ What string }

func (e *NotFoundError) Error() string { return e.What + " not found" }

// PermissionError reports an actor without management rights over a
// participating team.
type PermissionError struct{ Msg string }

func (e *PermissionError) Error() string { return e.Msg }

// ConsistencyError reports a ledger/score mismatch found during
// reconciliation. Not expected in normal operation.
type ConsistencyError struct{ Msg string }

func (e *ConsistencyError) Error() string { return e.Msg }

func Validation(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }
func State(msg string) error             { return &StateError{Msg: msg} }
func NotFound(what string) error         { return &NotFoundError{What: what} }
func Permission(msg string) error        { return &PermissionError{Msg: msg} }
func Consistency(msg string) error       { return &ConsistencyError{Msg: msg} }

// Status maps a service error to an HTTP status code. Wrapped errors are
// unwrapped; unknown errors are internal.
func Status(err error) int {
	var (
		v *ValidationError
		s *StateError
		n *NotFoundError
		p *PermissionError
	)
	switch {
	case errors.As(err, &v):
		return http.StatusBadRequest
	case errors.As(err, &s):
		return http.StatusConflict
	case errors.As(err, &n):
		return http.StatusNotFound
	case errors.As(err, &p):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// FieldOf returns the offending field name for validation errors, "" for
// everything else.
func FieldOf(err error) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Field
	}
	return ""
}
