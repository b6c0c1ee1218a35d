// Package apperror holds the error kinds shared by services, middleware and handlers.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kinds. Every error returned by the core matches exactly one of these via errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrUnauthenticated   = errors.New("authentication error")
	ErrForbidden         = errors.New("authorization error")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Error pairs a kind with a human readable message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

// New returns an error of the given kind carrying msg.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

func Unauthenticated(msg string) error { return New(ErrUnauthenticated, msg) }
func Forbidden(msg string) error       { return New(ErrForbidden, msg) }

// NotFound reports a missing resource, e.g. NotFound("Sweet", id).
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError carries per-field messages keyed by the field's wire name.
// The empty key holds errors not tied to a single field.
type ValidationError struct {
	Fields map[string]string
}

// Validation builds a single-field ValidationError.
func Validation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Add records msg for field, keeping the first message seen.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns nil when no field failed.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			parts = append(parts, e.Fields[k])
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InsufficientStockError is returned when a purchase asks for more than is on hand.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock. Available: %d", e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Code returns the machine readable kind of err, or "internal_error".
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrUnauthenticated):
		return "authentication_error"
	case errors.Is(err, ErrForbidden):
		return "authorization_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal_error"
	}
}
