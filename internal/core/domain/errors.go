package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation.
var ErrValidation = errors.New("validation failed")

// Authentication. All of these surface as 401.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleMismatch       = errors.New("role mismatch")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenExpired       = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Authorization.
var ErrForbidden = errors.New("access forbidden")

// Not found.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

// Conflict.
var (
	ErrUserExists        = errors.New("user already exists")
	ErrInvoiceProcessed  = errors.New("invoice has already been processed")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateInvoiceNumber is internal; the workflow retries with a new number.
	ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")
)

// ErrDeliveryFailed marks a push delivery failure. It is logged, never returned to callers.
var ErrDeliveryFailed = errors.New("push delivery failed")

// IsAuthError reports whether err belongs to the authentication family.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrRoleMismatch) ||
		errors.Is(err, ErrInvalidToken)
}

// FieldError is a single caller-correctable input problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects field-level input problems. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError returns a ValidationError holding a single field problem.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add appends a field problem.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns e as an error, or nil when no problems were recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
