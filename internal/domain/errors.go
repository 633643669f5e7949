package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound matches every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports bad client input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFound returns a NotFoundError with a stack attached.
func NotFound(resource, id string) error {
	return errors.WithStack(&NotFoundError{Resource: resource, ID: id})
}

// Invalid returns a ValidationError with a stack attached.
func Invalid(field, format string, args ...interface{}) error {
	return errors.WithStack(&ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Required is shorthand for a missing required field.
func Required(field string) error {
	return Invalid(field, "%s is required", field)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
