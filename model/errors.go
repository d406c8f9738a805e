package model

import "fmt"

type NotFoundError struct {
	name string
}

func NewNotFoundError(name string) NotFoundError {
	return NotFoundError{name: name}
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.name)
}

func (e NotFoundError) Unwrap() error {
	return nil
}

// ValidationError is returned for incomplete definitions before any request is sent.
type ValidationError struct {
	Resource string
	Reason   string
}

func NewValidationError(resource, reason string) ValidationError {
	return ValidationError{Resource: resource, Reason: reason}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid definition of %s: %s", e.Resource, e.Reason)
}
