package service

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"portfolio-backend/pkg/validator"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrRateLimited        = errors.New("too many submissions")
	ErrInUse              = errors.New("resource is in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries user-facing messages keyed by form field.
type ValidationError struct {
	Fields map[string]string
	cause  error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func NewRateLimitError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}, cause: ErrRateLimited}
}

// InUseError reports how many posts still reference a category or tag.
type InUseError struct {
	Resource string
	Count    int64
}

func (e *InUseError) Error() string {
	noun := "posts"
	if e.Count == 1 {
		noun = "post"
	}
	return fmt.Sprintf("cannot delete %s: it is attached to %d %s", e.Resource, e.Count, noun)
}

func (e *InUseError) Is(target error) bool {
	return target == ErrInUse
}

func validate(req interface{}) error {
	if err := validator.Validate(req); err != nil {
		if fields := validator.FieldErrors(err); fields != nil {
			return &ValidationError{Fields: fields, cause: err}
		}
		return err
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
