package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nurpe/liftcare/internal/repository"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrUnauthenticated  = errors.New("unauthenticated")
)

// ValidationError lists every field that failed validation. It matches ErrInvalidInput.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid or missing fields: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalidFields(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// translate maps repository errors onto service sentinels. Store failures pass through.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return err
}
