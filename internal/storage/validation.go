package storage

import (
	"context"
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("value cannot be empty")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, name)
	}
	return nil
}
