package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")

	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)
	ErrBrokerNotFound       = fmt.Errorf("broker %w", ErrNotFound)

	ErrSlowConsumer = errors.New("live channel send buffer full")
	ErrClosed       = errors.New("live channel closed")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
