package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a station or scene lookup has no match.
var ErrNotFound = errors.New("not found")

// ErrSameStation is returned when a trip is requested with identical
// source and destination.
var ErrSameStation = errors.New("source and destination are the same station")

// ValidationError reports malformed input data (bad coordinates, empty
// point sets, degenerate bounds requested explicitly).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigurationError reports an unusable viewport or engine configuration,
// such as a zero or negative scale.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }
