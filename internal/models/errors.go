package models

import "fmt"

// ValidationError means the caller's input is missing a required field.
// Never retried; never raised for absent records (those are boolean results).
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// ConfigurationError means an expected lane or column does not exist on the
// external side. The operator has to fix the board or sheet; retrying won't.
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s not found, check board/sheet setup", e.Missing)
}
