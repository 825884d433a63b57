package entity

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that a requested row does not exist. Repositories
// wrap it with the lookup that failed so errors.Is still matches.
var ErrNotFound = errors.New("entity not found")

// ValidationError reports which field of an entity failed validation.
// The messages are written to be safe for API responses.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
