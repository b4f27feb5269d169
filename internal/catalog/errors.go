// Package catalog holds the static list of base fragrance profiles.
package catalog

import (
	"errors"
	"fmt"
)

// ErrProfileNotFound is returned when a profile id is not in the catalog.
var ErrProfileNotFound = errors.New("base profile not found")

// LoadError represents a failure to parse or validate catalog data
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
