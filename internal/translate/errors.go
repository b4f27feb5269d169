// Package translate renders the prose parts of a recipe in another language.
package translate

import "fmt"

// Error represents a failed translation. The recipe it was called with is
// still usable untranslated.
type Error struct {
	Language string
	Field    string
	Cause    error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("translation to %s failed for %s: %v", e.Language, e.Field, e.Cause)
	}
	return fmt.Sprintf("translation to %s failed: %v", e.Language, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
