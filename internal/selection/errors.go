// Package selection turns a base profile and user feedback into an unnormalized list of scent components.
package selection

import "fmt"

// Error represents an error that occurs during component selection
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
