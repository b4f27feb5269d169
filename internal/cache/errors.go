// Package cache stores generated recipes in BadgerDB keyed by a request fingerprint.
package cache

import "fmt"

// Error represents an error that occurs while reading or writing the cache
type Error struct {
	Op    string
	Key   string
	Cause error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("cache %s %s: %v", e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("cache %s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
