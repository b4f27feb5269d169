// Package synthesis composes component selection, normalization, recipe
// calculation and guide generation into a single total function.
package synthesis

import "fmt"

// PanicError wraps a value recovered from a panic inside the pipeline.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("recipe synthesis panicked: %v", e.Value)
}
