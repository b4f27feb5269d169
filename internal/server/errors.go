package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/fragrance-customizer/internal/catalog"
	"github.com/jonathan/fragrance-customizer/internal/pipeline"
	"github.com/jonathan/fragrance-customizer/internal/schemas"
)

// ErrStoreUnavailable is returned by endpoints that need the recipe store
// when the server runs without a database.
var ErrStoreUnavailable = errors.New("recipe store is not configured")

// ErrRunNotFound indicates a stored recipe run was not found
type ErrRunNotFound struct {
	ID string
}

func (e *ErrRunNotFound) Error() string {
	return fmt.Sprintf("recipe run not found: %s", e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound   *ErrRunNotFound
		validation *ErrValidation
		schemaErr  *schemas.ValidationError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, catalog.ErrProfileNotFound), errors.Is(err, pipeline.ErrRunNotFound), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, pipeline.ErrNoStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
