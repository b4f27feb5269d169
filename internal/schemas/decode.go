package schemas

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/jonathan/fragrance-customizer/internal/types"
	"github.com/jonathan/fragrance-customizer/schemas"
)

// DecodeFeedback validates data against the feedback schema, decodes it and
// runs the struct-level checks. Empty input and JSON null decode to nil.
func DecodeFeedback(data []byte) (*types.Feedback, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if err := Validate(schemas.Feedback, trimmed); err != nil {
		return nil, err
	}

	var feedback types.Feedback
	if err := json.Unmarshal(trimmed, &feedback); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}

	if err := feedback.Validate(); err != nil {
		return nil, fromValidator(err)
	}
	return &feedback, nil
}

// fromValidator converts validator/v10 errors into a ValidationError.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   fe.Namespace(),
			Message: fmt.Sprintf("failed %q check", fe.Tag()),
		})
	}
	return out
}
