package synthesis

import (
	"fmt"
	"strings"

	"github.com/jonathan/fragrance-customizer/internal/blending"
	"github.com/jonathan/fragrance-customizer/internal/guide"
	"github.com/jonathan/fragrance-customizer/internal/selection"
	"github.com/jonathan/fragrance-customizer/internal/types"
)

// Outcome is the result of Synthesize. Recipe is always usable; FallbackCause
// is set when the canned fallback recipe was returned instead of a custom one.
type Outcome struct {
	Recipe        types.Recipe
	FallbackCause error
}

// Degraded reports whether the fallback recipe was returned.
func (o Outcome) Degraded() bool {
	return o.FallbackCause != nil
}

// Synthesize derives a recipe from a base profile and feedback. It never
// fails: validation errors and panics alike collapse into the fallback recipe.
func Synthesize(profile *types.BaseProfile, feedback *types.Feedback) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			cause := &PanicError{Value: r}
			outcome = Outcome{Recipe: Fallback(profile), FallbackCause: cause}
		}
	}()

	recipe, err := Generate(profile, feedback)
	if err != nil {
		return Outcome{Recipe: Fallback(profile), FallbackCause: err}
	}
	return Outcome{Recipe: recipe}
}

// Generate runs the four pipeline stages and reports the first error.
func Generate(profile *types.BaseProfile, feedback *types.Feedback) (types.Recipe, error) {
	if feedback == nil {
		feedback = &types.Feedback{}
	}
	if err := feedback.Validate(); err != nil {
		return types.Recipe{}, fmt.Errorf("invalid feedback: %w", err)
	}

	components, err := selection.SelectComponents(profile, feedback)
	if err != nil {
		return types.Recipe{}, fmt.Errorf("component selection failed: %w", err)
	}

	normalized := blending.Normalize(components)

	return types.Recipe{
		BasedOn:     profile.Name,
		Recipe10ml:  blending.Calculate(normalized, blending.Grams10ml),
		Recipe50ml:  blending.Calculate(normalized, blending.Grams50ml),
		Description: describe(profile.Name, normalized),
		TestGuide:   guide.BuildTestGuide(normalized, profile, feedback),
		Explanation: guide.BuildExplanation(normalized, profile, feedback),
	}, nil
}

func describe(profileName string, normalized []types.ScentComponent) string {
	parts := make([]string, 0, len(normalized))
	for _, c := range normalized {
		parts = append(parts, fmt.Sprintf("%s %d%%", c.Name, blending.RoundHalfUp(c.Ratio)))
	}

	list := parts[0]
	if len(parts) > 1 {
		list = strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
	return fmt.Sprintf("A custom blend based on %s: %s.", profileName, list)
}
