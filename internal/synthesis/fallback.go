package synthesis

import (
	"fmt"

	"github.com/jonathan/fragrance-customizer/internal/blending"
	"github.com/jonathan/fragrance-customizer/internal/guide"
	"github.com/jonathan/fragrance-customizer/internal/types"
)

// Fallback returns the canned single-ingredient recipe: the base profile
// itself at 100%. It is used whenever customization cannot be computed.
func Fallback(profile *types.BaseProfile) types.Recipe {
	name := blending.DefaultBlendName
	category := types.CategoryWoody
	if profile != nil {
		if profile.Name != "" {
			name = profile.Name
		}
		category = profile.TopCategory()
	}

	only := []types.ScentComponent{{Name: name, Ratio: 100, Category: category}}

	explanation := guide.BuildExplanation(only, nil, nil)
	explanation.Rationale = fmt.Sprintf(
		"The feedback could not be applied, so this is a fallback recipe: the original %s at full strength.", name)
	explanation.ExpectedResult = fmt.Sprintf("Expect the unchanged character of %s.", name)

	return types.Recipe{
		BasedOn:     name,
		Recipe10ml:  blending.Calculate(only, blending.Grams10ml),
		Recipe50ml:  blending.Calculate(only, blending.Grams50ml),
		Description: fmt.Sprintf("The original %s, unmodified.", name),
		TestGuide:   guide.BuildTestGuide(only, nil, nil),
		Explanation: explanation,
		Degraded:    true,
	}
}
