package selection

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/jonathan/fragrance-customizer/internal/types"
)

// SelectComponents builds the full unnormalized component list for a profile
// and feedback. Sources are concatenated in a fixed order (base, adjustments,
// specific scents) because later truncation depends on it.
func SelectComponents(profile *types.BaseProfile, feedback *types.Feedback) ([]types.ScentComponent, error) {
	if profile == nil {
		return nil, &Error{Message: "base profile is required"}
	}

	retention := feedback.Retention()
	if math.IsNaN(retention) || retention < 0 || retention > 100 {
		return nil, &Error{Message: fmt.Sprintf("retention percentage out of range: %v", retention)}
	}

	components := BaseComponents(profile, retention)

	adjusted, err := AdjustmentComponents(feedback)
	if err != nil {
		return nil, err
	}
	components = append(components, adjusted...)

	specific, err := SpecificComponents(feedback)
	if err != nil {
		return nil, err
	}
	components = append(components, specific...)

	return components, nil
}

// BaseComponents keeps the profile's highest scoring categories, each
// represented by its deterministic ingredient and scaled by retention.
func BaseComponents(profile *types.BaseProfile, retention float64) []types.ScentComponent {
	top := topCategories(profile.CategoryScores, baseCategoryCount)

	components := make([]types.ScentComponent, 0, len(top))
	for _, c := range top {
		score := profile.CategoryScores[c]
		components = append(components, types.ScentComponent{
			Name:     BaseIngredient(c, profile.ID),
			Ratio:    (score / 10) * baseShare * (retention / 100),
			Category: c,
		})
	}
	return components
}

// topCategories returns up to n known categories by descending score.
// Equal scores keep canonical category order.
func topCategories(scores map[types.Category]float64, n int) []types.Category {
	present := make([]types.Category, 0, len(scores))
	for _, c := range types.Categories {
		if _, ok := scores[c]; ok {
			present = append(present, c)
		}
	}

	sort.SliceStable(present, func(i, j int) bool {
		return scores[present[i]] > scores[present[j]]
	})

	if len(present) > n {
		present = present[:n]
	}
	return present
}

// AdjustmentComponents converts category preferences and characteristic
// levels into components. A decrease is modeled as boosting the antagonist
// category, never as a negative weight.
func AdjustmentComponents(feedback *types.Feedback) ([]types.ScentComponent, error) {
	if feedback == nil {
		return nil, nil
	}

	for c := range feedback.CategoryPreferences {
		if !c.Valid() {
			return nil, &Error{Message: fmt.Sprintf("unknown category in preferences: %q", c)}
		}
	}

	var components []types.ScentComponent
	for _, c := range types.Categories {
		pref, ok := feedback.CategoryPreferences[c]
		if !ok {
			continue
		}
		switch pref {
		case types.PreferenceIncrease:
			components = append(components, types.ScentComponent{
				Name:     adjustments[c.Index()].increase,
				Ratio:    increaseWeight,
				Category: c,
			})
		case types.PreferenceDecrease:
			opposite := c.Opposite()
			components = append(components, types.ScentComponent{
				Name:     adjustments[opposite.Index()].decrease,
				Ratio:    decreaseWeight,
				Category: opposite,
			})
		case types.PreferenceMaintain:
		default:
			return nil, &Error{Message: fmt.Sprintf("unknown preference %q for category %s", pref, c)}
		}
	}

	for ch := range feedback.UserCharacteristics {
		if !knownCharacteristic(ch) {
			return nil, &Error{Message: fmt.Sprintf("unknown characteristic: %q", ch)}
		}
	}

	for _, ch := range types.Characteristics {
		level, ok := feedback.UserCharacteristics[ch]
		if !ok || level == types.LevelMedium {
			continue
		}
		entry, found := characteristicTable[characteristicKey{ch, level}]
		if !found {
			return nil, &Error{Message: fmt.Sprintf("unknown level %q for characteristic %s", level, ch)}
		}
		components = append(components, types.ScentComponent{
			Name:     entry.name,
			Ratio:    entry.ratio,
			Category: entry.category,
		})
	}

	return components, nil
}

func knownCharacteristic(ch types.Characteristic) bool {
	for _, known := range types.Characteristics {
		if known == ch {
			return true
		}
	}
	return false
}

// SpecificComponents turns "add" requests that carry a ratio into
// components, each capped at a fixed share before normalization.
func SpecificComponents(feedback *types.Feedback) ([]types.ScentComponent, error) {
	var components []types.ScentComponent
	for _, scent := range feedback.AddedScents() {
		if scent.Ratio == nil {
			continue
		}
		ratio := *scent.Ratio
		if math.IsNaN(ratio) || ratio < 0 {
			return nil, &Error{Message: fmt.Sprintf("invalid ratio %v for scent %q", ratio, scent.Name)}
		}
		components = append(components, types.ScentComponent{
			Name:     scent.Name,
			Ratio:    math.Min(ratio/100*specificScentCap, specificScentCap),
			Category: ScentCategory(scent),
		})
	}
	return components, nil
}

// ScentCategory returns the declared category of a requested scent, falling
// back to keyword inference on its name.
func ScentCategory(scent types.SpecificScent) types.Category {
	if scent.Category.Valid() {
		return scent.Category
	}
	return InferCategory(scent.Name)
}

// InferCategory matches an ingredient name against per-category keyword
// sets. Names that match nothing are treated as woody.
func InferCategory(name string) types.Category {
	lower := strings.ToLower(name)
	for i, keywords := range categoryKeywords {
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				return types.Categories[i]
			}
		}
	}
	return types.CategoryWoody
}
