package selection

import "github.com/jonathan/fragrance-customizer/internal/types"

// IngredientIndex is the stable checksum that maps (category, profile id) to
// a slot in a category's ingredient list: the sum of the Unicode code points
// of "<category>:<profileID>", modulo n. It is part of the recipe contract;
// changing it changes the ingredients every existing profile resolves to.
func IngredientIndex(category types.Category, profileID string, n int) int {
	if n <= 0 {
		return 0
	}
	sum := 0
	for _, r := range string(category) + ":" + profileID {
		sum += int(r)
	}
	return sum % n
}

// BaseIngredient returns the deterministic representative ingredient of a
// category for the given profile.
func BaseIngredient(category types.Category, profileID string) string {
	idx := category.Index()
	if idx < 0 {
		return ""
	}
	return baseIngredients[idx][IngredientIndex(category, profileID, ingredientChoices)]
}
