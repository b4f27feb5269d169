package types

// LineItem is one ingredient's computed mass and share in a finished-size recipe.
type LineItem struct {
	Name       string  `json:"name"`
	Amount     string  `json:"amount"`
	Grams      float64 `json:"grams"`
	Percentage int     `json:"percentage"`
}

// GuideEntry is one ingredient of the physical sampling protocol.
type GuideEntry struct {
	Name       string   `json:"name"`
	Code       string   `json:"code"`
	Category   Category `json:"category"`
	Ratio      float64  `json:"ratio"`
	Percentage int      `json:"percentage"`
	Count      int      `json:"count"`
}

// TestGuide is a bounded, discretized sampling protocol (at most three entries).
type TestGuide struct {
	Entries      []GuideEntry `json:"entries"`
	TotalUnits   int          `json:"total_units"`
	Instructions string       `json:"instructions"`
}

// Explanation is the templated rationale attached to a recipe.
type Explanation struct {
	Rationale      string `json:"rationale"`
	ExpectedResult string `json:"expected_result"`
	Recommendation string `json:"recommendation"`
}

// Recipe is the output of the synthesis engine.
type Recipe struct {
	BasedOn     string      `json:"based_on"`
	Recipe10ml  []LineItem  `json:"recipe_10ml"`
	Recipe50ml  []LineItem  `json:"recipe_50ml"`
	Description string      `json:"description"`
	TestGuide   TestGuide   `json:"test_guide"`
	Explanation Explanation `json:"explanation"`
	Degraded    bool        `json:"degraded,omitempty"`
}
