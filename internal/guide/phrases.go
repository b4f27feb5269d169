package guide

import "github.com/jonathan/fragrance-customizer/internal/types"

// categoryDescriptions are indexed by canonical category position.
var categoryDescriptions = [len(types.Categories)]string{
	"a bright, zesty lift",
	"a soft floral heart",
	"a warm, grounded woody base",
	"a smooth, skin-like musk",
	"a juicy fruity sweetness",
	"a warm spicy edge",
}

type wearing struct {
	season   string
	occasion string
}

var wearingGuide = [len(types.Categories)]wearing{
	{season: "spring and summer", occasion: "daytime outings and the office"},
	{season: "spring", occasion: "dates and celebrations"},
	{season: "autumn and winter", occasion: "evenings and formal occasions"},
	{season: "all year round", occasion: "everyday wear close to the skin"},
	{season: "summer", occasion: "casual gatherings and travel"},
	{season: "winter", occasion: "evening events and nights out"},
}

// characteristicAdjectives maps each non-medium level to the word used in
// the expected-result sentence.
var characteristicAdjectives = map[types.Characteristic]map[types.Level]string{
	types.CharacteristicWeight: {
		types.LevelVeryLow:  "weightless",
		types.LevelLow:      "light",
		types.LevelHigh:     "rich",
		types.LevelVeryHigh: "deep and heavy",
	},
	types.CharacteristicSweetness: {
		types.LevelVeryLow:  "dry",
		types.LevelLow:      "subtly sweet",
		types.LevelHigh:     "sweet",
		types.LevelVeryHigh: "gourmand",
	},
	types.CharacteristicFreshness: {
		types.LevelVeryLow:  "warm",
		types.LevelLow:      "mellow",
		types.LevelHigh:     "fresh",
		types.LevelVeryHigh: "crisp and airy",
	},
	types.CharacteristicUniqueness: {
		types.LevelVeryLow:  "familiar",
		types.LevelLow:      "easy to wear",
		types.LevelHigh:     "distinctive",
		types.LevelVeryHigh: "avant-garde",
	},
}
