package selection

import "github.com/jonathan/fragrance-customizer/internal/types"

const (
	// baseShare is the largest share of the blend retained categories may claim
	baseShare = 70.0
	// increaseWeight is the weight of an "increase" adjustment component
	increaseWeight = 15.0
	// decreaseWeight is the weight of the antagonist injected for a "decrease"
	decreaseWeight = 10.0
	// specificScentCap caps the pre-normalization weight of one requested scent
	specificScentCap = 30.0
	// baseCategoryCount is how many top categories of the profile are kept
	baseCategoryCount = 3
	// ingredientChoices is the size of every per-category ingredient list
	ingredientChoices = 4
)

// baseIngredients holds the representative ingredients of each category,
// indexed by canonical category position.
var baseIngredients = [len(types.Categories)][ingredientChoices]string{
	{"Bergamot", "Lemon", "Grapefruit", "Mandarin"},
	{"Rose", "Jasmine", "Peony", "Lily of the Valley"},
	{"Sandalwood", "Cedarwood", "Vetiver", "Oud"},
	{"White Musk", "Ambrette", "Cashmeran", "Ambroxan"},
	{"Peach", "Blackcurrant", "Pear", "Fig"},
	{"Pink Pepper", "Cardamom", "Cinnamon", "Clove"},
}

// adjustment names the ingredient used to push a category up, and the one
// used when that category is injected as the antagonist of a decrease.
type adjustment struct {
	increase string
	decrease string
}

var adjustments = [len(types.Categories)]adjustment{
	{increase: "Sicilian Lemon Accord", decrease: "Lime Zest"},
	{increase: "Rose Absolute", decrease: "Orange Blossom"},
	{increase: "Cedar Atlas", decrease: "Guaiac Wood"},
	{increase: "Musk Accord", decrease: "Skin Musk"},
	{increase: "Red Berry Accord", decrease: "Apple Peel"},
	{increase: "Black Pepper", decrease: "Ginger Root"},
}

// characteristicEntry is the component appended for a non-medium characteristic level.
type characteristicEntry struct {
	name     string
	category types.Category
	ratio    float64
}

type characteristicKey struct {
	characteristic types.Characteristic
	level          types.Level
}

var characteristicTable = map[characteristicKey]characteristicEntry{
	{types.CharacteristicWeight, types.LevelVeryLow}:  {"Aldehyde Mist", types.CategoryCitrus, 12},
	{types.CharacteristicWeight, types.LevelLow}:      {"Green Tea", types.CategoryCitrus, 8},
	{types.CharacteristicWeight, types.LevelHigh}:     {"Amber Resin", types.CategoryWoody, 8},
	{types.CharacteristicWeight, types.LevelVeryHigh}: {"Benzoin", types.CategoryWoody, 12},

	{types.CharacteristicSweetness, types.LevelVeryLow}:  {"Grapefruit Peel", types.CategoryCitrus, 10},
	{types.CharacteristicSweetness, types.LevelLow}:      {"Neroli", types.CategoryFloral, 6},
	{types.CharacteristicSweetness, types.LevelHigh}:     {"Tonka Bean", types.CategoryMusky, 8},
	{types.CharacteristicSweetness, types.LevelVeryHigh}: {"Vanilla Absolute", types.CategoryMusky, 12},

	{types.CharacteristicFreshness, types.LevelVeryLow}:  {"Patchouli", types.CategoryWoody, 10},
	{types.CharacteristicFreshness, types.LevelLow}:      {"Labdanum", types.CategoryWoody, 6},
	{types.CharacteristicFreshness, types.LevelHigh}:     {"Mint Leaf", types.CategoryCitrus, 8},
	{types.CharacteristicFreshness, types.LevelVeryHigh}: {"Sea Salt Accord", types.CategoryCitrus, 12},

	{types.CharacteristicUniqueness, types.LevelVeryLow}:  {"Clean Musk", types.CategoryMusky, 10},
	{types.CharacteristicUniqueness, types.LevelLow}:      {"Soft Iris", types.CategoryFloral, 6},
	{types.CharacteristicUniqueness, types.LevelHigh}:     {"Saffron", types.CategorySpicy, 8},
	{types.CharacteristicUniqueness, types.LevelVeryHigh}: {"Smoked Birch", types.CategoryWoody, 12},
}

// categoryKeywords drives category inference for user-requested scents.
// Categories are checked in canonical order; the first substring hit wins.
var categoryKeywords = [len(types.Categories)][]string{
	{"citrus", "lemon", "lime", "orange", "bergamot", "grapefruit", "mandarin", "yuzu", "neroli"},
	{"rose", "jasmine", "lily", "peony", "lavender", "iris", "violet", "tuberose", "magnolia", "floral", "flower"},
	{"wood", "cedar", "sandal", "vetiver", "oud", "pine", "birch", "moss", "patchouli"},
	{"musk", "amber", "ambrette", "powder", "cashmere", "skin"},
	{"peach", "berry", "apple", "pear", "fig", "plum", "cherry", "mango", "fruit", "currant"},
	{"pepper", "cinnamon", "clove", "cardamom", "ginger", "saffron", "nutmeg", "spice"},
}
