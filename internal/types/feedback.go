package types

import (
	"github.com/go-playground/validator/v10"
)

// DefaultRetentionPercentage applies when feedback omits a retention value.
const DefaultRetentionPercentage = 50.0

// Preference is the requested direction for a category.
type Preference string

// Preference constants
const (
	PreferenceIncrease Preference = "increase"
	PreferenceDecrease Preference = "decrease"
	PreferenceMaintain Preference = "maintain"
)

// Characteristic is a perceived quality of the finished scent.
type Characteristic string

// Characteristic constants
const (
	CharacteristicWeight     Characteristic = "weight"
	CharacteristicSweetness  Characteristic = "sweetness"
	CharacteristicFreshness  Characteristic = "freshness"
	CharacteristicUniqueness Characteristic = "uniqueness"
)

// Characteristics lists every characteristic in canonical order.
var Characteristics = [...]Characteristic{
	CharacteristicWeight,
	CharacteristicSweetness,
	CharacteristicFreshness,
	CharacteristicUniqueness,
}

// Level is the intensity requested for a characteristic. Medium is a no-op.
type Level string

// Level constants
const (
	LevelVeryLow  Level = "veryLow"
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelVeryHigh Level = "veryHigh"
)

// ScentAction says whether a specific scent should be added or removed.
type ScentAction string

// ScentAction constants
const (
	ScentActionAdd    ScentAction = "add"
	ScentActionRemove ScentAction = "remove"
)

// SpecificScent is an ingredient the user explicitly asked for (or against).
type SpecificScent struct {
	Name     string      `json:"name" validate:"required"`
	Action   ScentAction `json:"action" validate:"required,oneof=add remove"`
	Ratio    *float64    `json:"ratio,omitempty" validate:"omitempty,gte=0,lte=100"`
	Category Category    `json:"category,omitempty" validate:"omitempty,oneof=citrus floral woody musky fruity spicy"`
}

// Feedback is the structured user feedback for one customization request.
type Feedback struct {
	RetentionPercentage *float64                 `json:"retention_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	CategoryPreferences map[Category]Preference  `json:"category_preferences,omitempty" validate:"omitempty,dive,keys,oneof=citrus floral woody musky fruity spicy,endkeys,oneof=increase decrease maintain"`
	UserCharacteristics map[Characteristic]Level `json:"user_characteristics,omitempty" validate:"omitempty,dive,keys,oneof=weight sweetness freshness uniqueness,endkeys,oneof=veryLow low medium high veryHigh"`
	SpecificScents      []SpecificScent          `json:"specific_scents,omitempty" validate:"omitempty,dive"`
}

// Retention returns the retention percentage, applying the default when unset.
func (f *Feedback) Retention() float64 {
	if f == nil || f.RetentionPercentage == nil {
		return DefaultRetentionPercentage
	}
	return *f.RetentionPercentage
}

// AddedScents returns the specific scents with action "add", in request order.
func (f *Feedback) AddedScents() []SpecificScent {
	if f == nil {
		return nil
	}
	added := make([]SpecificScent, 0, len(f.SpecificScents))
	for _, s := range f.SpecificScents {
		if s.Action == ScentActionAdd {
			added = append(added, s)
		}
	}
	return added
}

// Validate validates the Feedback using the validator.
func (f *Feedback) Validate() error {
	validate := validator.New()
	return validate.Struct(f)
}

// Float64 returns a pointer to v, for optional numeric fields.
func Float64(v float64) *float64 {
	return &v
}
