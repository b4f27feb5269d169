package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/fragrance-customizer/internal/synthesis"
	"github.com/jonathan/fragrance-customizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forest() *types.BaseProfile {
	return &types.BaseProfile{
		ID:   "p1",
		Name: "Quiet Forest",
		CategoryScores: map[types.Category]float64{
			types.CategoryWoody:  8,
			types.CategoryMusky:  6,
			types.CategoryCitrus: 3,
		},
	}
}

func TestPrintProfile(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintProfile(forest())
	output := buf.String()

	assert.Contains(t, output, "BASE PROFILE")
	assert.Contains(t, output, "Quiet Forest")
	assert.Less(t, strings.Index(output, "woody"), strings.Index(output, "musky"))
	assert.Less(t, strings.Index(output, "musky"), strings.Index(output, "citrus"))
}

func TestPrintProfile_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintProfile(nil)
	assert.Empty(t, buf.String())
}

func TestPrintFeedback(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFeedback(&types.Feedback{
		RetentionPercentage: types.Float64(70),
		CategoryPreferences: map[types.Category]types.Preference{types.CategoryFloral: types.PreferenceIncrease},
		UserCharacteristics: map[types.Characteristic]types.Level{types.CharacteristicSweetness: types.LevelHigh},
		SpecificScents: []types.SpecificScent{
			{Name: "Vanilla", Action: types.ScentActionAdd, Ratio: types.Float64(40)},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "FEEDBACK")
	assert.Contains(t, output, "Retention: 70%")
	assert.Contains(t, output, "floral: increase")
	assert.Contains(t, output, "sweetness: high")
	assert.Contains(t, output, "add Vanilla (40%)")
}

func TestPrintFeedback_NilUsesDefaultRetention(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFeedback(nil)

	output := buf.String()
	assert.Contains(t, output, "Retention: 50%")
	assert.NotContains(t, output, "Preferences")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	recipe, err := synthesis.Generate(forest(), nil)
	require.NoError(t, err)

	p.PrintSummary(&recipe)
	output := buf.String()

	assert.Contains(t, output, "RECIPE")
	assert.Contains(t, output, "TEST GUIDE")
	assert.Contains(t, output, "EXPLANATION")
	assert.Contains(t, output, "Cedarwood")
	assert.Contains(t, output, "Rationale:")
	assert.NotContains(t, output, "Fallback recipe")
}

func TestPrintRecipe_Degraded(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	recipe := synthesis.Fallback(forest())
	p.PrintRecipe(&recipe)

	output := buf.String()
	assert.Contains(t, output, "Fallback recipe")
	assert.Contains(t, output, "1.00g")
	assert.Contains(t, output, "5.00g")
}

func TestPrintRecipe_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRecipe(nil)
	p.PrintRecipe(&types.Recipe{})
	p.PrintTestGuide(&types.TestGuide{})
	p.PrintExplanation(&types.Explanation{})

	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"empty", "", 10, nil},
		{"fits", "short text", 20, []string{"short text"}},
		{"breaks on words", "one two three four", 9, []string{"one two", "three", "four"}},
		{"long word kept whole", "supercalifragilistic ok", 5, []string{"supercalifragilistic", "ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrap(tt.text, tt.width))
		})
	}
}
