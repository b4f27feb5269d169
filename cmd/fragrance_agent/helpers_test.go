package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/jonathan/fragrance-customizer/internal/schemas"
	"github.com/jonathan/fragrance-customizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFeedbackFile(t *testing.T) {
	feedback, err := readFeedbackFile(filepath.Join("testdata", "feedback", "citrus_lover.json"))
	require.NoError(t, err)
	require.NotNil(t, feedback)
	assert.Equal(t, 60.0, feedback.Retention())
	assert.Equal(t, types.PreferenceIncrease, feedback.CategoryPreferences[types.CategoryCitrus])

	feedback, err = readFeedbackFile("")
	require.NoError(t, err)
	assert.Nil(t, feedback)
}

func TestReadFeedbackFile_Errors(t *testing.T) {
	_, err := readFeedbackFile(filepath.Join("testdata", "feedback", "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "feedback file not found")

	_, err = readFeedbackFile(filepath.Join("testdata", "feedback", "invalid.json"))
	require.Error(t, err)
	var ve *schemas.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestListFeedbackFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.JSON", "old.recipe.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	files, err := listFeedbackFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.JSON"), filepath.Join(dir, "b.json")}, files)

	_, err = listFeedbackFiles(filepath.Join(dir, "does-not-exist"))
	assert.Error(t, err)
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "alice.recipe.json", outputName(filepath.Join("in", "alice.json")))
	assert.Equal(t, "bob.recipe.json", outputName("bob.JSON"))
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, writeJSONFile(path, map[string]int{"a": 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]int
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 1, got["a"])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, []string{"x"}))
	assert.JSONEq(t, `["x"]`, buf.String())
}

func TestResolveSchemaName(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "feedback", want: "feedback.schema.json"},
		{input: "Recipe", want: "recipe.schema.json"},
		{input: "recipe_request.schema.json", want: "recipe_request.schema.json"},
		{input: "job_profile", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := resolveSchemaName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopCategories(t *testing.T) {
	p := types.BaseProfile{CategoryScores: map[types.Category]float64{
		types.CategoryWoody:  8,
		types.CategoryMusky:  6,
		types.CategoryCitrus: 6,
		types.CategoryFloral: 2,
	}}
	assert.Equal(t, "woody, citrus, musky", topCategories(p, 3))
	assert.Equal(t, "woody", topCategories(p, 1))
	assert.Equal(t, "", topCategories(types.BaseProfile{}, 3))
}
