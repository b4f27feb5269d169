package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(TranslationFile, KeyTranslateRecipe)
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.Language}}")
	assert.Contains(t, prompt, "{{.Payload}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(TranslationFile, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		expected string
	}{
		{"all placeholders", "Translate into {{.Language}}: {{.Payload}}", map[string]string{"Language": "French", "Payload": "{}"}, "Translate into French: {}"},
		{"no placeholders", "No placeholders here", map[string]string{"Key": "Value"}, "No placeholders here"},
		{"missing data", "Hello {{.Name}}", map[string]string{}, "Hello {{.Name}}"},
		{"repeated placeholder", "{{.A}}-{{.A}}", map[string]string{"A": "x"}, "x-x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.template, tt.data))
		})
	}
}

func TestRender(t *testing.T) {
	ClearCache()

	prompt, err := Render(TranslationFile, KeyTranslateRecipe, map[string]string{
		"Language":    "Japanese",
		"Ingredients": "Cedarwood, Lemon",
		"Payload":     `{"description":"x"}`,
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Japanese")
	assert.Contains(t, prompt, "Cedarwood, Lemon")
	assert.NotContains(t, prompt, "{{.")
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List(TranslationFile)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyTranslateRecipe, KeyTranslateText}, keys)
}

func TestCaching(t *testing.T) {
	ClearCache()

	first, err := Get(TranslationFile, KeyTranslateRecipe)
	require.NoError(t, err)
	second, err := Get(TranslationFile, KeyTranslateRecipe)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
