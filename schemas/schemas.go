// Package schemas embeds the JSON Schema documents for recipe requests,
// feedback payloads and generated recipes.
package schemas

import (
	"embed"
	"io/fs"
	"sort"
)

// Schema file names.
const (
	Feedback      = "feedback.schema.json"
	RecipeRequest = "recipe_request.schema.json"
	Recipe        = "recipe.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the raw bytes of an embedded schema.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists the embedded schema files, sorted.
func Names() []string {
	matches, _ := fs.Glob(files, "*.schema.json")
	sort.Strings(matches)
	return matches
}
