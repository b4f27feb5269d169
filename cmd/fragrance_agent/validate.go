package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/fragrance-customizer/internal/schemas"
	rootschemas "github.com/jonathan/fragrance-customizer/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON file against an embedded schema",
	Long: fmt.Sprintf(`Validates a JSON document against one of the embedded JSON Schemas.

Known schemas: %s`, strings.Join(schemaAliases(), ", ")),
	RunE: runValidate,
}

var (
	validateSchema string
	validateJSON   string
)

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Schema name, e.g. feedback or recipe (required)")
	validateCmd.Flags().StringVarP(&validateJSON, "json", "j", "", "Path to JSON file to validate (required)")

	for _, name := range []string{"schema", "json"} {
		if err := validateCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	name, err := resolveSchemaName(validateSchema)
	if err != nil {
		return err
	}

	err = schemas.ValidateFile(name, validateJSON)
	var ve *schemas.ValidationError
	switch {
	case err == nil:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s conforms to %s\n", validateJSON, name)
		return nil
	case errors.As(err, &ve):
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed: %s\n", validateJSON)
		for _, fe := range ve.Errors {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  - %s: %s\n", fe.Field, fe.Message)
		}
		return fmt.Errorf("%s does not conform to %s", validateJSON, name)
	}
	return err
}

// resolveSchemaName accepts "feedback", "feedback.schema.json" or the
// request/recipe equivalents.
func resolveSchemaName(s string) (string, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, name := range rootschemas.Names() {
		alias := strings.TrimSuffix(name, ".schema.json")
		if s == name || s == alias {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown schema %q (known: %s)", s, strings.Join(schemaAliases(), ", "))
}

func schemaAliases() []string {
	names := rootschemas.Names()
	aliases := make([]string, len(names))
	for i, name := range names {
		aliases[i] = strings.TrimSuffix(name, ".schema.json")
	}
	return aliases
}
