package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/jonathan/fragrance-customizer/internal/observability"
	"github.com/jonathan/fragrance-customizer/internal/pipeline"
	"github.com/jonathan/fragrance-customizer/internal/schemas"
	"github.com/jonathan/fragrance-customizer/internal/types"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one recipe from a base profile and a feedback file",
	Long: `Generates a customized recipe for a base profile. Feedback is read from a
JSON file validated against the feedback schema; without --feedback the base
profile is blended with default retention.

The recipe is written as JSON to --out, or to stdout when --out is not given.`,
	RunE: runGenerate,
}

var (
	generateProfileID string
	generateFeedback  string
	generateLanguage  string
	generateOutput    string
	generateNoCache   bool
	generateSave      bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateProfileID, "profile", "p", "", "Base profile id, e.g. p1 (required)")
	generateCmd.Flags().StringVarP(&generateFeedback, "feedback", "f", "", "Path to feedback JSON file")
	generateCmd.Flags().StringVarP(&generateLanguage, "language", "l", "", "Translate the recipe text into this language (requires GEMINI_API_KEY)")
	generateCmd.Flags().StringVarP(&generateOutput, "out", "o", "", "Path to output recipe JSON file")
	generateCmd.Flags().BoolVar(&generateNoCache, "no-cache", false, "Bypass the recipe cache")
	generateCmd.Flags().BoolVar(&generateSave, "save", false, "Persist the run to the database (requires DATABASE_URL)")

	if err := generateCmd.MarkFlagRequired("profile"); err != nil {
		panic(fmt.Sprintf("failed to mark profile flag as required: %v", err))
	}

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	feedback, err := readFeedbackFile(generateFeedback)
	if err != nil {
		return err
	}

	if generateSave && appConfig.Database.URL == "" {
		return fmt.Errorf("--save requires DATABASE_URL or database.url in the config file")
	}

	a, err := newApp(ctx, appConfig, appOptions{Store: generateSave, NoCache: generateNoCache})
	if err != nil {
		return err
	}
	defer a.Close()

	var printer *observability.Printer
	opts := pipeline.RunOptions{
		ProfileID: generateProfileID,
		Feedback:  feedback,
		Language:  generateLanguage,
	}
	if verbose {
		printer = observability.NewPrinter(cmd.ErrOrStderr())
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "→ %s: %s\n", event.Step, event.Message)
		}
	}

	result, err := a.service.Run(ctx, opts)
	if err != nil {
		return err
	}

	if printer != nil {
		printer.PrintProfile(result.Profile)
		printer.PrintFeedback(feedback)
		printer.PrintSummary(&result.Recipe)
	}
	if result.FallbackCause != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: feedback could not be applied, fallback recipe returned: %v\n", result.FallbackCause)
	}
	if result.TranslationErr != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: translation failed, recipe left untranslated: %v\n", result.TranslationErr)
	}

	if generateOutput == "" {
		return writeJSON(cmd.OutOrStdout(), result.Recipe)
	}
	if err := writeJSONFile(generateOutput, result.Recipe); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recipe written to %s\n", generateOutput)
	return nil
}

// readFeedbackFile loads and validates a feedback document. An empty path
// means no feedback.
func readFeedbackFile(path string) (*types.Feedback, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("feedback file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read feedback file: %w", err)
	}

	feedback, err := schemas.DecodeFeedback(data)
	if err != nil {
		return nil, fmt.Errorf("invalid feedback in %s: %w", path, err)
	}
	return feedback, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
