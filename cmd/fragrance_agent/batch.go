package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/jonathan/fragrance-customizer/internal/logging"
	"github.com/jonathan/fragrance-customizer/internal/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate recipes for every feedback file in a directory",
	Long: `Reads every *.json feedback file in --dir, generates one recipe per file
for the given base profile and writes <name>.recipe.json files into --out.

Files are processed concurrently. Invalid feedback files are reported and
skipped; the command exits non-zero if any file failed.`,
	RunE: runBatch,
}

var (
	batchProfileID   string
	batchDir         string
	batchOutput      string
	batchLanguage    string
	batchConcurrency int
	batchSave        bool
)

func init() {
	batchCmd.Flags().StringVarP(&batchProfileID, "profile", "p", "", "Base profile id (required)")
	batchCmd.Flags().StringVarP(&batchDir, "dir", "d", "", "Directory of feedback JSON files (required)")
	batchCmd.Flags().StringVarP(&batchOutput, "out", "o", "", "Output directory for recipes (required)")
	batchCmd.Flags().StringVarP(&batchLanguage, "language", "l", "", "Translate recipe text into this language")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", runtime.NumCPU(), "Maximum files processed at once")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "Persist runs to the database (requires DATABASE_URL)")

	for _, name := range []string{"profile", "dir", "out"} {
		if err := batchCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	rootCmd.AddCommand(batchCmd)
}

// batchItem is the outcome of one feedback file.
type batchItem struct {
	Input    string
	Output   string
	Degraded bool
	Err      error
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	inputs, err := listFeedbackFiles(batchDir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no .json files found in %s", batchDir)
	}
	if err := os.MkdirAll(batchOutput, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	a, err := newApp(ctx, appConfig, appOptions{Store: batchSave})
	if err != nil {
		return err
	}
	defer a.Close()

	// Fail fast on an unknown profile instead of once per file.
	if _, err := a.catalog.Get(batchProfileID); err != nil {
		return err
	}

	items := make([]batchItem, len(inputs))
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(batchConcurrency, 1))

	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			item := processBatchFile(gctx, a.service, input)
			items[i] = item

			mu.Lock()
			done++
			if verbose {
				status := "ok"
				if item.Err != nil {
					status = "error"
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s: %s\n", done, len(inputs), filepath.Base(input), status)
			}
			mu.Unlock()

			// Only a cancelled context stops the batch.
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return reportBatch(cmd, items)
}

// processBatchFile generates the recipe for one feedback file and writes it.
func processBatchFile(ctx context.Context, service *pipeline.Service, input string) batchItem {
	item := batchItem{Input: input}

	feedback, err := readFeedbackFile(input)
	if err != nil {
		item.Err = err
		return item
	}

	result, err := service.Run(ctx, pipeline.RunOptions{
		ProfileID: batchProfileID,
		Feedback:  feedback,
		Language:  batchLanguage,
	})
	if err != nil {
		item.Err = err
		return item
	}
	item.Degraded = result.Recipe.Degraded

	item.Output = filepath.Join(batchOutput, outputName(input))
	if err := writeJSONFile(item.Output, result.Recipe); err != nil {
		item.Err = err
	}
	return item
}

// outputName maps "dir/alice.json" to "alice.recipe.json".
func outputName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".recipe.json"
}

// listFeedbackFiles returns the .json files directly inside dir, sorted.
// Previously generated *.recipe.json files are skipped.
func listFeedbackFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".json") || strings.HasSuffix(name, ".recipe.json") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

func reportBatch(cmd *cobra.Command, items []batchItem) error {
	var failed, degraded int
	for _, item := range items {
		switch {
		case item.Err != nil:
			failed++
			logging.Error().Err(item.Err).Str("file", item.Input).Msg("batch item failed")
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", filepath.Base(item.Input), item.Err)
		case item.Degraded:
			degraded++
		}
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Generated %d of %d recipes into %s (%d fallback, %d failed)\n",
		len(items)-failed, len(items), batchOutput, degraded, failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d feedback files failed", failed, len(items))
	}
	return nil
}
