package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jonathan/fragrance-customizer/internal/llm"
	"github.com/jonathan/fragrance-customizer/internal/logging"
	"github.com/jonathan/fragrance-customizer/internal/prompts"
	"github.com/jonathan/fragrance-customizer/internal/types"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
)

// Translator translates the human-readable text of a recipe.
// Ingredient names, amounts, percentages and codes are never changed.
type Translator interface {
	Translate(ctx context.Context, recipe types.Recipe, language string) (types.Recipe, error)
}

// Options configures a GeminiTranslator.
type Options struct {
	Tier llm.ModelTier
	// Timeout bounds each model call. Zero means no extra deadline.
	Timeout time.Duration
	// MaxFailures consecutive failures open the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// DefaultOptions returns conservative translator settings.
func DefaultOptions() Options {
	return Options{
		Tier:        llm.TierLite,
		Timeout:     30 * time.Second,
		MaxFailures: 5,
		OpenTimeout: time.Minute,
	}
}

// GeminiTranslator translates through an llm.Client guarded by a circuit breaker.
type GeminiTranslator struct {
	client  llm.Client
	opts    Options
	breaker *gobreaker.CircuitBreaker[string]
}

// New creates a translator over client.
func New(client llm.Client, opts Options) *GeminiTranslator {
	if opts.MaxFailures == 0 {
		opts.MaxFailures = DefaultOptions().MaxFailures
	}
	if opts.Tier == "" {
		opts.Tier = llm.TierLite
	}

	settings := gobreaker.Settings{
		Name:        "translator",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("translator circuit breaker changed state")
		},
	}

	return &GeminiTranslator{
		client:  client,
		opts:    opts,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

// BreakerState reports the circuit breaker state, e.g. "closed" or "open".
func (t *GeminiTranslator) BreakerState() string {
	return t.breaker.State().String()
}

type prose struct {
	Description    string `json:"description"`
	Rationale      string `json:"rationale"`
	ExpectedResult string `json:"expected_result"`
	Recommendation string `json:"recommendation"`
}

// Translate returns a copy of recipe with its description, explanation and
// test guide instructions in language. An empty language returns the recipe
// unchanged. On error the untranslated recipe is returned alongside it.
func (t *GeminiTranslator) Translate(ctx context.Context, recipe types.Recipe, language string) (types.Recipe, error) {
	language = strings.TrimSpace(language)
	if language == "" {
		return recipe, nil
	}

	ingredients := ingredientNames(recipe)
	source := prose{
		Description:    recipe.Description,
		Rationale:      recipe.Explanation.Rationale,
		ExpectedResult: recipe.Explanation.ExpectedResult,
		Recommendation: recipe.Explanation.Recommendation,
	}

	var translated prose
	var instructions string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := t.translateProse(gctx, source, language, ingredients)
		if err != nil {
			return &Error{Language: language, Field: "explanation", Cause: err}
		}
		translated = out
		return nil
	})
	g.Go(func() error {
		if recipe.TestGuide.Instructions == "" {
			return nil
		}
		out, err := t.translateText(gctx, recipe.TestGuide.Instructions, language, ingredients)
		if err != nil {
			return &Error{Language: language, Field: "instructions", Cause: err}
		}
		instructions = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return recipe, err
	}

	out := recipe
	out.Description = translated.Description
	out.Explanation = types.Explanation{
		Rationale:      translated.Rationale,
		ExpectedResult: translated.ExpectedResult,
		Recommendation: translated.Recommendation,
	}
	out.TestGuide.Entries = append([]types.GuideEntry(nil), recipe.TestGuide.Entries...)
	if instructions != "" {
		out.TestGuide.Instructions = instructions
	}
	return out, nil
}

func (t *GeminiTranslator) translateProse(ctx context.Context, source prose, language, ingredients string) (prose, error) {
	payload, err := json.Marshal(source)
	if err != nil {
		return prose{}, fmt.Errorf("failed to encode payload: %w", err)
	}
	prompt, err := prompts.Render(prompts.TranslationFile, prompts.KeyTranslateRecipe, map[string]string{
		"Language":    language,
		"Ingredients": ingredients,
		"Payload":     string(payload),
	})
	if err != nil {
		return prose{}, err
	}

	raw, err := t.call(ctx, func(ctx context.Context) (string, error) {
		return t.client.GenerateJSON(ctx, prompt, t.opts.Tier)
	})
	if err != nil {
		return prose{}, err
	}

	var out prose
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &out); err != nil {
		return prose{}, fmt.Errorf("failed to decode model response: %w", err)
	}
	if missing := missingFields(source, out); len(missing) > 0 {
		return prose{}, fmt.Errorf("model response is missing %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func (t *GeminiTranslator) translateText(ctx context.Context, text, language, ingredients string) (string, error) {
	prompt, err := prompts.Render(prompts.TranslationFile, prompts.KeyTranslateText, map[string]string{
		"Language":    language,
		"Ingredients": ingredients,
		"Text":        text,
	})
	if err != nil {
		return "", err
	}

	out, err := t.call(ctx, func(ctx context.Context) (string, error) {
		return t.client.GenerateContent(ctx, prompt, t.opts.Tier)
	})
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("model returned empty text")
	}
	return out, nil
}

// call runs fn through the breaker with the per-call timeout applied.
func (t *GeminiTranslator) call(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	return t.breaker.Execute(func() (string, error) {
		callCtx := ctx
		if t.opts.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
			defer cancel()
		}
		return fn(callCtx)
	})
}

func ingredientNames(recipe types.Recipe) string {
	seen := make(map[string]bool)
	names := make([]string, 0, len(recipe.Recipe10ml)+len(recipe.TestGuide.Entries))
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, item := range recipe.Recipe10ml {
		add(item.Name)
	}
	for _, e := range recipe.TestGuide.Entries {
		add(e.Name)
	}
	return strings.Join(names, ", ")
}

func missingFields(source, out prose) []string {
	var missing []string
	check := func(name, in, got string) {
		if in != "" && strings.TrimSpace(got) == "" {
			missing = append(missing, name)
		}
	}
	check("description", source.Description, out.Description)
	check("rationale", source.Rationale, out.Rationale)
	check("expected_result", source.ExpectedResult, out.ExpectedResult)
	check("recommendation", source.Recommendation, out.Recommendation)
	return missing
}
