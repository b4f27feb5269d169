// Package pipeline orchestrates a recipe request: profile lookup, cache,
// synthesis, translation and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/fragrance-customizer/internal/cache"
	"github.com/jonathan/fragrance-customizer/internal/db"
	"github.com/jonathan/fragrance-customizer/internal/logging"
	"github.com/jonathan/fragrance-customizer/internal/metrics"
	"github.com/jonathan/fragrance-customizer/internal/synthesis"
	"github.com/jonathan/fragrance-customizer/internal/translate"
	"github.com/jonathan/fragrance-customizer/internal/types"
)

// Step names reported through ProgressEvent.
const (
	StepResolveProfile = "resolve_profile"
	StepCacheLookup    = "cache_lookup"
	StepSynthesize     = "synthesize"
	StepTranslate      = "translate"
	StepCacheStore     = "cache_store"
	StepPersist        = "persist"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// ProfileSource resolves base profiles by id. catalog.Catalog satisfies it.
type ProfileSource interface {
	Get(id string) (*types.BaseProfile, error)
}

// RecipeCache is the subset of cache.RecipeCache the pipeline needs.
type RecipeCache interface {
	Get(ctx context.Context, key string) (*types.Recipe, bool, error)
	Put(ctx context.Context, key string, recipe types.Recipe) error
	Delete(ctx context.Context, key string) error
}

// RunStore persists finished runs. db.DB satisfies it. Lookups return
// nil, nil when nothing matches.
type RunStore interface {
	SaveRecipeRun(ctx context.Context, run *db.RecipeRun) error
	GetRecipeRun(ctx context.Context, id uuid.UUID) (*db.RecipeRun, error)
	FindByFingerprint(ctx context.Context, fingerprint string) (*db.RecipeRun, error)
	DeleteRecipeRun(ctx context.Context, id uuid.UUID) error
}

var (
	// ErrNoStore is returned by operations that need a run store when none is configured.
	ErrNoStore = errors.New("recipe store not configured")
	// ErrRunNotFound is returned when a stored run does not exist.
	ErrRunNotFound = errors.New("recipe run not found")
)

// RunOptions holds the inputs of a single run
type RunOptions struct {
	ProfileID string
	Feedback  *types.Feedback
	// Language overrides the service default. Empty uses the default.
	Language   string
	SkipCache  bool
	OnProgress ProgressCallback
}

// Result is the outcome of a run.
type Result struct {
	// RunID is uuid.Nil when no store is configured or persisting failed.
	RunID       uuid.UUID
	Profile     *types.BaseProfile
	Recipe      types.Recipe
	Fingerprint string
	Language    string
	// FromCache is set when the recipe was reused from the cache or from
	// an earlier stored run with the same fingerprint.
	FromCache  bool
	Translated bool
	// FallbackCause is set when the fallback recipe was produced.
	FallbackCause error
	// TranslationErr is set when translation was requested but failed.
	TranslationErr error
	Duration       time.Duration

	fromStore bool
}

// Service runs recipe requests. Cache, store and translator are optional.
type Service struct {
	profiles        ProfileSource
	cache           RecipeCache
	store           RunStore
	translator      translate.Translator
	defaultLanguage string
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables the recipe cache.
func WithCache(c RecipeCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithStore enables run persistence.
func WithStore(store RunStore) Option {
	return func(s *Service) { s.store = store }
}

// WithTranslator enables translation. defaultLanguage applies when a run
// does not name a language; empty means untranslated by default.
func WithTranslator(t translate.Translator, defaultLanguage string) Option {
	return func(s *Service) {
		s.translator = t
		s.defaultLanguage = strings.TrimSpace(defaultLanguage)
	}
}

// NewService creates a pipeline service.
func NewService(profiles ProfileSource, opts ...Option) *Service {
	s := &Service{profiles: profiles}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func emitProgress(opts *RunOptions, step, message string, runID uuid.UUID, content any) {
	if opts.OnProgress == nil {
		return
	}
	event := ProgressEvent{Step: step, Message: message, Content: content}
	if runID != uuid.Nil {
		event.RunID = runID.String()
	}
	opts.OnProgress(event)
}

// Run executes one recipe request. The only error it returns is a failed
// profile lookup (catalog.ErrProfileNotFound) or a cancelled context;
// synthesis, cache, translation and store problems degrade the result instead.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	start := time.Now()
	log := logging.Ctx(ctx).With().Str("profile_id", opts.ProfileID).Logger()

	profile, err := s.profiles.Get(opts.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile: %w", err)
	}
	emitProgress(&opts, StepResolveProfile, fmt.Sprintf("Using base profile %s", profile.Name), uuid.Nil, profile)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = s.defaultLanguage
	}
	if s.translator == nil {
		language = ""
	}

	result := &Result{Profile: profile, Language: language}

	fingerprint, err := cache.Fingerprint(profile.ID, opts.Feedback, language)
	if err != nil {
		log.Warn().Err(err).Msg("could not fingerprint request, cache bypassed")
	}
	result.Fingerprint = fingerprint

	if s.cache != nil && fingerprint != "" && !opts.SkipCache {
		cached, hit, err := s.cache.Get(ctx, fingerprint)
		if err != nil {
			log.Warn().Err(err).Msg("recipe cache lookup failed")
		}
		metrics.RecordCacheLookup(hit)
		if hit {
			result.Recipe = *cached
			result.FromCache = true
			result.Translated = language != ""
			emitProgress(&opts, StepCacheLookup, "Recipe served from cache", uuid.Nil, nil)
		} else {
			emitProgress(&opts, StepCacheLookup, "Cache miss", uuid.Nil, nil)
		}
	}

	if s.store != nil && fingerprint != "" && !opts.SkipCache && !result.FromCache {
		s.reuseStoredRun(ctx, &opts, result)
	}

	if !result.FromCache {
		outcome := synthesis.Synthesize(profile, opts.Feedback)
		result.Recipe = outcome.Recipe
		result.FallbackCause = outcome.FallbackCause
		if outcome.Degraded() {
			log.Warn().Err(outcome.FallbackCause).Msg("feedback could not be applied, returning fallback recipe")
		}
		emitProgress(&opts, StepSynthesize, "Recipe synthesized", uuid.Nil, result.Recipe)

		if language != "" {
			s.translateInto(ctx, &opts, result, language)
		}

		if s.cache != nil && fingerprint != "" && result.TranslationErr == nil {
			if err := s.cache.Put(ctx, fingerprint, result.Recipe); err != nil {
				log.Warn().Err(err).Msg("recipe cache store failed")
			} else {
				emitProgress(&opts, StepCacheStore, "Recipe cached", uuid.Nil, nil)
			}
		}
	}

	if s.store != nil {
		s.persist(ctx, &opts, result)
	}

	result.Duration = time.Since(start)
	source := "generated"
	if result.FromCache {
		source = "cache"
	}
	if result.fromStore {
		source = "store"
	}
	metrics.RecordRecipe(source, result.Recipe.Degraded, result.Duration)

	log.Info().
		Str("run_id", runIDString(result.RunID)).
		Bool("from_cache", result.FromCache).
		Bool("degraded", result.Recipe.Degraded).
		Str("language", language).
		Dur("duration", result.Duration).
		Msg("recipe run completed")

	return result, nil
}

// reuseStoredRun serves a cache miss from the most recent stored run with
// the same fingerprint and warms the cache with it.
func (s *Service) reuseStoredRun(ctx context.Context, opts *RunOptions, result *Result) {
	run, err := s.store.FindByFingerprint(ctx, result.Fingerprint)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("find").Inc()
		logging.Ctx(ctx).Warn().Err(err).Msg("stored run lookup failed")
		return
	}
	if run == nil {
		return
	}

	result.Recipe = run.Recipe
	result.FromCache = true
	result.fromStore = true
	result.Translated = result.Language != ""
	if run.FallbackReason != "" {
		result.FallbackCause = errors.New(run.FallbackReason)
	}
	emitProgress(opts, StepCacheLookup, "Recipe reused from an earlier run", run.ID, nil)

	if s.cache != nil {
		if err := s.cache.Put(ctx, result.Fingerprint, run.Recipe); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("recipe cache store failed")
		}
	}
}

// DeleteRun removes a stored run and evicts its recipe from the cache.
func (s *Service) DeleteRun(ctx context.Context, id uuid.UUID) error {
	if s.store == nil {
		return ErrNoStore
	}

	run, err := s.store.GetRecipeRun(ctx, id)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("get").Inc()
		return fmt.Errorf("failed to load recipe run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	if err := s.store.DeleteRecipeRun(ctx, id); err != nil {
		metrics.StoreErrors.WithLabelValues("delete").Inc()
		return err
	}

	if s.cache != nil && run.Fingerprint != "" {
		if err := s.cache.Delete(ctx, run.Fingerprint); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("run_id", id.String()).Msg("failed to evict deleted run from cache")
		}
	}

	logging.Ctx(ctx).Info().Str("run_id", id.String()).Msg("recipe run deleted")
	return nil
}

func (s *Service) translateInto(ctx context.Context, opts *RunOptions, result *Result, language string) {
	translated, err := s.translator.Translate(ctx, result.Recipe, language)
	metrics.RecordTranslation(err)
	if err != nil {
		result.TranslationErr = err
		logging.Ctx(ctx).Warn().Err(err).Str("language", language).Msg("translation failed, returning untranslated recipe")
		emitProgress(opts, StepTranslate, "Translation failed, recipe left untranslated", uuid.Nil, nil)
		return
	}
	result.Recipe = translated
	result.Translated = true
	emitProgress(opts, StepTranslate, fmt.Sprintf("Recipe translated to %s", language), uuid.Nil, nil)
}

func (s *Service) persist(ctx context.Context, opts *RunOptions, result *Result) {
	run, err := db.NewRecipeRun(result.Profile, result.Fingerprint, result.Language, opts.Feedback, result.Recipe, result.FallbackCause)
	if err == nil {
		err = s.store.SaveRecipeRun(ctx, run)
	}
	if err != nil {
		metrics.StoreErrors.WithLabelValues("save").Inc()
		logging.Ctx(ctx).Error().Err(err).Msg("failed to persist recipe run")
		return
	}
	result.RunID = run.ID
	emitProgress(opts, StepPersist, "Recipe run saved", run.ID, nil)
}

func runIDString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
