package main

import (
	"context"
	"fmt"

	"github.com/jonathan/fragrance-customizer/internal/cache"
	"github.com/jonathan/fragrance-customizer/internal/catalog"
	"github.com/jonathan/fragrance-customizer/internal/config"
	"github.com/jonathan/fragrance-customizer/internal/db"
	"github.com/jonathan/fragrance-customizer/internal/llm"
	"github.com/jonathan/fragrance-customizer/internal/logging"
	"github.com/jonathan/fragrance-customizer/internal/pipeline"
	"github.com/jonathan/fragrance-customizer/internal/translate"
)

// app holds the wired dependencies shared by the subcommands.
type app struct {
	catalog *catalog.Catalog
	service *pipeline.Service
	store   *db.DB
	// translator is nil when no API key is configured.
	translator *translate.GeminiTranslator
	closers    []func()
}

// appOptions selects which optional dependencies to open.
type appOptions struct {
	// Store connects to the database when one is configured.
	Store bool
	// NoCache skips the recipe cache even when enabled in config.
	NoCache bool
}

// newApp builds the pipeline service from cfg. Optional dependencies that
// are not configured are simply left out.
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	profiles, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load profile catalog: %w", err)
	}

	a := &app{catalog: profiles}
	var serviceOpts []pipeline.Option

	if cfg.Cache.Enabled && !opts.NoCache {
		recipeCache, err := cache.Open(cfg.Cache.Dir, cfg.Cache.TTL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open recipe cache: %w", err)
		}
		a.closers = append(a.closers, func() { _ = recipeCache.Close() })
		serviceOpts = append(serviceOpts, pipeline.WithCache(recipeCache))
		logging.Debug().Str("dir", cfg.Cache.Dir).Dur("ttl", cfg.Cache.TTL).Msg("recipe cache enabled")
	}

	if opts.Store && cfg.Database.URL != "" {
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, database.Close)
		if err := database.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to apply database schema: %w", err)
		}
		a.store = database
		serviceOpts = append(serviceOpts, pipeline.WithStore(database))
		logging.Debug().Msg("recipe store enabled")
	}

	if cfg.LLM.APIKey != "" {
		translator, closeClient, err := newTranslator(ctx, cfg.LLM)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, closeClient)
		a.translator = translator
		serviceOpts = append(serviceOpts, pipeline.WithTranslator(translator, cfg.LLM.Language))
		logging.Debug().Str("language", cfg.LLM.Language).Str("tier", cfg.LLM.ModelTier).Msg("translation enabled")
	}

	a.service = pipeline.NewService(profiles, serviceOpts...)
	return a, nil
}

// newTranslator returns a Gemini-backed translator and a func that closes its client.
func newTranslator(ctx context.Context, cfg config.LLMConfig) (*translate.GeminiTranslator, func(), error) {
	tier, err := llm.ParseTier(cfg.ModelTier)
	if err != nil {
		return nil, nil, err
	}

	llmConfig := llm.DefaultConfig()
	if cfg.Model != "" {
		llmConfig = llmConfig.WithModel(tier, cfg.Model)
	}

	client, err := llm.NewGeminiClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	opts := translate.DefaultOptions()
	opts.Tier = tier
	opts.Timeout = cfg.Timeout
	if cfg.MaxFailures > 0 {
		opts.MaxFailures = cfg.MaxFailures
	}

	return translate.New(client, opts), func() { _ = client.Close() }, nil
}

// Close releases everything newApp opened, in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
