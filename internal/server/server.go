// Package server provides the HTTP REST API for the fragrance customizer.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jonathan/fragrance-customizer/internal/config"
	"github.com/jonathan/fragrance-customizer/internal/db"
	"github.com/jonathan/fragrance-customizer/internal/logging"
	"github.com/jonathan/fragrance-customizer/internal/metrics"
	"github.com/jonathan/fragrance-customizer/internal/pipeline"
	"github.com/jonathan/fragrance-customizer/internal/server/middleware"
	"github.com/jonathan/fragrance-customizer/internal/server/ratelimit"
	"github.com/jonathan/fragrance-customizer/internal/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProfileCatalog lists and resolves base profiles.
type ProfileCatalog interface {
	Get(id string) (*types.BaseProfile, error)
	List() []types.BaseProfile
	Len() int
}

// RecipeRunner produces and deletes recipe runs. pipeline.Service satisfies it.
type RecipeRunner interface {
	Run(ctx context.Context, opts pipeline.RunOptions) (*pipeline.Result, error)
	DeleteRun(ctx context.Context, id uuid.UUID) error
}

// TranslatorStatus reports the translator's circuit breaker state.
// translate.GeminiTranslator satisfies it.
type TranslatorStatus interface {
	BreakerState() string
}

// RecipeStore reads persisted runs. db.DB satisfies it.
type RecipeStore interface {
	GetRecipeRun(ctx context.Context, id uuid.UUID) (*db.RecipeRun, error)
	ListRecipeRuns(ctx context.Context, filters db.RecipeRunFilters) ([]db.RecipeRunSummary, error)
	Ping(ctx context.Context) error
}

// Options holds everything the server needs. Store may be nil.
type Options struct {
	Config    config.ServerConfig
	RateLimit *ratelimit.Config
	Catalog   ProfileCatalog
	Recipes   RecipeRunner
	Store     RecipeStore
	// Translator is nil when translation is disabled.
	Translator TranslatorStatus
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	catalog         ProfileCatalog
	recipes         RecipeRunner
	store           RecipeStore
	translator      TranslatorStatus
	rateLimiter     *ratelimit.Limiter
	shutdownTimeout time.Duration
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Catalog == nil {
		return nil, errors.New("server requires a profile catalog")
	}
	if opts.Recipes == nil {
		return nil, errors.New("server requires a recipe runner")
	}

	s := &Server{
		catalog:         opts.Catalog,
		recipes:         opts.Recipes,
		store:           opts.Store,
		translator:      opts.Translator,
		rateLimiter:     ratelimit.NewLimiter(opts.RateLimit),
		shutdownTimeout: opts.Config.ShutdownTimeout,
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 30 * time.Second
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Config.Port),
		Handler:      s.routes(opts.Config.CORSOrigins),
		ReadTimeout:  opts.Config.ReadTimeout,
		WriteTimeout: opts.Config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(s.withRateLimit)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", s.handleListProfiles)
		r.Get("/{id}", s.handleGetProfile)
	})

	r.Route("/recipes", func(r chi.Router) {
		r.Post("/", s.handleCreateRecipe)
		r.Get("/", s.handleListRecipes)
		r.Get("/{id}", s.handleGetRecipe)
		r.Delete("/{id}", s.handleDeleteRecipe)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		s.errorResponse(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		s.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logging.Info().Msg("server stopped")
	return nil
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			metrics.RateLimited.WithLabelValues(routeGroup(r.URL.Path)).Inc()
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// routeGroup reduces a path to its first segment for metric labels.
func routeGroup(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/" + trimmed
}

// extractClientID uses the IP from RemoteAddr. Forwarded headers are not
// trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds() + 0.999)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	logging.Ctx(r.Context()).Warn().
		Str("client", s.extractClientID(r)).
		Str("path", r.URL.Path).
		Int("limit", info.Limit).
		Dur("retry_after", info.RetryAfter).
		Msg("rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, ErrorResponse{Error: message})
}
