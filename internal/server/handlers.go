package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jonathan/fragrance-customizer/internal/db"
	"github.com/jonathan/fragrance-customizer/internal/logging"
	"github.com/jonathan/fragrance-customizer/internal/pipeline"
	"github.com/jonathan/fragrance-customizer/internal/schemas"
	"github.com/jonathan/fragrance-customizer/internal/types"
	rootschemas "github.com/jonathan/fragrance-customizer/schemas"
)

// maxRequestBody bounds POST /recipes bodies.
const maxRequestBody = 1 << 20

// RecipeRequest represents the request body for POST /recipes
type RecipeRequest struct {
	PerfumeID string          `json:"perfume_id"`
	Feedback  json.RawMessage `json:"feedback,omitempty"`
	Language  string          `json:"language,omitempty"`
}

// RecipeResponse represents the response for POST /recipes
type RecipeResponse struct {
	RunID      string       `json:"run_id,omitempty"`
	Recipe     types.Recipe `json:"recipe"`
	Language   string       `json:"language,omitempty"`
	FromCache  bool         `json:"from_cache"`
	Translated bool         `json:"translated"`
}

// RecipeListResponse represents the response for GET /recipes
type RecipeListResponse struct {
	Runs  []db.RecipeRunSummary `json:"runs"`
	Count int                   `json:"count"`
}

// ProfileListResponse represents the response for GET /profiles
type ProfileListResponse struct {
	Profiles []types.BaseProfile `json:"profiles"`
	Count    int                 `json:"count"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string               `json:"error"`
	Details []schemas.FieldError `json:"details,omitempty"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":      "ok",
		"profiles":    s.catalog.Len(),
		"database":    "disabled",
		"translation": "disabled",
	}
	if s.translator != nil {
		resp["translation"] = s.translator.BreakerState()
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("health check: database ping failed")
			resp["status"] = "degraded"
			resp["database"] = "unavailable"
		} else {
			resp["database"] = "ok"
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListProfiles returns the persona catalog
func (s *Server) handleListProfiles(w http.ResponseWriter, _ *http.Request) {
	profiles := s.catalog.List()
	s.jsonResponse(w, http.StatusOK, ProfileListResponse{Profiles: profiles, Count: len(profiles)})
}

// handleGetProfile returns one base profile
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleCreateRecipe synthesizes a recipe for a profile and feedback
func (s *Server) handleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := schemas.Validate(rootschemas.RecipeRequest, body); err != nil {
		s.handleError(w, r, err)
		return
	}

	var req RecipeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	feedback, err := schemas.DecodeFeedback(req.Feedback)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	result, err := s.recipes.Run(r.Context(), pipeline.RunOptions{
		ProfileID: strings.TrimSpace(req.PerfumeID),
		Feedback:  feedback,
		Language:  req.Language,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	resp := RecipeResponse{
		Recipe:     result.Recipe,
		Language:   result.Language,
		FromCache:  result.FromCache,
		Translated: result.Translated,
	}
	if result.RunID != uuid.Nil {
		resp.RunID = result.RunID.String()
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleGetRecipe returns a stored recipe run
func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.handleError(w, r, ErrStoreUnavailable)
		return
	}

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.handleError(w, r, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	run, err := s.store.GetRecipeRun(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if run == nil {
		s.handleError(w, r, &ErrRunNotFound{ID: idStr})
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}

// handleDeleteRecipe deletes a stored run and its cached recipe
func (s *Server) handleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.handleError(w, r, ErrStoreUnavailable)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, r, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return
	}

	if err := s.recipes.DeleteRun(r.Context(), id); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListRecipes lists recent recipe runs
func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.handleError(w, r, ErrStoreUnavailable)
		return
	}

	filters, err := parseListFilters(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	runs, err := s.store.ListRecipeRuns(r.Context(), filters)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if runs == nil {
		runs = []db.RecipeRunSummary{}
	}

	s.jsonResponse(w, http.StatusOK, RecipeListResponse{Runs: runs, Count: len(runs)})
}

func parseListFilters(r *http.Request) (db.RecipeRunFilters, error) {
	q := r.URL.Query()
	filters := db.RecipeRunFilters{ProfileID: strings.TrimSpace(q.Get("profile_id"))}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return filters, &ErrValidation{Field: "limit", Message: "must be a positive integer"}
		}
		filters.Limit = min(limit, db.MaxListLimit)
	}

	if v := q.Get("degraded"); v != "" {
		degraded, err := strconv.ParseBool(v)
		if err != nil {
			return filters, &ErrValidation{Field: "degraded", Message: "must be true or false"}
		}
		filters.Degraded = &degraded
	}

	return filters, nil
}

// handleError maps err to a status code and writes it. Internal errors are
// logged and not echoed to the client.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)

	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		s.jsonResponse(w, status, ErrorResponse{Error: "request validation failed", Details: schemaErr.Errors})
		return
	}

	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logging.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		s.errorResponse(w, status, "internal server error")
		return
	}

	s.errorResponse(w, status, err.Error())
}
