package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jonathan/fragrance-customizer/internal/catalog"
	"github.com/jonathan/fragrance-customizer/internal/config"
	"github.com/jonathan/fragrance-customizer/internal/db"
	"github.com/jonathan/fragrance-customizer/internal/pipeline"
	"github.com/jonathan/fragrance-customizer/internal/server/ratelimit"
	"github.com/jonathan/fragrance-customizer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore implements RecipeStore and pipeline.RunStore in memory
type mockStore struct {
	runs    map[uuid.UUID]*db.RecipeRun
	pingErr error
	listErr error
	filters db.RecipeRunFilters
}

func newMockStore() *mockStore {
	return &mockStore{runs: make(map[uuid.UUID]*db.RecipeRun)}
}

func (m *mockStore) SaveRecipeRun(_ context.Context, run *db.RecipeRun) error {
	run.ID = uuid.New()
	run.CreatedAt = time.Now()
	m.runs[run.ID] = run
	return nil
}

func (m *mockStore) GetRecipeRun(_ context.Context, id uuid.UUID) (*db.RecipeRun, error) {
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	return run, nil
}

func (m *mockStore) FindByFingerprint(_ context.Context, fingerprint string) (*db.RecipeRun, error) {
	var latest *db.RecipeRun
	for _, run := range m.runs {
		if run.Fingerprint == fingerprint && (latest == nil || run.CreatedAt.After(latest.CreatedAt)) {
			latest = run
		}
	}
	return latest, nil
}

func (m *mockStore) DeleteRecipeRun(_ context.Context, id uuid.UUID) error {
	if _, ok := m.runs[id]; !ok {
		return errors.New("recipe run not found")
	}
	delete(m.runs, id)
	return nil
}

func (m *mockStore) ListRecipeRuns(_ context.Context, filters db.RecipeRunFilters) ([]db.RecipeRunSummary, error) {
	m.filters = filters
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []db.RecipeRunSummary
	for _, run := range m.runs {
		if filters.ProfileID != "" && run.ProfileID != filters.ProfileID {
			continue
		}
		out = append(out, db.RecipeRunSummary{ID: run.ID, ProfileID: run.ProfileID, ProfileName: run.ProfileName})
	}
	return out, nil
}

func (m *mockStore) Ping(context.Context) error {
	return m.pingErr
}

type testServer struct {
	*Server
	store *mockStore
}

func newTestServer(t *testing.T, withStore bool, rl *ratelimit.Config) *testServer {
	t.Helper()

	profiles, err := catalog.Default()
	require.NoError(t, err)

	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}

	opts := Options{
		Config:    config.Default().Server,
		RateLimit: rl,
		Catalog:   profiles,
	}

	var store *mockStore
	var pipelineOpts []pipeline.Option
	if withStore {
		store = newMockStore()
		opts.Store = store
		pipelineOpts = append(pipelineOpts, pipeline.WithStore(store))
	}
	opts.Recipes = pipeline.NewService(profiles, pipelineOpts...)

	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return &testServer{Server: s, store: store}
}

func (ts *testServer) do(method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	profiles, err := catalog.Default()
	require.NoError(t, err)
	_, err = New(Options{Catalog: profiles})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, false, nil)

	w := ts.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]any](t, w)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "disabled", resp["database"])
	assert.Equal(t, "disabled", resp["translation"])
	assert.EqualValues(t, ts.catalog.Len(), resp["profiles"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

type breakerState string

func (b breakerState) BreakerState() string { return string(b) }

func TestHealthEndpoint_TranslatorState(t *testing.T) {
	ts := newTestServer(t, false, nil)
	ts.translator = breakerState("open")

	resp := decode[map[string]any](t, ts.do(http.MethodGet, "/health", ""))
	assert.Equal(t, "open", resp["translation"])
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	ts := newTestServer(t, true, nil)
	ts.store.pingErr = errors.New("connection refused")

	w := ts.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]any](t, w)
	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, "unavailable", resp["database"])
}

func TestListProfiles(t *testing.T) {
	ts := newTestServer(t, false, nil)

	w := ts.do(http.MethodGet, "/profiles", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[ProfileListResponse](t, w)
	assert.Equal(t, len(resp.Profiles), resp.Count)
	require.NotEmpty(t, resp.Profiles)
	assert.Equal(t, "p1", resp.Profiles[0].ID)
}

func TestGetProfile(t *testing.T) {
	ts := newTestServer(t, false, nil)

	w := ts.do(http.MethodGet, "/profiles/p1", "")
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[types.BaseProfile](t, w)
	assert.Equal(t, "Quiet Forest", profile.Name)

	w = ts.do(http.MethodGet, "/profiles/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRecipe(t *testing.T) {
	ts := newTestServer(t, true, nil)

	w := ts.do(http.MethodPost, "/recipes", `{"perfume_id": "p1", "feedback": {"retention_percentage": 70}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[RecipeResponse](t, w)
	assert.Equal(t, "Quiet Forest", resp.Recipe.BasedOn)
	assert.NotEmpty(t, resp.Recipe.Recipe10ml)
	assert.False(t, resp.Recipe.Degraded)
	require.NotEmpty(t, resp.RunID)

	// the stored run is retrievable
	w = ts.do(http.MethodGet, "/recipes/"+resp.RunID, "")
	require.Equal(t, http.StatusOK, w.Code)
	run := decode[db.RecipeRun](t, w)
	assert.Equal(t, "p1", run.ProfileID)
	assert.Equal(t, resp.Recipe, run.Recipe)
}

func TestCreateRecipe_WithoutFeedback(t *testing.T) {
	ts := newTestServer(t, false, nil)

	w := ts.do(http.MethodPost, "/recipes", `{"perfume_id": "p2"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[RecipeResponse](t, w)
	assert.Empty(t, resp.RunID)
	assert.NotEmpty(t, resp.Recipe.TestGuide.Entries)
}

func TestCreateRecipe_Errors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantDetails bool
	}{
		{name: "unknown profile", body: `{"perfume_id": "p999"}`, wantStatus: http.StatusNotFound},
		{name: "missing profile id", body: `{"feedback": {}}`, wantStatus: http.StatusBadRequest, wantDetails: true},
		{name: "unknown top-level field", body: `{"perfume_id": "p1", "extra": 1}`, wantStatus: http.StatusBadRequest, wantDetails: true},
		{name: "retention out of range", body: `{"perfume_id": "p1", "feedback": {"retention_percentage": 101}}`, wantStatus: http.StatusBadRequest, wantDetails: true},
		{name: "bad preference", body: `{"perfume_id": "p1", "feedback": {"category_preferences": {"woody": "more"}}}`, wantStatus: http.StatusBadRequest, wantDetails: true},
		{name: "malformed json", body: `{"perfume_id":`, wantStatus: http.StatusBadRequest, wantDetails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, false, nil)

			w := ts.do(http.MethodPost, "/recipes", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			resp := decode[ErrorResponse](t, w)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.wantDetails, len(resp.Details) > 0)
		})
	}
}

func TestCreateRecipe_BodyTooLarge(t *testing.T) {
	ts := newTestServer(t, false, nil)

	body := `{"perfume_id": "p1", "language": "` + strings.Repeat("x", maxRequestBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/recipes", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestGetRecipe(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		ts := newTestServer(t, false, nil)
		w := ts.do(http.MethodGet, "/recipes/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		ts := newTestServer(t, true, nil)
		w := ts.do(http.MethodGet, "/recipes/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		ts := newTestServer(t, true, nil)
		w := ts.do(http.MethodGet, "/recipes/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteRecipe(t *testing.T) {
	t.Run("deletes stored run", func(t *testing.T) {
		ts := newTestServer(t, true, nil)

		w := ts.do(http.MethodPost, "/recipes", `{"perfume_id": "p1"}`)
		require.Equal(t, http.StatusOK, w.Code)
		runID := decode[RecipeResponse](t, w).RunID
		require.NotEmpty(t, runID)

		w = ts.do(http.MethodDelete, "/recipes/"+runID, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, ts.store.runs)

		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/recipes/"+runID, "").Code)
		assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/recipes/"+runID, "").Code)
	})

	t.Run("no store", func(t *testing.T) {
		ts := newTestServer(t, false, nil)
		assert.Equal(t, http.StatusServiceUnavailable, ts.do(http.MethodDelete, "/recipes/"+uuid.NewString(), "").Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		ts := newTestServer(t, true, nil)
		assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodDelete, "/recipes/nope", "").Code)
	})
}

func TestListRecipes(t *testing.T) {
	ts := newTestServer(t, true, nil)

	for _, id := range []string{"p1", "p1", "p2"} {
		w := ts.do(http.MethodPost, "/recipes", `{"perfume_id": "`+id+`"}`)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(http.MethodGet, "/recipes?profile_id=p1&limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[RecipeListResponse](t, w)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "p1", ts.store.filters.ProfileID)
	assert.Equal(t, 10, ts.store.filters.Limit)

	w = ts.do(http.MethodGet, "/recipes?limit=100000", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, db.MaxListLimit, ts.store.filters.Limit)

	w = ts.do(http.MethodGet, "/recipes?degraded=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, ts.store.filters.Degraded)
	assert.True(t, *ts.store.filters.Degraded)
}

func TestListRecipes_Errors(t *testing.T) {
	ts := newTestServer(t, true, nil)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/recipes?limit=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/recipes?limit=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/recipes?degraded=maybe", "").Code)

	ts.store.listErr = errors.New("db exploded")
	w := ts.do(http.MethodGet, "/recipes", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "exploded")

	empty := newTestServer(t, true, nil)
	w = empty.do(http.MethodGet, "/recipes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"runs": [], "count": 0}`, w.Body.String())

	none := newTestServer(t, false, nil)
	assert.Equal(t, http.StatusServiceUnavailable, none.do(http.MethodGet, "/recipes", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, false, nil)
	ts.do(http.MethodGet, "/profiles", "")

	w := ts.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fragrance_api_requests_total")
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, false, nil)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/nope", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, ts.do(http.MethodDelete, "/profiles", "").Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, false, &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/recipes", Method: http.MethodPost, Limit: 2, Window: time.Hour, Burst: 2},
			{Path: "/health", Method: http.MethodGet},
		},
	})

	for i := 0; i < 2; i++ {
		w := ts.do(http.MethodPost, "/recipes", `{"perfume_id": "p1"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := ts.do(http.MethodPost, "/recipes", `{"perfume_id": "p1"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "rate_limit_exceeded", resp["error"])

	// reads use the default bucket
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/profiles", "").Code)

	// health is never limited
	for i := 0; i < 10; i++ {
		w = ts.do(http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, false, nil)

	req := httptest.NewRequest(http.MethodOptions, "/recipes", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)

	assert.Contains(t, []int{http.StatusOK, http.StatusNoContent}, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouteGroup(t *testing.T) {
	assert.Equal(t, "/recipes", routeGroup("/recipes/abc"))
	assert.Equal(t, "/recipes", routeGroup("/recipes"))
	assert.Equal(t, "/", routeGroup("/"))
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	ts := newTestServer(t, false, nil)
	ts.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ts.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
