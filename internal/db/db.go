// Package db provides PostgreSQL persistence for generated recipes.
package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/fragrance-customizer/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping checks that the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// EnsureSchema creates the recipe tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// SaveRecipeRun inserts a run. A nil ID is replaced with a new UUID; the
// stored ID and creation time are written back into run.
func (db *DB) SaveRecipeRun(ctx context.Context, run *RecipeRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	feedback := []byte(run.Feedback)
	if len(feedback) == 0 {
		feedback = []byte("{}")
	}
	recipe, err := json.Marshal(run.Recipe)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO recipe_runs (id, profile_id, profile_name, fingerprint, language, feedback, recipe, degraded, fallback_reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at`,
		run.ID, run.ProfileID, run.ProfileName, run.Fingerprint, run.Language,
		feedback, recipe, run.Degraded, run.FallbackReason,
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save recipe run: %w", err)
	}
	return nil
}

// GetRecipeRun retrieves a run by ID. Returns nil, nil when it does not exist.
func (db *DB) GetRecipeRun(ctx context.Context, id uuid.UUID) (*RecipeRun, error) {
	var run RecipeRun
	var feedback, recipe []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, profile_id, profile_name, fingerprint, language, feedback, recipe, degraded, fallback_reason, created_at
		 FROM recipe_runs WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.ProfileID, &run.ProfileName, &run.Fingerprint, &run.Language,
		&feedback, &recipe, &run.Degraded, &run.FallbackReason, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe run: %w", err)
	}

	run.Feedback = json.RawMessage(feedback)
	if err := json.Unmarshal(recipe, &run.Recipe); err != nil {
		return nil, fmt.Errorf("failed to decode stored recipe %s: %w", id, err)
	}
	return &run, nil
}

// FindByFingerprint returns the most recent run with the given fingerprint, or nil, nil.
func (db *DB) FindByFingerprint(ctx context.Context, fingerprint string) (*RecipeRun, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`SELECT id FROM recipe_runs WHERE fingerprint = $1 ORDER BY created_at DESC LIMIT 1`,
		fingerprint,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find recipe run: %w", err)
	}
	return db.GetRecipeRun(ctx, id)
}

// ListRecipeRuns retrieves recent runs, newest first, with optional filters
func (db *DB) ListRecipeRuns(ctx context.Context, filters RecipeRunFilters) ([]RecipeRunSummary, error) {
	query, args := buildListQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe runs: %w", err)
	}
	defer rows.Close()

	runs := []RecipeRunSummary{}
	for rows.Next() {
		var s RecipeRunSummary
		if err := rows.Scan(&s.ID, &s.ProfileID, &s.ProfileName, &s.Language, &s.Degraded, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe run: %w", err)
		}
		runs = append(runs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list recipe runs: %w", err)
	}
	return runs, nil
}

// DeleteRecipeRun deletes a run by ID
func (db *DB) DeleteRecipeRun(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM recipe_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("recipe run not found: %s", id)
	}
	return nil
}

// PruneRecipeRuns deletes runs created before cutoff and returns how many were removed
func (db *DB) PruneRecipeRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.pool.Exec(ctx, `DELETE FROM recipe_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune recipe runs: %w", err)
	}
	return result.RowsAffected(), nil
}

func buildListQuery(filters RecipeRunFilters) (string, []any) {
	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `SELECT id, profile_id, profile_name, language, degraded, created_at
		FROM recipe_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.ProfileID != "" {
		query += fmt.Sprintf(" AND profile_id = $%d", argNum)
		args = append(args, filters.ProfileID)
		argNum++
	}
	if filters.Degraded != nil {
		query += fmt.Sprintf(" AND degraded = $%d", argNum)
		args = append(args, *filters.Degraded)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, limit)
	return query, args
}

// NewRecipeRun assembles a run record ready for SaveRecipeRun.
func NewRecipeRun(profile *types.BaseProfile, fingerprint, language string, feedback *types.Feedback, recipe types.Recipe, fallback error) (*RecipeRun, error) {
	raw, err := json.Marshal(feedback)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feedback: %w", err)
	}
	if feedback == nil {
		raw = []byte("{}")
	}

	run := &RecipeRun{
		ID:          uuid.New(),
		Fingerprint: fingerprint,
		Language:    language,
		Feedback:    raw,
		Recipe:      recipe,
		Degraded:    recipe.Degraded,
		ProfileName: recipe.BasedOn,
	}
	if profile != nil {
		run.ProfileID = profile.ID
		run.ProfileName = profile.Name
	}
	if fallback != nil {
		run.FallbackReason = fallback.Error()
	}
	return run, nil
}
