package db

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jonathan/fragrance-customizer/internal/types"
)

// RecipeRun is one persisted recipe generation.
type RecipeRun struct {
	ID             uuid.UUID       `json:"id"`
	ProfileID      string          `json:"profile_id"`
	ProfileName    string          `json:"profile_name"`
	Fingerprint    string          `json:"fingerprint"`
	Language       string          `json:"language,omitempty"`
	Feedback       json.RawMessage `json:"feedback"`
	Recipe         types.Recipe    `json:"recipe"`
	Degraded       bool            `json:"degraded"`
	FallbackReason string          `json:"fallback_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RecipeRunSummary is a lightweight view of a run for listing
type RecipeRunSummary struct {
	ID          uuid.UUID `json:"id"`
	ProfileID   string    `json:"profile_id"`
	ProfileName string    `json:"profile_name"`
	Language    string    `json:"language,omitempty"`
	Degraded    bool      `json:"degraded"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecipeRunFilters holds optional filters for listing runs
type RecipeRunFilters struct {
	ProfileID string
	Degraded  *bool
	Limit     int
}

const (
	// DefaultListLimit applies when RecipeRunFilters.Limit is zero
	DefaultListLimit = 50
	// MaxListLimit caps RecipeRunFilters.Limit
	MaxListLimit = 500
)
