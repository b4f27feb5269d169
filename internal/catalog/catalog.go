package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/jonathan/fragrance-customizer/internal/types"
)

//go:embed profiles.json
var embeddedProfiles []byte

// Catalog is an immutable, id-keyed list of base profiles. Safe for concurrent use.
type Catalog struct {
	profiles []types.BaseProfile
	byID     map[string]int
}

var (
	defaultCatalog *Catalog
	defaultErr     error
	defaultOnce    sync.Once
)

// Default returns the catalog built from the embedded persona list.
// It is parsed once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(embeddedProfiles)
	})
	return defaultCatalog, defaultErr
}

// Parse builds a catalog from a JSON array of profiles.
func Parse(data []byte) (*Catalog, error) {
	var profiles []types.BaseProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, &LoadError{Message: "failed to parse profile catalog", Cause: err}
	}
	return New(profiles)
}

// New builds a catalog from profiles, rejecting empty or duplicate ids,
// unknown or repeated categories and scores outside 0..10. Category keys
// are matched case-insensitively.
func New(profiles []types.BaseProfile) (*Catalog, error) {
	c := &Catalog{
		profiles: make([]types.BaseProfile, 0, len(profiles)),
		byID:     make(map[string]int, len(profiles)),
	}

	for _, p := range profiles {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, &LoadError{Message: fmt.Sprintf("profile %q has an empty id", p.Name)}
		}
		if _, dup := c.byID[id]; dup {
			return nil, &LoadError{Message: fmt.Sprintf("duplicate profile id %q", id)}
		}
		scores := make(map[types.Category]float64, len(p.CategoryScores))
		for key, score := range p.CategoryScores {
			category, err := types.ParseCategory(string(key))
			if err != nil {
				return nil, &LoadError{Message: fmt.Sprintf("profile %q has an unknown category", id), Cause: err}
			}
			if _, dup := scores[category]; dup {
				return nil, &LoadError{Message: fmt.Sprintf("profile %q lists category %s more than once", id, category)}
			}
			if score < 0 || score > 10 {
				return nil, &LoadError{Message: fmt.Sprintf("profile %q: %s score %v is outside 0..10", id, category, score)}
			}
			scores[category] = score
		}

		p.ID = id
		p.CategoryScores = scores
		c.byID[id] = len(c.profiles)
		c.profiles = append(c.profiles, p)
	}

	return c, nil
}

// Get returns a copy of the profile with the given id, or ErrProfileNotFound.
func (c *Catalog) Get(id string) (*types.BaseProfile, error) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, id)
	}
	p := c.profiles[idx]
	p.CategoryScores = cloneScores(p.CategoryScores)
	return &p, nil
}

// List returns copies of all profiles in catalog order.
func (c *Catalog) List() []types.BaseProfile {
	out := make([]types.BaseProfile, len(c.profiles))
	for i, p := range c.profiles {
		p.CategoryScores = cloneScores(p.CategoryScores)
		out[i] = p
	}
	return out
}

// Len returns the number of profiles.
func (c *Catalog) Len() int {
	return len(c.profiles)
}

func cloneScores(scores map[types.Category]float64) map[types.Category]float64 {
	out := make(map[types.Category]float64, len(scores))
	for k, v := range scores {
		out[k] = v
	}
	return out
}
