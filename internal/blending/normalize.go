// Package blending rescales component weights into percentages and converts
// them into absolute ingredient masses.
package blending

import (
	"github.com/jonathan/fragrance-customizer/internal/types"
)

// DefaultBlendName names the synthetic component used when nothing carries weight.
const DefaultBlendName = "Default Blend"

// Normalize rescales ratios so they sum to 100, preserving order and every
// other field. A zero-weight list collapses to a single default blend.
func Normalize(components []types.ScentComponent) []types.ScentComponent {
	total := types.TotalRatio(components)
	if total <= 0 {
		return []types.ScentComponent{{
			Name:     DefaultBlendName,
			Ratio:    100,
			Category: types.CategoryWoody,
		}}
	}

	normalized := make([]types.ScentComponent, len(components))
	for i, c := range components {
		c.Ratio = c.Ratio / total * 100
		normalized[i] = c
	}
	return normalized
}
