package types

// ScentComponent is the unit flowing through the synthesis pipeline.
// Ratio is a relative weight before normalization and a percentage (0-100) after.
type ScentComponent struct {
	Name     string   `json:"name"`
	Ratio    float64  `json:"ratio"`
	Category Category `json:"category"`
}

// TotalRatio sums the ratios of the given components.
func TotalRatio(components []ScentComponent) float64 {
	total := 0.0
	for _, c := range components {
		total += c.Ratio
	}
	return total
}

// CloneComponents returns a copy of the slice so callers can mutate freely.
func CloneComponents(components []ScentComponent) []ScentComponent {
	out := make([]ScentComponent, len(components))
	copy(out, components)
	return out
}
