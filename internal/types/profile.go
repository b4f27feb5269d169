package types

// BaseProfile is the pre-defined fragrance (persona) being customized.
// Category scores range from 0 to 10.
type BaseProfile struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Description    string               `json:"description,omitempty"`
	CategoryScores map[Category]float64 `json:"category_scores"`
}

// TopCategory returns the highest scoring category, ties resolved in canonical
// category order. Returns woody for a profile without scores.
func (p *BaseProfile) TopCategory() Category {
	best := CategoryWoody
	bestScore := -1.0
	for _, c := range Categories {
		score, ok := p.CategoryScores[c]
		if !ok {
			continue
		}
		if score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}
