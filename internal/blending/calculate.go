package blending

import (
	"fmt"
	"math"
	"sort"

	"github.com/jonathan/fragrance-customizer/internal/types"
)

// Concentrate masses per finished bottle size: 1g of concentrate per 10ml.
const (
	Grams10ml = 1.0
	Grams50ml = 5.0
)

// Calculate converts normalized ratios into absolute masses for totalGrams
// of concentrate. Masses are allotted in hundredths of a gram by largest
// remainder, so the formatted amounts always add up to totalGrams.
func Calculate(components []types.ScentComponent, totalGrams float64) []types.LineItem {
	hundredths := allotHundredths(components, totalGrams)

	items := make([]types.LineItem, 0, len(components))
	for i, c := range components {
		grams := float64(hundredths[i]) / 100
		items = append(items, types.LineItem{
			Name:       c.Name,
			Amount:     FormatGrams(grams),
			Grams:      grams,
			Percentage: RoundHalfUp(c.Ratio),
		})
	}
	return items
}

// allotHundredths splits round(totalGrams*100) across components in
// proportion to their ratios. Ties on the remainder go to the earlier entry.
func allotHundredths(components []types.ScentComponent, totalGrams float64) []int {
	out := make([]int, len(components))
	if len(components) == 0 {
		return out
	}

	target := int(math.Round(totalGrams * 100))
	total := types.TotalRatio(components)
	if total <= 0 {
		return out
	}

	remainders := make([]float64, len(components))
	allotted := 0
	for i, c := range components {
		exact := c.Ratio / total * float64(target)
		out[i] = int(math.Floor(exact + 1e-9))
		remainders[i] = exact - float64(out[i])
		allotted += out[i]
	}

	order := make([]int, len(components))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})

	for k := 0; allotted < target; k = (k + 1) % len(order) {
		out[order[k]]++
		allotted++
	}
	for k := len(order) - 1; allotted > target; k-- {
		if k < 0 {
			k = len(order) - 1
		}
		if out[order[k]] > 0 {
			out[order[k]]--
			allotted--
		}
	}
	return out
}

// FormatGrams renders a mass with two decimals and a gram suffix.
func FormatGrams(grams float64) string {
	return fmt.Sprintf("%.2fg", grams)
}

// RoundHalfUp rounds to the nearest integer, ties toward positive infinity.
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
