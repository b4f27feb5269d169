package guide

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/fragrance-customizer/internal/blending"
	"github.com/jonathan/fragrance-customizer/internal/selection"
	"github.com/jonathan/fragrance-customizer/internal/types"
)

const (
	// maxGuideEntries caps how many ingredients are sampled at once
	maxGuideEntries = 3
	// minUnits and maxUnits bound the sampling units of a single entry
	minUnits = 1
	maxUnits = 10
	// baseProfileShare is the ratio given to the base profile itself, before retention scaling
	baseProfileShare = 50.0
	// defaultScentRatio applies to requested scents that declare no ratio
	defaultScentRatio = 50.0
)

// BuildTestGuide derives the sampling protocol from the normalized component
// list. profile and feedback are optional.
func BuildTestGuide(normalized []types.ScentComponent, profile *types.BaseProfile, feedback *types.Feedback) types.TestGuide {
	selected := types.CloneComponents(normalized)

	if profile != nil && profile.Name != "" && indexOf(selected, profile.Name) < 0 {
		base := types.ScentComponent{
			Name:     profile.Name,
			Ratio:    baseProfileShare * (feedback.Retention() / 100),
			Category: profile.TopCategory(),
		}
		selected = append([]types.ScentComponent{base}, selected...)
	}

	for _, scent := range feedback.AddedScents() {
		matched := false
		for i := range selected {
			if !SameScent(selected[i].Name, scent.Name) {
				continue
			}
			matched = true
			if scent.Ratio != nil {
				selected[i].Ratio = *scent.Ratio
			}
		}
		if matched {
			continue
		}
		ratio := defaultScentRatio
		if scent.Ratio != nil {
			ratio = *scent.Ratio
		}
		selected = append(selected, types.ScentComponent{
			Name:     scent.Name,
			Ratio:    ratio,
			Category: selection.ScentCategory(scent),
		})
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Ratio > selected[j].Ratio
	})
	if len(selected) > maxGuideEntries {
		selected = selected[:maxGuideEntries]
	}

	renormalize(selected)

	names := make([]string, len(selected))
	for i, c := range selected {
		names[i] = c.Name
	}
	codes := UniqueCodes(names)

	entries := make([]types.GuideEntry, 0, len(selected))
	totalUnits := 0
	for i, c := range selected {
		count := unitCount(c.Ratio)
		totalUnits += count
		entries = append(entries, types.GuideEntry{
			Name:       c.Name,
			Code:       codes[i],
			Category:   c.Category,
			Ratio:      c.Ratio,
			Percentage: blending.RoundHalfUp(c.Ratio),
			Count:      count,
		})
	}

	return types.TestGuide{
		Entries:      entries,
		TotalUnits:   totalUnits,
		Instructions: formatInstructions(entries, totalUnits),
	}
}

func indexOf(components []types.ScentComponent, name string) int {
	for i, c := range components {
		if SameScent(c.Name, name) {
			return i
		}
	}
	return -1
}

// renormalize rescales the selected entries in place to sum to 100. A
// selection with no weight is split evenly.
func renormalize(selected []types.ScentComponent) {
	if len(selected) == 0 {
		return
	}
	total := types.TotalRatio(selected)
	for i := range selected {
		if total > 0 {
			selected[i].Ratio = selected[i].Ratio / total * 100
		} else {
			selected[i].Ratio = 100 / float64(len(selected))
		}
	}
}

// unitCount discretizes a share into sampling units, one unit per 10%.
func unitCount(ratio float64) int {
	return min(max(blending.RoundHalfUp(ratio/10), minUnits), maxUnits)
}

func formatInstructions(entries []types.GuideEntry, totalUnits int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Combine %d sampling units:\n", totalUnits))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("  %s %d units\n", e.Code, e.Count))
	}

	sb.WriteString("Ratio breakdown:\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("  %s (%s): %d%%\n", e.Name, e.Code, e.Percentage))
	}

	return strings.TrimSuffix(sb.String(), "\n")
}
