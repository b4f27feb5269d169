package guide

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/fragrance-customizer/internal/types"
)

// topExplainedCategories is how many categories the rationale names
const topExplainedCategories = 2

// BuildExplanation composes the rationale, expected result and
// recommendation sentences from the normalized component list.
func BuildExplanation(normalized []types.ScentComponent, profile *types.BaseProfile, feedback *types.Feedback) types.Explanation {
	top := TopCategories(normalized, topExplainedCategories)

	return types.Explanation{
		Rationale:      rationale(profile, feedback, top),
		ExpectedResult: expectedResult(feedback, top),
		Recommendation: recommendation(top),
	}
}

// TopCategories sums normalized ratios per category and returns up to n
// categories with positive totals, largest first. Ties keep canonical order.
func TopCategories(components []types.ScentComponent, n int) []types.Category {
	var totals [len(types.Categories)]float64
	for _, c := range components {
		if idx := c.Category.Index(); idx >= 0 {
			totals[idx] += c.Ratio
		}
	}

	ranked := make([]types.Category, 0, len(types.Categories))
	for i, c := range types.Categories {
		if totals[i] > 0 {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return totals[ranked[i].Index()] > totals[ranked[j].Index()]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func rationale(profile *types.BaseProfile, feedback *types.Feedback, top []types.Category) string {
	name := "the base fragrance"
	if profile != nil && profile.Name != "" {
		name = profile.Name
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Starting from %s, this blend keeps %s%% of the original character",
		name, formatPercent(feedback.Retention())))
	if len(top) > 0 {
		sb.WriteString(fmt.Sprintf(" and centres on %s notes", joinWords(categoryNames(top))))
	}
	sb.WriteString(".")

	added := feedback.AddedScents()
	if len(added) > 0 {
		names := make([]string, 0, len(added))
		for _, s := range added {
			names = append(names, s.Name)
		}
		sb.WriteString(fmt.Sprintf(" It also works in the scents you asked for: %s.", joinWords(names)))
	}

	return sb.String()
}

func expectedResult(feedback *types.Feedback, top []types.Category) string {
	var sb strings.Builder
	switch len(top) {
	case 0:
		sb.WriteString("Expect a soft, balanced blend.")
	case 1:
		sb.WriteString(fmt.Sprintf("Expect %s.", categoryDescriptions[top[0].Index()]))
	default:
		sb.WriteString(fmt.Sprintf("Expect %s, balanced by %s.",
			categoryDescriptions[top[0].Index()], categoryDescriptions[top[1].Index()]))
	}

	if adjectives := characteristicWords(feedback); len(adjectives) > 0 {
		sb.WriteString(fmt.Sprintf(" Overall it should feel %s.", joinWords(adjectives)))
	}
	return sb.String()
}

func recommendation(top []types.Category) string {
	lead := types.CategoryWoody
	if len(top) > 0 {
		lead = top[0]
	}
	w := wearingGuide[lead.Index()]
	return fmt.Sprintf("Recommended season: %s. Ideal for %s.", w.season, w.occasion)
}

func characteristicWords(feedback *types.Feedback) []string {
	if feedback == nil {
		return nil
	}
	var words []string
	for _, ch := range types.Characteristics {
		level, ok := feedback.UserCharacteristics[ch]
		if !ok {
			continue
		}
		if word, found := characteristicAdjectives[ch][level]; found {
			words = append(words, word)
		}
	}
	return words
}

func categoryNames(categories []types.Category) []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

// joinWords renders a list as "a", "a and b" or "a, b and c".
func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
	}
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
