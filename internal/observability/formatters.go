// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/fragrance-customizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// wrap breaks text into lines of at most width runes on word boundaries.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		if len([]rune(current))+1+len([]rune(w)) > width {
			lines = append(lines, current)
			current = w
			continue
		}
		current += " " + w
	}
	return append(lines, current)
}

// PrintProfile outputs a base profile with its category scores, highest first.
func (p *Printer) PrintProfile(profile *types.BaseProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:    %s\n", profile.ID))
	sb.WriteString(fmt.Sprintf("Name:  %s\n", profile.Name))
	sb.WriteString("\n")

	categories := make([]types.Category, 0, len(profile.CategoryScores))
	for c := range profile.CategoryScores {
		categories = append(categories, c)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		si, sj := profile.CategoryScores[categories[i]], profile.CategoryScores[categories[j]]
		if si != sj {
			return si > sj
		}
		return categories[i].Index() < categories[j].Index()
	})

	sb.WriteString("Category scores:\n")
	for _, c := range categories {
		score := profile.CategoryScores[c]
		sb.WriteString(fmt.Sprintf("  %-8s %4.1f  %s\n", c, score, strings.Repeat("■", int(score+0.5))))
	}

	p.printBox("BASE PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFeedback outputs a compact summary of the feedback applied to a run.
func (p *Printer) PrintFeedback(feedback *types.Feedback) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Retention: %.0f%%\n", feedback.Retention()))

	if feedback != nil && len(feedback.CategoryPreferences) > 0 {
		sb.WriteString("\nPreferences:\n")
		for _, c := range types.Categories {
			if pref, ok := feedback.CategoryPreferences[c]; ok {
				sb.WriteString(fmt.Sprintf("  • %s: %s\n", c, pref))
			}
		}
	}

	if feedback != nil && len(feedback.UserCharacteristics) > 0 {
		sb.WriteString("\nCharacteristics:\n")
		for _, ch := range types.Characteristics {
			if level, ok := feedback.UserCharacteristics[ch]; ok {
				sb.WriteString(fmt.Sprintf("  • %s: %s\n", ch, level))
			}
		}
	}

	if feedback != nil && len(feedback.SpecificScents) > 0 {
		sb.WriteString("\nSpecific scents:\n")
		count := min(len(feedback.SpecificScents), maxItemsToShow)
		for i := 0; i < count; i++ {
			s := feedback.SpecificScents[i]
			sb.WriteString(fmt.Sprintf("  • %s %s", s.Action, s.Name))
			if s.Ratio != nil {
				sb.WriteString(fmt.Sprintf(" (%.0f%%)", *s.Ratio))
			}
			sb.WriteString("\n")
		}
		if len(feedback.SpecificScents) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(feedback.SpecificScents)-maxItemsToShow))
		}
	}

	p.printBox("FEEDBACK", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecipe outputs both recipe sizes side by side.
func (p *Printer) PrintRecipe(recipe *types.Recipe) {
	if recipe == nil || len(recipe.Recipe10ml) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Based on: %s\n", recipe.BasedOn))
	if recipe.Degraded {
		sb.WriteString("⚠ Fallback recipe (feedback not applied)\n")
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-26s %8s %8s %5s\n", "Ingredient", "10ml", "50ml", "%"))

	for i, item := range recipe.Recipe10ml {
		large := ""
		if i < len(recipe.Recipe50ml) {
			large = recipe.Recipe50ml[i].Amount
		}
		sb.WriteString(fmt.Sprintf("%-26s %8s %8s %4d%%\n", truncate(item.Name, 26), item.Amount, large, item.Percentage))
	}

	if recipe.Description != "" {
		sb.WriteString("\n")
		for _, line := range wrap(recipe.Description, boxWidth-4) {
			sb.WriteString(line + "\n")
		}
	}

	p.printBox("RECIPE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTestGuide outputs the sampling protocol.
func (p *Printer) PrintTestGuide(guide *types.TestGuide) {
	if guide == nil || len(guide.Entries) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Combine %d sampling units:\n\n", guide.TotalUnits))
	for _, e := range guide.Entries {
		sb.WriteString(fmt.Sprintf("%s  %2d units  %3d%%  %s (%s)\n", e.Code, e.Count, e.Percentage, truncate(e.Name, 24), e.Category))
	}

	p.printBox("TEST GUIDE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExplanation outputs the rationale, expected result and recommendation.
func (p *Printer) PrintExplanation(explanation *types.Explanation) {
	if explanation == nil {
		return
	}

	sections := []struct {
		label string
		text  string
	}{
		{"Rationale", explanation.Rationale},
		{"Expected result", explanation.ExpectedResult},
		{"Recommendation", explanation.Recommendation},
	}

	var sb strings.Builder
	for _, s := range sections {
		if s.text == "" {
			continue
		}
		sb.WriteString(s.label + ":\n")
		for _, line := range wrap(s.text, boxWidth-6) {
			sb.WriteString("  " + line + "\n")
		}
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return
	}

	p.printBox("EXPLANATION", strings.TrimSuffix(sb.String(), "\n\n"))
}

// PrintSummary prints the recipe, its guide and its explanation in order.
func (p *Printer) PrintSummary(recipe *types.Recipe) {
	if recipe == nil {
		return
	}
	p.PrintRecipe(recipe)
	p.PrintTestGuide(&recipe.TestGuide)
	p.PrintExplanation(&recipe.Explanation)
}
