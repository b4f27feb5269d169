package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/jonathan/fragrance-customizer/internal/catalog"
	"github.com/jonathan/fragrance-customizer/internal/observability"
	"github.com/jonathan/fragrance-customizer/internal/types"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles [id]",
	Short: "List the base fragrance profiles",
	Long:  "Lists the built-in base profiles, or shows one profile when an id is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfiles,
}

var profilesJSON bool

func init() {
	profilesCmd.Flags().BoolVar(&profilesJSON, "json", false, "Print profiles as JSON")
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	profiles, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to load profile catalog: %w", err)
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		profile, err := profiles.Get(args[0])
		if err != nil {
			return err
		}
		if profilesJSON {
			return writeJSON(out, profile)
		}
		observability.NewPrinter(out).PrintProfile(profile)
		return nil
	}

	list := profiles.List()
	switch {
	case profilesJSON:
		return writeJSON(out, list)
	case verbose:
		printer := observability.NewPrinter(out)
		for i := range list {
			printer.PrintProfile(&list[i])
		}
		return nil
	default:
		return printProfileTable(out, list)
	}
}

func printProfileTable(out io.Writer, profiles []types.BaseProfile) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tTOP NOTES")
	for _, p := range profiles {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, topCategories(p, 3))
	}
	return tw.Flush()
}

// topCategories names the n highest-scoring categories, ties in canonical order.
func topCategories(p types.BaseProfile, n int) string {
	var top []string
	categories := types.Categories
	sort.SliceStable(categories[:], func(i, j int) bool {
		return p.CategoryScores[categories[i]] > p.CategoryScores[categories[j]]
	})
	for _, c := range categories {
		if len(top) == n || p.CategoryScores[c] <= 0 {
			break
		}
		top = append(top, string(c))
	}
	return strings.Join(top, ", ")
}
