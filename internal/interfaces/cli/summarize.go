package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/verdantlab/bdst/internal/application/evaluation"
	"github.com/verdantlab/bdst/internal/application/summary"
)

// NewSummarizeCmd creates the summarize command: a card array in, a
// distribution summary out.
func NewSummarizeCmd() *cobra.Command {
	var (
		input  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a card array into distribution counts",
		Long: "Read a JSON array of risk cards, count risk, hazard-tier, quadrant, and\n" +
			"bioactivity distributions plus the most-triggered rules, and write the\n" +
			"summary as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			svc := summary.NewService(cliCtx.Logger)
			s, err := svc.Run(cmd.Context(), input, output)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" {
				fmt.Fprintln(out, "Summary written to:", output)
			}
			fmt.Fprintln(out)

			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"Dimension", "Value", "Count"})
			table.AppendBulk(distributionRows(s))
			table.Render()

			fmt.Fprintf(out, "\nRecords: %d total, %d ok, %d errors\n",
				s.RecordsTotal, s.RecordsOK, s.RecordsErrors)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", evaluation.DefaultOutputPath, "JSON array of risk cards")
	cmd.Flags().StringVar(&output, "output", summary.DefaultOutputPath, "summary JSON path (empty = console only)")

	return cmd
}

// distributionRows flattens the four distributions into table rows, each
// dimension ordered count-descending with ties broken by value.
func distributionRows(s *summary.Summary) [][]string {
	var rows [][]string
	add := func(dimension string, dist map[string]int) {
		type entry struct {
			value string
			count int
		}
		entries := make([]entry, 0, len(dist))
		for value, count := range dist {
			entries = append(entries, entry{value: value, count: count})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].count != entries[j].count {
				return entries[i].count > entries[j].count
			}
			return entries[i].value < entries[j].value
		})
		for _, e := range entries {
			rows = append(rows, []string{dimension, e.value, strconv.Itoa(e.count)})
		}
	}
	add("risk", s.RiskDistribution)
	add("hazard_tier", s.HazardTierDistribution)
	add("quadrant", s.QuadrantDistribution)
	add("bioactivity", s.BioactivityDistribution)
	return rows
}
