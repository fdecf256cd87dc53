package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/verdantlab/bdst/internal/application/acceptance"
	"github.com/verdantlab/bdst/pkg/errors"
)

// maxFailuresShown caps the failing fixtures echoed to the console; the
// full list is always in the report file.
const maxFailuresShown = 10

// NewAcceptanceCmd creates the acceptance command: run a fixture suite
// against the configured rules and report mismatches.
func NewAcceptanceCmd() *cobra.Command {
	var (
		tests  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "acceptance",
		Short: "Run acceptance fixtures against the rule engine",
		Long: "Load a YAML fixture suite, evaluate every fixture's input record, compare\n" +
			"the produced cards against the expectations, and write a JSON report. The\n" +
			"command exits non-zero when any fixture fails.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			evaluator, err := newEvaluator(cliCtx)
			if err != nil {
				return err
			}

			runner := acceptance.NewRunner(evaluator, cliCtx.Logger)
			report, err := runner.RunFile(cmd.Context(), tests, output)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s := report.Summary
			line := fmt.Sprintf("Acceptance tests: %d/%d passed, %d failed", s.Passed, s.Total, s.Failed)
			if s.Failed == 0 {
				fmt.Fprintln(out, color.GreenString(line))
			} else {
				fmt.Fprintln(out, color.RedString(line))
			}
			if output != "" {
				fmt.Fprintln(out, "Report written to:", output)
			}

			if s.Failed == 0 {
				return nil
			}
			fmt.Fprintln(out, "First failing tests:")
			shown := 0
			for _, res := range report.Results {
				if res.Pass {
					continue
				}
				fmt.Fprintf(out, " - %s: %s\n", res.ID, strings.Join(res.Reasons, ", "))
				shown++
				if shown == maxFailuresShown {
					break
				}
			}
			return errors.New(errors.CodeAcceptanceFailed,
				fmt.Sprintf("%d of %d fixtures failed", s.Failed, s.Total))
		},
	}

	cmd.Flags().StringVar(&tests, "tests", "", "YAML fixture suite [REQUIRED]")
	cmd.Flags().StringVar(&output, "output", acceptance.DefaultReportPath, "report JSON path (empty = console only)")
	cmd.MarkFlagRequired("tests")

	return cmd
}
