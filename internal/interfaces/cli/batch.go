package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verdantlab/bdst/internal/application/evaluation"
	"github.com/verdantlab/bdst/internal/infrastructure/monitoring/prometheus"
	"github.com/verdantlab/bdst/pkg/errors"
)

// NewBatchCmd creates the batch command: a CSV of plant records in, a JSON
// array of cards out.
func NewBatchCmd() *cobra.Command {
	var (
		input       string
		output      string
		limit       int
		workers     int
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate a CSV of plant records into a card array",
		Long: "Read plant records from a CSV file with a header row, evaluate each through\n" +
			"the rule engine, and write one JSON array of risk cards. Rows the engine\n" +
			"rejects become error placeholder entries; the batch always completes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config

			// Flags beat config; unset flags fall back to batch.* settings.
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Batch.Limit
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Batch.Workers
			}
			if !cmd.Flags().Changed("metrics-file") {
				metricsFile = cfg.Batch.MetricsFile
			}

			evaluator, err := newEvaluator(cliCtx)
			if err != nil {
				return err
			}

			collector, err := prometheus.NewMetricsCollector(
				prometheus.CollectorConfig{Namespace: "bdst"}, cliCtx.Logger)
			if err != nil {
				return errors.Wrap(err, errors.CodeInternal, "build metrics collector")
			}

			svc := evaluation.NewBatchService(evaluator, cliCtx.Logger, collector,
				&evaluation.BatchServiceConfig{Workers: workers})

			report, err := svc.Run(cmd.Context(), &evaluation.BatchRequest{
				InputPath:   input,
				OutputPath:  output,
				Limit:       limit,
				MetricsFile: metricsFile,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d plant cards to: %s\n",
				report.RecordsTotal, report.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "CSV file of plant records [REQUIRED]")
	cmd.Flags().StringVar(&output, "output", evaluation.DefaultOutputPath, "output JSON array path")
	cmd.Flags().IntVar(&limit, "limit", 0, "process at most N data rows (0 = all)")
	cmd.Flags().IntVar(&workers, "workers", 0, "evaluation pool size (default from config)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus text-format metrics here after the run")
	cmd.MarkFlagRequired("input")

	return cmd
}
