// Package evaluation drives whole-dataset risk-card production. It streams a
// tabular plant export through the risk evaluator over a bounded worker pool
// and writes the resulting card array, carrying per-row failures as
// placeholder entries instead of aborting the run.
package evaluation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlab/bdst/internal/domain/risk"
	"github.com/verdantlab/bdst/internal/infrastructure/monitoring/logging"
	"github.com/verdantlab/bdst/internal/infrastructure/monitoring/prometheus"
	"github.com/verdantlab/bdst/pkg/errors"
	rtypes "github.com/verdantlab/bdst/pkg/types/risk"
)

// DefaultOutputPath is where cards land when no output path is given.
const DefaultOutputPath = "outputs/plant_cards.json"

const defaultWorkers = 4

// ─────────────────────────────────────────────────────────────────────────────
// Request / result types
// ─────────────────────────────────────────────────────────────────────────────

// BatchRequest describes one dataset run.
type BatchRequest struct {
	// InputPath is the CSV file with a header row.
	InputPath string
	// OutputPath receives the JSON card array; parent directories are
	// created. Empty selects DefaultOutputPath.
	OutputPath string
	// Limit caps the number of data rows evaluated; 0 means all.
	Limit int
	// MetricsFile, when non-empty, receives a Prometheus text-format
	// snapshot of the run's metrics on completion.
	MetricsFile string
}

// BatchReport summarizes a finished run.
type BatchReport struct {
	RunID        string        `json:"run_id"`
	RecordsTotal int           `json:"records_total"`
	RecordsOK    int           `json:"records_ok"`
	RecordsError int           `json:"records_error"`
	Duration     time.Duration `json:"duration"`
	OutputPath   string        `json:"output_path"`
}

// RowFailure is the placeholder entry written in place of a card when the
// evaluator rejects a row. Key names are fixed; the summarizer and downstream
// curation match on them.
type RowFailure struct {
	Error       string `json:"error"`
	RawRowIndex int    `json:"raw_row_index"`
}

// Result is the outcome of one input row. Exactly one of Card and Failure
// is set.
type Result struct {
	Index   int
	Card    *rtypes.Card
	Failure *RowFailure
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// BatchService evaluates tabular plant exports into card arrays.
type BatchService interface {
	// Run evaluates the input file and writes the output array.
	Run(ctx context.Context, req *BatchRequest) (*BatchReport, error)
}

// BatchServiceConfig holds tunables.
type BatchServiceConfig struct {
	// Workers bounds the evaluation pool; 1 evaluates sequentially.
	Workers int
}

// DefaultBatchServiceConfig returns the production defaults.
func DefaultBatchServiceConfig() *BatchServiceConfig {
	return &BatchServiceConfig{Workers: defaultWorkers}
}

type batchServiceImpl struct {
	evaluator *risk.Evaluator
	logger    logging.Logger
	metrics   *prometheus.BatchMetrics
	collector prometheus.MetricsCollector
	config    *BatchServiceConfig
}

// NewBatchService constructs a production BatchService. collector may be nil,
// in which case no metrics are recorded.
func NewBatchService(
	evaluator *risk.Evaluator,
	logger logging.Logger,
	collector prometheus.MetricsCollector,
	config *BatchServiceConfig,
) BatchService {
	if config == nil {
		config = DefaultBatchServiceConfig()
	}
	if config.Workers < 1 {
		config.Workers = defaultWorkers
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &batchServiceImpl{
		evaluator: evaluator,
		logger:    logger,
		collector: collector,
		config:    config,
	}
	if collector != nil {
		s.metrics = prometheus.NewBatchMetrics(collector)
	}
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// Run
// ─────────────────────────────────────────────────────────────────────────────

func (s *batchServiceImpl) Run(ctx context.Context, req *BatchRequest) (*BatchReport, error) {
	if req == nil || req.InputPath == "" {
		return nil, errors.New(errors.CodeBatchInput, "batch run needs an input file")
	}
	outPath := req.OutputPath
	if outPath == "" {
		outPath = DefaultOutputPath
	}

	start := time.Now()
	runID := uuid.NewString()
	log := s.logger.With(logging.String("run_id", runID))
	log.Info("batch run started",
		logging.String("input", req.InputPath),
		logging.String("output", outPath),
		logging.Int("workers", s.config.Workers),
		logging.Int("limit", req.Limit),
	)

	rows, err := readCSV(req.InputPath, req.Limit)
	if err != nil {
		return nil, err
	}

	results, err := s.evaluateAll(ctx, rows)
	if err != nil {
		return nil, err
	}

	items := make([]any, 0, len(results))
	okCount := 0
	for _, r := range results {
		if r.Failure != nil {
			prometheus.RecordFailure(s.metrics)
			items = append(items, r.Failure)
			continue
		}
		prometheus.RecordCard(s.metrics, r.Card)
		items = append(items, r.Card)
		okCount++
	}

	if err := writeJSONArray(outPath, items); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	prometheus.RecordBatch(s.metrics, len(results), elapsed)
	if req.MetricsFile != "" && s.collector != nil {
		if werr := s.collector.WriteTextfile(req.MetricsFile); werr != nil {
			log.Warn("failed to write metrics textfile",
				logging.String("path", req.MetricsFile),
				logging.Err(werr),
			)
		}
	}

	report := &BatchReport{
		RunID:        runID,
		RecordsTotal: len(results),
		RecordsOK:    okCount,
		RecordsError: len(results) - okCount,
		Duration:     elapsed,
		OutputPath:   outPath,
	}
	log.Info("batch run finished",
		logging.Int("records", report.RecordsTotal),
		logging.Int("ok", report.RecordsOK),
		logging.Int("errors", report.RecordsError),
		logging.Duration("elapsed", elapsed),
	)
	return report, nil
}

// evaluateAll fans rows out over a bounded pool. Each result lands at its
// row's own index, so output order equals input order regardless of worker
// scheduling.
func (s *batchServiceImpl) evaluateAll(ctx context.Context, rows []sourceRow) ([]Result, error) {
	results := make([]Result, len(rows))
	sem := make(chan struct{}, s.config.Workers)
	var wg sync.WaitGroup

	for i := range rows {
		wg.Add(1)
		go func(r sourceRow) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			results[r.index] = s.evaluateRow(r)
		}(rows[i])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeBatchInput, "batch run canceled")
	}
	return results, nil
}

func (s *batchServiceImpl) evaluateRow(r sourceRow) Result {
	began := time.Now()
	card, err := s.evaluator.Evaluate(r.record)
	prometheus.ObserveEvaluation(s.metrics, time.Since(began))
	if err != nil {
		s.logger.Warn("row failed evaluation",
			logging.Int("row", r.index),
			logging.Err(err),
		)
		return Result{
			Index:   r.index,
			Failure: &RowFailure{Error: err.Error(), RawRowIndex: r.index},
		}
	}
	return Result{Index: r.index, Card: card}
}

// ─────────────────────────────────────────────────────────────────────────────
// Output
// ─────────────────────────────────────────────────────────────────────────────

// writeJSONArray writes items as one indented JSON array, creating parent
// directories as needed. HTML escaping is off so free-text fields keep their
// literal characters.
func writeJSONArray(path string, items []any) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, errors.CodeIOFailure, "create output directory "+dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeIOFailure, "create output file "+path)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		f.Close()
		return errors.Wrap(err, errors.CodeIOFailure, "encode cards to "+path)
	}
	return errors.Wrap(f.Close(), errors.CodeIOFailure, "close output file "+path)
}
