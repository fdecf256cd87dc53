package prometheus

import (
	"time"

	rtypes "github.com/verdantlab/bdst/pkg/types/risk"
)

// BatchMetrics holds the metrics recorded during a batch evaluation run.
type BatchMetrics struct {
	RecordsProcessed  CounterVec
	RiskLevels        CounterVec
	HazardTiers       CounterVec
	BioactivityLevels CounterVec
	RuleHits          CounterVec
	EvaluateDuration  HistogramVec
	BatchDuration     GaugeVec
	BatchRecords      GaugeVec
}

// DefaultEvaluateDurationBuckets covers the sub-millisecond range a single
// in-memory evaluation lands in.
var DefaultEvaluateDurationBuckets = []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1}

// NewBatchMetrics registers the batch metrics on the collector.
func NewBatchMetrics(collector MetricsCollector) *BatchMetrics {
	m := &BatchMetrics{}

	m.RecordsProcessed = collector.RegisterCounter("records_processed_total", "Records processed by the batch evaluator", "result")
	m.RiskLevels = collector.RegisterCounter("risk_level_total", "Cards produced per risk level", "level")
	m.HazardTiers = collector.RegisterCounter("hazard_tier_total", "Cards produced per hazard tier", "tier")
	m.BioactivityLevels = collector.RegisterCounter("bioactivity_level_total", "Cards produced per bioactivity level", "level")
	m.RuleHits = collector.RegisterCounter("rule_hits_total", "Rationale codes recorded on cards", "code")
	m.EvaluateDuration = collector.RegisterHistogram("evaluate_duration_seconds", "Single record evaluation duration", DefaultEvaluateDurationBuckets)
	m.BatchDuration = collector.RegisterGauge("batch_duration_seconds", "Wall-clock duration of the last batch run")
	m.BatchRecords = collector.RegisterGauge("batch_records", "Records in the last batch run")

	return m
}

// Helpers

// RecordCard counts one successfully evaluated card. A nil receiver is a no-op
// so callers running without a collector skip all recording.
func RecordCard(m *BatchMetrics, card *rtypes.Card) {
	if m == nil {
		return
	}
	m.RecordsProcessed.WithLabelValues("ok").Inc()
	m.RiskLevels.WithLabelValues(string(card.RiskBadge.Level)).Inc()
	m.HazardTiers.WithLabelValues(string(card.Hazards.Tier)).Inc()
	m.BioactivityLevels.WithLabelValues(string(card.Bioactivity.Level)).Inc()
	for _, code := range card.Rationale.RulesTriggered {
		m.RuleHits.WithLabelValues(code).Inc()
	}
}

// RecordFailure counts one record that could not be evaluated.
func RecordFailure(m *BatchMetrics) {
	if m == nil {
		return
	}
	m.RecordsProcessed.WithLabelValues("error").Inc()
}

// RecordBatch captures the size and duration of a finished run.
func RecordBatch(m *BatchMetrics, records int, duration time.Duration) {
	if m == nil {
		return
	}
	m.BatchRecords.WithLabelValues().Set(float64(records))
	m.BatchDuration.WithLabelValues().Set(duration.Seconds())
}

// ObserveEvaluation records the wall-clock duration of a single evaluation.
func ObserveEvaluation(m *BatchMetrics, duration time.Duration) {
	if m == nil {
		return
	}
	m.EvaluateDuration.WithLabelValues().Observe(duration.Seconds())
}
