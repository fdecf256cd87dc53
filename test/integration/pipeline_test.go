package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlab/bdst/internal/application/evaluation"
	"github.com/verdantlab/bdst/internal/application/summary"
	"github.com/verdantlab/bdst/internal/infrastructure/monitoring/logging"
	"github.com/verdantlab/bdst/internal/infrastructure/monitoring/prometheus"
)

// pipelineCSV holds one row per interesting evaluation path: an H2 hazard,
// a benign record, an H1 irritant, a nameless row, and a caution note.
const pipelineCSV = `scientific_name,family,edibility_rating_search,medicinal_rating_search,medicinal_properties,known_hazards
Atropa belladonna,Solanaceae,1,3,"mydriatic, narcotic",All parts of the plant are extremely toxic
Rosa canina,Rosaceae,4,1,,
Urtica dioica,Urticaceae,4,2,"tonic, diuretic",Stinging hairs are a skin irritant
,,,,,
Symphytum officinale,Boraginaceae,3,3,,Internal use should be treated with caution
`

func TestPipeline_BatchThenSummarize(t *testing.T) {
	dir := t.TempDir()
	input := WriteFile(t, dir, "plants.csv", pipelineCSV)
	cardsPath := filepath.Join(dir, "outputs", "plant_cards.json")
	summaryPath := filepath.Join(dir, "outputs", "plant_cards_summary.json")
	metricsPath := filepath.Join(dir, "outputs", "batch.prom")

	collector, err := prometheus.NewMetricsCollector(
		prometheus.CollectorConfig{Namespace: "bdst"}, logging.NewNopLogger())
	require.NoError(t, err)

	svc := evaluation.NewBatchService(LoadShippedEvaluator(t), logging.NewNopLogger(),
		collector, &evaluation.BatchServiceConfig{Workers: 3})

	report, err := svc.Run(context.Background(), &evaluation.BatchRequest{
		InputPath:   input,
		OutputPath:  cardsPath,
		MetricsFile: metricsPath,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, report.RecordsTotal)
	assert.Equal(t, 4, report.RecordsOK)
	assert.Equal(t, 1, report.RecordsError)

	raw, err := os.ReadFile(cardsPath)
	require.NoError(t, err)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(raw, &items))
	require.Len(t, items, 5)

	level := func(i int) any {
		badge, ok := items[i]["risk_badge"].(map[string]any)
		require.True(t, ok, "item %d has no risk_badge", i)
		return badge["bdst_risk_level"]
	}
	assert.Equal(t, "RED", level(0))
	assert.Equal(t, "GREEN", level(1))
	assert.Equal(t, "AMBER", level(2))
	assert.Contains(t, items[3]["error"], "missing scientific_name")
	assert.Equal(t, "AMBER", level(4))

	s, err := summary.NewService(logging.NewNopLogger()).
		Run(context.Background(), cardsPath, summaryPath)
	require.NoError(t, err)
	assert.Equal(t, 5, s.RecordsTotal)
	assert.Equal(t, 1, s.RecordsErrors)
	assert.Equal(t, 4, s.RecordsOK)
	assert.Equal(t, map[string]int{"RED": 1, "GREEN": 1, "AMBER": 2}, s.RiskDistribution)
	assert.Equal(t, map[string]int{"H2": 1, "H0": 1, "H1": 2}, s.HazardTierDistribution)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `bdst_records_processed_total{result="ok"} 4`)
	assert.Contains(t, string(metrics), `bdst_records_processed_total{result="error"} 1`)
	assert.Contains(t, string(metrics), "bdst_batch_records 5")
}
