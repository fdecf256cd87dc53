package evaluation

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/verdantlab/bdst/pkg/errors"
	"github.com/verdantlab/bdst/pkg/types/plant"
)

// Input column names of the cleaned plants export. Missing columns degrade to
// empty values; columns the reader does not know about are ignored.
const (
	colScientificName  = "scientific_name"
	colFamily          = "family"
	colEdibilityRating = "edibility_rating_search"
	colMedicinalRating = "medicinal_rating_search"
	colMedicinalProps  = "medicinal_properties"
	colKnownHazards    = "known_hazards"
)

// sourceRow is one data row of the input file with its 0-based index.
type sourceRow struct {
	index  int
	record plant.Record
}

// readCSV loads up to limit data rows (0 = all) from the file at path.
func readCSV(path string, limit int) ([]sourceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeBatchInput, "open batch input "+path)
	}
	defer f.Close()

	rows, err := parseCSV(f, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeBatchInput, "read batch input "+path)
	}
	return rows, nil
}

// parseCSV reads the header row, then maps each data row to a plant record.
// Ragged rows are tolerated; cells beyond the row's length read as empty.
func parseCSV(r io.Reader, limit int) ([]sourceRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.CodeBatchInput, "input has no header row")
	}
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	var rows []sourceRow
	for i := 0; limit <= 0 || i < limit; i++ {
		raw, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, sourceRow{index: i, record: rowToRecord(raw, cols)})
	}
	return rows, nil
}

// rowToRecord maps raw cells onto a record. Blank rating cells become missing
// ratings and a blank family cell becomes a nil family; the scientific name
// passes through verbatim so the evaluator decides validity.
func rowToRecord(raw []string, cols map[string]int) plant.Record {
	cell := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(raw) {
			return ""
		}
		return raw[idx]
	}

	rec := plant.Record{
		ScientificName:      cell(colScientificName),
		MedicinalProperties: cell(colMedicinalProps),
		KnownHazards:        cell(colKnownHazards),
	}
	rec.EdibilityRating = plant.ParseRating(cell(colEdibilityRating))
	rec.MedicinalRating = plant.ParseRating(cell(colMedicinalRating))
	if fam := cell(colFamily); fam != "" {
		rec.Family = &fam
	}
	return rec
}
