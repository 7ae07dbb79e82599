package eval

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// LoadScoredCSV reads a scored dataset for offline evaluation. The file must
// carry a fraud_probability column and a ground-truth column (Class by
// default, overridable for exports produced elsewhere). An id column is
// optional; absent ids fall back to the row index so top-K output stays
// traceable.
func LoadScoredCSV(path, truthColumn string) ([]ScoredRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scored CSV: %w", err)
	}
	defer file.Close()

	return ReadScored(file, truthColumn)
}

// ReadScored parses scored rows from r. Row order is preserved; it is the
// tie-break order for top-K ranking.
func ReadScored(r io.Reader, truthColumn string) ([]ScoredRecord, error) {
	if truthColumn == "" {
		truthColumn = "Class"
	}

	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	indices := make(map[string]int, len(header))
	for i, col := range header {
		indices[col] = i
	}

	probIdx, ok := indices["fraud_probability"]
	if !ok {
		return nil, fmt.Errorf("CSV is missing the fraud_probability column")
	}
	truthIdx, ok := indices[truthColumn]
	if !ok {
		return nil, fmt.Errorf("CSV is missing the %s column", truthColumn)
	}
	idIdx, hasID := indices["id"]

	var records []ScoredRecord
	row := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", row, err)
		}

		prob, err := strconv.ParseFloat(rec[probIdx], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: fraud_probability %q is not numeric", row, rec[probIdx])
		}

		truth, err := strconv.Atoi(rec[truthIdx])
		if err != nil || (truth != 0 && truth != 1) {
			return nil, fmt.Errorf("row %d: %s %q is not a 0/1 label", row, truthColumn, rec[truthIdx])
		}

		id := strconv.Itoa(row)
		if hasID {
			id = rec[idIdx]
		}

		records = append(records, ScoredRecord{ID: id, Probability: prob, Actual: truth})
		row++
	}

	log.Info().Int("rows", len(records)).Msg("scored dataset loaded")
	return records, nil
}

// AsScored drops the identifiers for sweep evaluation.
func AsScored(records []ScoredRecord) []Scored {
	out := make([]Scored, len(records))
	for i, r := range records {
		out[i] = Scored{Probability: r.Probability, Actual: r.Actual}
	}
	return out
}
