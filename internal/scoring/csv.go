package scoring

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/features"
)

// CSVSummary reports what happened during a batch CSV scoring run.
type CSVSummary struct {
	Rows    int // data rows read
	Scored  int // rows scored successfully
	Failed  int // rows isolated by a per-record error
	Flagged int // scored rows with label 1
}

// ScoreCSV reads transaction rows keyed by schema feature names, scores each
// one, and writes every input row back out with two appended columns:
// fraud_probability and is_fraud_pred, in the same row order as the input.
//
// Columns not in the schema pass through untouched; missing schema columns
// fall back to training defaults. A row whose cells cannot be coerced to
// numbers is isolated: its appended cells are left empty, the error is
// logged with the row index and field, and the run continues.
func (s *Session) ScoreCSV(r io.Reader, w io.Writer, threshold float64) (CSVSummary, error) {
	var summary CSVSummary

	reader := csv.NewReader(r)
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header, err := reader.Read()
	if err != nil {
		return summary, fmt.Errorf("read CSV header: %w", err)
	}

	outHeader := append(append([]string(nil), header...), "fraud_probability", "is_fraud_pred")
	if err := writer.Write(outHeader); err != nil {
		return summary, fmt.Errorf("write CSV header: %w", err)
	}

	known := make([]bool, len(header))
	for i, col := range header {
		_, known[i] = s.Schema().Index(col)
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("read CSV row %d: %w", summary.Rows+1, err)
		}
		summary.Rows++

		raw := make(map[string]any, len(header))
		for i, cell := range row {
			if i < len(header) && known[i] {
				raw[header[i]] = cell
			}
		}

		out := append([]string(nil), row...)

		rec, err := features.ParseRecord(raw, summary.Rows-1)
		if err == nil {
			var res ScoreResult
			res, err = s.ScoreOne(rec, threshold)
			if err == nil {
				summary.Scored++
				if res.Label == 1 {
					summary.Flagged++
				}
				out = append(out,
					fmt.Sprintf("%g", res.Probability),
					fmt.Sprintf("%d", res.Label),
				)
			}
		}
		if err != nil {
			summary.Failed++
			log.Warn().Err(err).Int("row", summary.Rows-1).Msg("CSV row scoring failed, continuing")
			out = append(out, "", "")
		}

		if err := writer.Write(out); err != nil {
			return summary, fmt.Errorf("write CSV row %d: %w", summary.Rows-1, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return summary, fmt.Errorf("flush CSV output: %w", err)
	}

	log.Info().
		Int("rows", summary.Rows).
		Int("scored", summary.Scored).
		Int("failed", summary.Failed).
		Int("flagged", summary.Flagged).
		Msg("batch CSV scoring finished")

	return summary, nil
}
