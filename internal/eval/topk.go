package eval

import (
	"fmt"
	"sort"
)

// ScoredRecord is one row of a scored dataset for alert-budget evaluation.
type ScoredRecord struct {
	ID          string
	Probability float64
	Actual      int
}

// TopKResult holds the outcome of a fixed-budget alert evaluation: the K
// highest-probability records and the precision/recall achieved by alerting
// on exactly those.
type TopKResult struct {
	K            int            // effective budget, min(requested k, rows)
	Alerts       []ScoredRecord // descending by probability, ties in input order
	PrecisionAtK float64
	RecallAtK    float64
}

// RowCountMismatchError reports an inconsistent evaluation population: the
// supplied full-dataset counts cannot be reconciled with the export rows.
// It is fatal to the evaluation call; no metrics are produced.
type RowCountMismatchError struct {
	ExportRows       int
	ExportPositives  int
	ClaimedRows      int
	ClaimedPositives int
	Reason           string
}

func (e *RowCountMismatchError) Error() string {
	return fmt.Sprintf("row count mismatch: %s (export: %d rows / %d positives, claimed population: %d rows / %d positives)",
		e.Reason, e.ExportRows, e.ExportPositives, e.ClaimedRows, e.ClaimedPositives)
}

// Population carries the full dataset's row and true-positive counts when
// the scored rows handed to the evaluator are only a partial export.
type Population struct {
	Rows      int
	Positives int
}

// TopK evaluates a fixed alert budget over a complete scored dataset.
//
// Rows are ranked by probability descending; records with equal probability
// keep their original input order (stable sort), so repeated runs produce
// identical alert lists. The first min(k, len(scored)) rows are alerted.
// precision_at_k divides by the effective budget; recall_at_k divides by the
// total true positives in the set and is 0 - not undefined - when the set
// has no positives at all.
func TopK(scored []ScoredRecord, k int) (TopKResult, error) {
	if k <= 0 {
		return TopKResult{}, fmt.Errorf("k must be positive, got %d", k)
	}

	totalPositives := 0
	for _, r := range scored {
		if r.Actual == 1 {
			totalPositives++
		}
	}

	return topK(scored, k, totalPositives)
}

// TopKWithPopulation evaluates an alert budget over a partial export (for
// example a "top-K only" download) against explicitly supplied full-dataset
// counts. The counts must be consistent with the export: an export larger
// than the claimed population, or holding more positives than the population
// claims to contain, fails with a *RowCountMismatchError instead of silently
// under-counting recall.
func TopKWithPopulation(export []ScoredRecord, k int, pop Population) (TopKResult, error) {
	if k <= 0 {
		return TopKResult{}, fmt.Errorf("k must be positive, got %d", k)
	}

	exportPositives := 0
	for _, r := range export {
		if r.Actual == 1 {
			exportPositives++
		}
	}

	mismatch := func(reason string) error {
		return &RowCountMismatchError{
			ExportRows:       len(export),
			ExportPositives:  exportPositives,
			ClaimedRows:      pop.Rows,
			ClaimedPositives: pop.Positives,
			Reason:           reason,
		}
	}

	switch {
	case pop.Rows < len(export):
		return TopKResult{}, mismatch("export has more rows than the claimed population")
	case pop.Positives > pop.Rows:
		return TopKResult{}, mismatch("claimed positives exceed claimed rows")
	case pop.Positives < exportPositives:
		return TopKResult{}, mismatch("export has more positives than the claimed population")
	}

	return topK(export, k, pop.Positives)
}

func topK(scored []ScoredRecord, k, totalPositives int) (TopKResult, error) {
	ranked := append([]ScoredRecord(nil), scored...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})

	kActual := k
	if kActual > len(ranked) {
		kActual = len(ranked)
	}
	alerts := ranked[:kActual]

	alertedPositives := 0
	for _, r := range alerts {
		if r.Actual == 1 {
			alertedPositives++
		}
	}

	res := TopKResult{
		K:      kActual,
		Alerts: alerts,
	}
	if kActual > 0 {
		res.PrecisionAtK = float64(alertedPositives) / float64(kActual)
	}
	if totalPositives > 0 {
		res.RecallAtK = float64(alertedPositives) / float64(totalPositives)
	}
	// totalPositives == 0 leaves RecallAtK at 0 by convention.

	return res, nil
}
