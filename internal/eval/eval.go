// Package eval computes offline quality metrics for batches of fraud
// decisions: confusion-matrix statistics, threshold sweeps, and fixed-budget
// (top-K) alert evaluation. Every operation is a pure function over the data
// it is given; nothing here holds state between calls.
//
// Convention for empty denominators: precision, recall and F1 derived from a
// confusion matrix are flagged as undefined (NaN) when their denominator is
// zero. Top-K recall is the deliberate exception - the recall of an empty
// positive set is defined as 0, not NaN, so an alert budget over a clean
// dataset reads as "nothing to find" rather than "no answer". The asymmetry
// is covered by tests.
package eval

import (
	"math"

	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/scoring"
)

// Outcome pairs a predicted label with its ground truth.
type Outcome struct {
	Predicted int
	Actual    int
}

// ConfusionCounts tallies decision outcomes at a fixed threshold.
// Counts are recomputed per evaluation call, never mutated incrementally.
type ConfusionCounts struct {
	TP int `json:"true_positive"`
	FP int `json:"false_positive"`
	TN int `json:"true_negative"`
	FN int `json:"false_negative"`
}

// Stats are the derived quality measures of a confusion matrix. Undefined
// values (zero denominators) are NaN; use math.IsNaN to test for them.
type Stats struct {
	Precision float64
	Recall    float64
	F1        float64
	Accuracy  float64
}

// Confusion tallies predicted labels against ground truth.
func Confusion(outcomes []Outcome) ConfusionCounts {
	var c ConfusionCounts
	for _, o := range outcomes {
		switch {
		case o.Actual == 1 && o.Predicted == 1:
			c.TP++
		case o.Actual == 0 && o.Predicted == 1:
			c.FP++
		case o.Actual == 0 && o.Predicted == 0:
			c.TN++
		default:
			c.FN++
		}
	}
	return c
}

// Total returns the number of outcomes tallied.
func (c ConfusionCounts) Total() int {
	return c.TP + c.FP + c.TN + c.FN
}

// Stats derives precision, recall, F1 and accuracy from the counts.
func (c ConfusionCounts) Stats() Stats {
	s := Stats{
		Precision: ratio(c.TP, c.TP+c.FP),
		Recall:    ratio(c.TP, c.TP+c.FN),
		Accuracy:  ratio(c.TP+c.TN, c.Total()),
	}
	if math.IsNaN(s.Precision) || math.IsNaN(s.Recall) || s.Precision+s.Recall == 0 {
		s.F1 = math.NaN()
	} else {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

func ratio(num, den int) float64 {
	if den == 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}

// Scored pairs a fraud probability with its ground-truth label.
type Scored struct {
	Probability float64
	Actual      int
}

// SweepPoint is one row of a threshold sweep. Precision and F1 are NaN when
// undefined at that threshold; Recall is always in [0,1].
type SweepPoint struct {
	Threshold float64
	Precision float64
	Recall    float64
	F1        float64
	Flagged   int // predicted-positive count at this threshold
}

// DefaultThresholds returns the canonical sweep: 0.00, 0.01, ..., 1.00.
func DefaultThresholds() []float64 {
	ths := make([]float64, 101)
	for i := range ths {
		ths[i] = float64(i) / 100.0
	}
	return ths
}

// Sweep re-derives labels at each threshold using the serving decision rule
// (label 1 iff probability >= threshold) and computes confusion stats.
// Thresholds are processed in the caller-given order and the output mirrors
// it; no sorting happens here. A threshold outside [0,1] fails the sweep.
func Sweep(scored []Scored, thresholds []float64) ([]SweepPoint, error) {
	points := make([]SweepPoint, 0, len(thresholds))
	for _, th := range thresholds {
		outcomes := make([]Outcome, len(scored))
		for i, sc := range scored {
			label, err := scoring.Decide(sc.Probability, th)
			if err != nil {
				return nil, err
			}
			outcomes[i] = Outcome{Predicted: label, Actual: sc.Actual}
		}

		counts := Confusion(outcomes)
		stats := counts.Stats()

		recall := stats.Recall
		if math.IsNaN(recall) {
			// No true positives exist anywhere in the set; the sweep
			// contract keeps recall in [0,1].
			recall = 0
		}

		points = append(points, SweepPoint{
			Threshold: th,
			Precision: stats.Precision,
			Recall:    recall,
			F1:        stats.F1,
			Flagged:   counts.TP + counts.FP,
		})
	}
	return points, nil
}
