// Package scoring orchestrates the serving path for fraud decisions: it
// completes partial transaction records into feature vectors, obtains a fraud
// probability from the classifier, and applies the operator-tunable decision
// threshold.
package scoring

import "fmt"

// DefaultThreshold is applied when a caller does not specify one.
const DefaultThreshold = 0.5

// RangeError reports a probability or threshold outside [0,1]. It is a
// per-call error and never affects other calls in a batch.
type RangeError struct {
	Field string
	Value float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %v is outside [0,1]", e.Field, e.Value)
}

// Decide converts a fraud probability into a binary label under a threshold.
//
// The boundary is inclusive on the positive side: label is 1 iff
// probability >= threshold. Sweep and top-K results are sensitive to tie
// handling at the boundary, so this rule is exact.
func Decide(probability, threshold float64) (int, error) {
	if !inUnitRange(probability) {
		return 0, &RangeError{Field: "probability", Value: probability}
	}
	if !inUnitRange(threshold) {
		return 0, &RangeError{Field: "threshold", Value: threshold}
	}
	if probability >= threshold {
		return 1, nil
	}
	return 0, nil
}

func inUnitRange(v float64) bool {
	// NaN fails both comparisons and is rejected.
	return v >= 0 && v <= 1
}
