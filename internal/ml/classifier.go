// Package ml provides the classifier boundary: everything the scoring path
// needs from a trained fraud model is a single probability per feature
// vector. The model itself is trained offline and loaded as an immutable
// artifact; this package never retrains or mutates it.
package ml

import (
	"fmt"
	"math"
)

// Classifier is the external model capability the scoring session consumes.
// Implementations must be deterministic and side-effect-free for a fixed
// model, and safe for concurrent use.
type Classifier interface {
	// PredictProbability returns the fraud probability in [0,1] for a
	// complete, schema-ordered feature vector.
	PredictProbability(vector []float64) (float64, error)
}

// validateVector rejects vectors the model cannot meaningfully score.
func validateVector(vector []float64, want int) error {
	if want > 0 && len(vector) != want {
		return fmt.Errorf("expected %d features, got %d", want, len(vector))
	}
	for i, v := range vector {
		if math.IsNaN(v) {
			return fmt.Errorf("feature %d is NaN", i)
		}
		if math.IsInf(v, 0) {
			return fmt.Errorf("feature %d is infinite", i)
		}
	}
	return nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
