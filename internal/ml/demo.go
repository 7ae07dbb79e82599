package ml

// DemoClassifier is the heuristic stand-in used when no model artifact is
// available, so the service still serves sane probabilities in development.
// It squashes the feature sum through a sigmoid: p = 1/(1+exp(-sum/10)).
type DemoClassifier struct{}

// PredictProbability implements Classifier.
func (DemoClassifier) PredictProbability(vector []float64) (float64, error) {
	if err := validateVector(vector, 0); err != nil {
		return 0, err
	}

	var sum float64
	for _, v := range vector {
		sum += v
	}
	return sigmoid(sum / 10.0), nil
}
