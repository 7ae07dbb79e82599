package ml

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// LogisticModel scores vectors with a trained logistic regression exported by
// the offline training step: probability = sigmoid(intercept + w . x).
type LogisticModel struct {
	version   string
	intercept float64
	weights   []float64
}

// modelFile is the on-disk model artifact layout.
type modelFile struct {
	Version      string    `json:"version"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// LoadLogistic reads a model artifact from disk. The coefficient count must
// match the feature schema length the model was trained on.
func LoadLogistic(path string, featureCount int) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}

	var mf modelFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}

	if len(mf.Coefficients) == 0 {
		return nil, fmt.Errorf("model %s has no coefficients", path)
	}
	if featureCount > 0 && len(mf.Coefficients) != featureCount {
		return nil, fmt.Errorf("model %s has %d coefficients, schema expects %d",
			path, len(mf.Coefficients), featureCount)
	}

	version := mf.Version
	if version == "" {
		version = "v1"
	}

	log.Info().
		Str("model_path", path).
		Str("version", version).
		Int("coefficients", len(mf.Coefficients)).
		Msg("logistic model loaded")

	return &LogisticModel{
		version:   version,
		intercept: mf.Intercept,
		weights:   mf.Coefficients,
	}, nil
}

// Version returns the model version tag attached to every score.
func (m *LogisticModel) Version() string {
	return m.version
}

// PredictProbability implements Classifier.
func (m *LogisticModel) PredictProbability(vector []float64) (float64, error) {
	if err := validateVector(vector, len(m.weights)); err != nil {
		return 0, err
	}

	z := m.intercept
	for i, w := range m.weights {
		z += w * vector[i]
	}
	return sigmoid(z), nil
}
