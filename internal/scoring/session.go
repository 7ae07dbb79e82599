package scoring

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/features"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/ml"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/schema"
)

// MetricsInterface defines the metrics methods the session reports to.
type MetricsInterface interface {
	PredictionsInc()
	PredictionErrorsInc()
	PredictionLatencyObserve(float64)
	PredictionScoresObserve(float64)
}

// ScoreResult is the outcome of scoring one transaction. It is a value
// object: created per call, never mutated, never persisted by this package.
type ScoreResult struct {
	RequestID    string  `json:"request_id"`
	ModelVersion string  `json:"model_version"`
	Probability  float64 `json:"prob"`
	Label        int     `json:"label"`
}

// BatchItem carries the per-record outcome of a batch scoring call: either a
// result or the error that isolated this record, never both.
type BatchItem struct {
	Index  int
	Result *ScoreResult
	Err    error
}

// Session wires the feature builder, the classifier, and the threshold rule
// into one scoring path. The schema and classifier are injected at
// construction and immutable afterwards; the session holds no mutable state
// and is safe for concurrent use. Results are never cached; the classifier
// is assumed cheap and deterministic for fixed input.
type Session struct {
	builder *features.Builder
	clf     ml.Classifier
	version string
	metrics MetricsInterface
}

// NewSession creates a scoring session. metrics may be nil.
func NewSession(s *schema.Schema, clf ml.Classifier, version string, metrics MetricsInterface) *Session {
	return &Session{
		builder: features.NewBuilder(s),
		clf:     clf,
		version: version,
		metrics: metrics,
	}
}

// Schema returns the feature schema this session scores against.
func (s *Session) Schema() *schema.Schema {
	return s.builder.Schema()
}

// ModelVersion returns the version tag stamped on every result.
func (s *Session) ModelVersion() string {
	return s.version
}

// ScoreOne scores a single partial record under the given threshold.
func (s *Session) ScoreOne(rec features.Record, threshold float64) (ScoreResult, error) {
	return s.scoreVector(s.builder.Build(rec), threshold)
}

// ScoreVector scores an already-ordered complete feature vector. Used when
// the caller supplies positional features matching the schema order.
func (s *Session) ScoreVector(vec []float64, threshold float64) (ScoreResult, error) {
	if len(vec) != s.builder.Schema().Len() {
		return ScoreResult{}, fmt.Errorf("expected %d features, got %d", s.builder.Schema().Len(), len(vec))
	}
	return s.scoreVector(vec, threshold)
}

func (s *Session) scoreVector(vec []float64, threshold float64) (ScoreResult, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.PredictionsInc()
		defer func() {
			s.metrics.PredictionLatencyObserve(time.Since(start).Seconds())
		}()
	}

	prob, err := s.clf.PredictProbability(vec)
	if err != nil {
		if s.metrics != nil {
			s.metrics.PredictionErrorsInc()
		}
		return ScoreResult{}, fmt.Errorf("predict: %w", err)
	}

	label, err := Decide(prob, threshold)
	if err != nil {
		if s.metrics != nil {
			s.metrics.PredictionErrorsInc()
		}
		return ScoreResult{}, err
	}

	if s.metrics != nil {
		s.metrics.PredictionScoresObserve(prob)
	}

	return ScoreResult{
		RequestID:    uuid.NewString(),
		ModelVersion: s.version,
		Probability:  prob,
		Label:        label,
	}, nil
}

// ScoreBatch scores each record independently, preserving input order
// one-to-one. A failure on one record is isolated to its BatchItem and does
// not abort the rest of the batch.
func (s *Session) ScoreBatch(recs []features.Record, threshold float64) []BatchItem {
	items := make([]BatchItem, len(recs))
	for i, rec := range recs {
		res, err := s.ScoreOne(rec, threshold)
		if err != nil {
			log.Warn().Err(err).Int("record", i).Msg("record scoring failed, batch continues")
			items[i] = BatchItem{Index: i, Err: err}
			continue
		}
		items[i] = BatchItem{Index: i, Result: &res}
	}
	return items
}
