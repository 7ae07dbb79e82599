// Package schema defines the feature schema a trained fraud model expects:
// the ordered list of feature names together with the per-feature fallback
// statistics computed at training time. The schema is loaded once at startup
// and treated as read-only for the lifetime of the process.
package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

// Feature is a single named column of the model's input vector.
type Feature struct {
	Name     string
	Fallback float64
}

// Range holds the low/high bounds observed for a feature during training.
type Range struct {
	Low  float64
	High float64
}

// Schema is the fixed, ordered feature layout the classifier was trained on.
// Names are unique; order matters and must never be reordered at serving time.
type Schema struct {
	features []Feature
	index    map[string]int
	ranges   map[string]Range
}

// SchemaError reports a malformed schema. It is fatal at load time.
type SchemaError struct {
	Reason string
	Name   string // offending feature name, if any
}

func (e *SchemaError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid feature schema: %s (feature %q)", e.Reason, e.Name)
	}
	return fmt.Sprintf("invalid feature schema: %s", e.Reason)
}

// New builds a schema from an ordered feature list. It fails with a
// *SchemaError if the list is empty or contains duplicate names.
func New(features []Feature) (*Schema, error) {
	if len(features) == 0 {
		return nil, &SchemaError{Reason: "feature order is empty"}
	}

	index := make(map[string]int, len(features))
	for i, f := range features {
		if f.Name == "" {
			return nil, &SchemaError{Reason: fmt.Sprintf("feature %d has no name", i)}
		}
		if _, dup := index[f.Name]; dup {
			return nil, &SchemaError{Reason: "duplicate feature name", Name: f.Name}
		}
		index[f.Name] = i
	}

	return &Schema{
		features: append([]Feature(nil), features...),
		index:    index,
		ranges:   make(map[string]Range),
	}, nil
}

// statsFile mirrors the feature_stats.json artifact written by the training
// pipeline: the column order, the per-column medians used as imputation
// defaults, and the 1%/99% quantile ranges.
type statsFile struct {
	FeatureOrder []string              `json:"feature_order"`
	Defaults     map[string]float64    `json:"defaults"`
	InputRanges  map[string][2]float64 `json:"input_ranges"`
}

// Load reads a feature_stats.json artifact and builds the serving schema.
// A feature listed in feature_order but absent from defaults gets a 0.0
// fallback.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feature stats %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a schema from raw feature_stats.json bytes.
func Parse(data []byte) (*Schema, error) {
	var stats statsFile
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("parse feature stats: %w", err)
	}

	features := make([]Feature, 0, len(stats.FeatureOrder))
	for _, name := range stats.FeatureOrder {
		features = append(features, Feature{
			Name:     name,
			Fallback: stats.Defaults[name], // zero value when absent
		})
	}

	s, err := New(features)
	if err != nil {
		return nil, err
	}

	for name, r := range stats.InputRanges {
		if _, known := s.index[name]; !known {
			continue
		}
		lo, hi := r[0], r[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		s.ranges[name] = Range{Low: lo, High: hi}
	}

	log.Info().
		Int("features", len(features)).
		Int("ranges", len(s.ranges)).
		Msg("feature schema loaded")

	return s, nil
}

// Len returns the number of features, which is also the vector length.
func (s *Schema) Len() int {
	return len(s.features)
}

// Features returns the features in model order.
func (s *Schema) Features() []Feature {
	return append([]Feature(nil), s.features...)
}

// Names returns the feature names in model order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.features))
	for i, f := range s.features {
		names[i] = f.Name
	}
	return names
}

// Index returns the vector position of a feature name.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Fallback returns the imputation value for a feature name, or 0.0 when the
// name is unknown.
func (s *Schema) Fallback(name string) float64 {
	if i, ok := s.index[name]; ok {
		return s.features[i].Fallback
	}
	return 0.0
}

// InputRange returns the training-time value range for a feature, when known.
func (s *Schema) InputRange(name string) (Range, bool) {
	r, ok := s.ranges[name]
	return r, ok
}
