// Package features turns partial transaction records into the complete,
// ordered numeric vectors the trained classifier expects. Missing or
// non-finite values are imputed from training-time statistics so that vector
// construction never fails on incomplete input.
package features

import (
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/schema"
)

// Builder completes partial records against a fixed feature schema.
// It is stateless apart from the immutable schema and safe for concurrent use.
type Builder struct {
	schema *schema.Schema
}

// NewBuilder creates a builder bound to the given schema.
func NewBuilder(s *schema.Schema) *Builder {
	return &Builder{schema: s}
}

// Build produces the complete ordered vector for a partial record.
//
// For each feature in schema order: a finite supplied value wins, otherwise
// the schema fallback, otherwise 0.0. Keys not present in the schema are
// ignored. Build is a pure function of its inputs and cannot fail; schema
// validity is established at construction time.
func (b *Builder) Build(rec Record) []float64 {
	feats := b.schema.Features()
	vec := make([]float64, len(feats))
	for i, f := range feats {
		if v, ok := rec.has(f.Name); ok {
			vec[i] = v
		} else {
			vec[i] = f.Fallback
		}
	}
	return vec
}

// Schema returns the schema this builder completes records against.
func (b *Builder) Schema() *schema.Schema {
	return b.schema
}
