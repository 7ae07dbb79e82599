package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is a partial, named view of one transaction: only the fields the
// caller knows are present. Missing fields are filled from schema fallbacks
// when the vector is built.
type Record map[string]float64

// FieldError reports a single field of a record that could not be coerced to
// a number. Index is the record's position in its batch (-1 for single
// records) so the operator can find the offending row.
type FieldError struct {
	Index int
	Field string
	Value string
}

func (e *FieldError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("record %d: field %q: value %q is not numeric", e.Index, e.Field, e.Value)
	}
	return fmt.Sprintf("field %q: value %q is not numeric", e.Field, e.Value)
}

// ParseRecord coerces a loosely-typed mapping (as decoded from JSON or read
// from a CSV row) into a Record. Numeric strings are accepted; empty strings
// count as absent; anything else fails with a *FieldError carrying the batch
// index.
func ParseRecord(raw map[string]any, index int) (Record, error) {
	rec := make(Record, len(raw))
	for field, v := range raw {
		switch val := v.(type) {
		case nil:
			// absent
		case float64:
			rec[field] = val
		case float32:
			rec[field] = float64(val)
		case int:
			rec[field] = float64(val)
		case int64:
			rec[field] = float64(val)
		case json.Number:
			f, err := val.Float64()
			if err != nil {
				return nil, &FieldError{Index: index, Field: field, Value: val.String()}
			}
			rec[field] = f
		case string:
			trimmed := strings.TrimSpace(val)
			if trimmed == "" {
				continue // blank cell, treated as absent
			}
			f, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				return nil, &FieldError{Index: index, Field: field, Value: val}
			}
			rec[field] = f
		case bool:
			return nil, &FieldError{Index: index, Field: field, Value: strconv.FormatBool(val)}
		default:
			return nil, &FieldError{Index: index, Field: field, Value: fmt.Sprintf("%v", v)}
		}
	}
	return rec, nil
}

// has reports whether the record supplies a usable (finite) value for field.
func (r Record) has(field string) (float64, bool) {
	v, ok := r[field]
	if !ok {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
