package features

import (
	"errors"
	"math"
	"testing"

	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/schema"
)

func testSchema(t *testing.T, feats ...schema.Feature) *schema.Schema {
	t.Helper()
	s, err := schema.New(feats)
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return s
}

func TestBuild_SuppliedValueWins(t *testing.T) {
	s := testSchema(t,
		schema.Feature{Name: "Amount", Fallback: 0.0},
		schema.Feature{Name: "Time", Fallback: 0.0},
	)
	b := NewBuilder(s)

	vec := b.Build(Record{"Amount": 250.75})
	if len(vec) != 2 {
		t.Fatalf("vector length = %d, want 2", len(vec))
	}
	if vec[0] != 250.75 || vec[1] != 0.0 {
		t.Errorf("vector = %v, want [250.75 0]", vec)
	}
}

func TestBuild_FallbackExactness(t *testing.T) {
	s := testSchema(t,
		schema.Feature{Name: "Time", Fallback: 84692.0},
		schema.Feature{Name: "V1", Fallback: -0.0215},
		schema.Feature{Name: "Amount", Fallback: 22.0},
	)
	b := NewBuilder(s)

	vec := b.Build(Record{"V1": 1.5})
	if vec[0] != 84692.0 {
		t.Errorf("Time fallback = %v, want exactly 84692.0", vec[0])
	}
	if vec[1] != 1.5 {
		t.Errorf("supplied V1 = %v, want 1.5", vec[1])
	}
	if vec[2] != 22.0 {
		t.Errorf("Amount fallback = %v, want exactly 22.0", vec[2])
	}
}

func TestBuild_EmptyRecordIsComplete(t *testing.T) {
	s := testSchema(t,
		schema.Feature{Name: "Time", Fallback: 1.0},
		schema.Feature{Name: "V1", Fallback: 2.0},
		schema.Feature{Name: "Amount", Fallback: 3.0},
	)
	b := NewBuilder(s)

	for _, rec := range []Record{nil, {}} {
		vec := b.Build(rec)
		if len(vec) != s.Len() {
			t.Fatalf("vector length = %d, want %d", len(vec), s.Len())
		}
		for i, v := range vec {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("entry %d is not finite: %v", i, v)
			}
		}
	}
}

func TestBuild_NonFiniteSuppliedValuesFallBack(t *testing.T) {
	s := testSchema(t, schema.Feature{Name: "Amount", Fallback: 9.0})
	b := NewBuilder(s)

	cases := map[string]float64{
		"nan":  math.NaN(),
		"+inf": math.Inf(1),
		"-inf": math.Inf(-1),
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			vec := b.Build(Record{"Amount": v})
			if vec[0] != 9.0 {
				t.Errorf("got %v, want fallback 9.0", vec[0])
			}
		})
	}
}

func TestBuild_UnknownKeysIgnored(t *testing.T) {
	s := testSchema(t, schema.Feature{Name: "Amount", Fallback: 0.0})
	b := NewBuilder(s)

	vec := b.Build(Record{"Amount": 10.0, "NotAFeature": 99.0})
	if len(vec) != 1 || vec[0] != 10.0 {
		t.Errorf("vector = %v, want [10]", vec)
	}
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord(map[string]any{
		"Amount": 12.5,
		"Time":   "10000",
		"V1":     "  -1.25 ",
		"V2":     "",
		"V3":     nil,
	}, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec["Amount"] != 12.5 || rec["Time"] != 10000 || rec["V1"] != -1.25 {
		t.Errorf("unexpected record: %v", rec)
	}
	if _, ok := rec["V2"]; ok {
		t.Error("blank cell should be treated as absent")
	}
	if _, ok := rec["V3"]; ok {
		t.Error("nil value should be treated as absent")
	}
}

func TestParseRecord_NonNumericField(t *testing.T) {
	_, err := ParseRecord(map[string]any{"Amount": "lots"}, 7)
	if err == nil {
		t.Fatal("expected error for non-numeric value")
	}

	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected *FieldError, got %T", err)
	}
	if fieldErr.Index != 7 || fieldErr.Field != "Amount" || fieldErr.Value != "lots" {
		t.Errorf("unexpected error detail: %+v", fieldErr)
	}
}
