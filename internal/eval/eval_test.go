package eval

import (
	"math"
	"testing"
)

func TestConfusion_MixedOutcomes(t *testing.T) {
	// predictions [1,0,1,0] vs truth [1,0,0,1]
	outcomes := []Outcome{
		{Predicted: 1, Actual: 1},
		{Predicted: 0, Actual: 0},
		{Predicted: 1, Actual: 0},
		{Predicted: 0, Actual: 1},
	}

	c := Confusion(outcomes)
	if c.TP != 1 || c.FP != 1 || c.TN != 1 || c.FN != 1 {
		t.Fatalf("counts = %+v, want TP=FP=TN=FN=1", c)
	}

	s := c.Stats()
	for name, got := range map[string]float64{
		"precision": s.Precision,
		"recall":    s.Recall,
		"f1":        s.F1,
		"accuracy":  s.Accuracy,
	} {
		if got != 0.5 {
			t.Errorf("%s = %v, want 0.5", name, got)
		}
	}
}

func TestStats_UndefinedDenominators(t *testing.T) {
	// Nothing predicted positive: precision undefined, recall defined.
	c := Confusion([]Outcome{
		{Predicted: 0, Actual: 1},
		{Predicted: 0, Actual: 0},
	})
	s := c.Stats()
	if !math.IsNaN(s.Precision) {
		t.Errorf("precision = %v, want NaN when nothing is flagged", s.Precision)
	}
	if s.Recall != 0 {
		t.Errorf("recall = %v, want 0", s.Recall)
	}
	if !math.IsNaN(s.F1) {
		t.Errorf("f1 = %v, want NaN when precision is undefined", s.F1)
	}

	// No positives in the truth at all: recall undefined at matrix level.
	c = Confusion([]Outcome{
		{Predicted: 1, Actual: 0},
		{Predicted: 0, Actual: 0},
	})
	s = c.Stats()
	if !math.IsNaN(s.Recall) {
		t.Errorf("recall = %v, want NaN when no positives exist", s.Recall)
	}

	// Empty input: everything undefined.
	s = Confusion(nil).Stats()
	if !math.IsNaN(s.Precision) || !math.IsNaN(s.Recall) || !math.IsNaN(s.Accuracy) {
		t.Errorf("empty-input stats should be NaN, got %+v", s)
	}
}

func TestSweep_KnownPoints(t *testing.T) {
	scored := []Scored{
		{Probability: 0.2, Actual: 0},
		{Probability: 0.6, Actual: 1},
		{Probability: 0.9, Actual: 1},
	}

	points, err := Sweep(scored, []float64{0.0, 0.5, 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}

	// Threshold 0.0: everything flagged.
	if points[0].Recall != 1.0 || points[0].Flagged != 3 {
		t.Errorf("at 0.0: recall=%v flagged=%d, want 1.0 and 3", points[0].Recall, points[0].Flagged)
	}

	// Threshold 0.5: both positives caught, nothing false-flagged.
	if points[1].Recall != 1.0 || points[1].Precision != 1.0 || points[1].Flagged != 2 {
		t.Errorf("at 0.5: %+v, want precision=recall=1, flagged=2", points[1])
	}

	// Threshold 1.0: only probability exactly 1.0 would be flagged; none is.
	if points[2].Recall != 0.0 || points[2].Flagged != 0 {
		t.Errorf("at 1.0: recall=%v flagged=%d, want 0 and 0", points[2].Recall, points[2].Flagged)
	}
	if !math.IsNaN(points[2].Precision) {
		t.Errorf("at 1.0: precision=%v, want NaN (nothing flagged)", points[2].Precision)
	}
}

func TestSweep_Monotonicity(t *testing.T) {
	scored := []Scored{
		{0.05, 0}, {0.15, 0}, {0.35, 1}, {0.35, 0}, {0.55, 1},
		{0.72, 0}, {0.80, 1}, {0.91, 1}, {0.97, 0}, {1.00, 1},
	}

	points, err := Sweep(scored, DefaultThresholds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 101 {
		t.Fatalf("default sweep has %d points, want 101", len(points))
	}

	for i := 1; i < len(points); i++ {
		if points[i].Recall > points[i-1].Recall {
			t.Errorf("recall increased from %v to %v at threshold %v",
				points[i-1].Recall, points[i].Recall, points[i].Threshold)
		}
		if points[i].Flagged > points[i-1].Flagged {
			t.Errorf("flagged count increased from %d to %d at threshold %v",
				points[i-1].Flagged, points[i].Flagged, points[i].Threshold)
		}
	}
}

func TestSweep_PreservesCallerOrder(t *testing.T) {
	scored := []Scored{{0.5, 1}}
	ths := []float64{0.9, 0.1, 0.5}

	points, err := Sweep(scored, ths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, th := range ths {
		if points[i].Threshold != th {
			t.Errorf("point %d threshold = %v, want %v (no implicit sorting)", i, points[i].Threshold, th)
		}
	}
}

func TestSweep_NoPositivesRecallIsZero(t *testing.T) {
	scored := []Scored{{0.8, 0}, {0.2, 0}}

	points, err := Sweep(scored, []float64{0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Recall stays in [0,1] even with an empty positive set; precision keeps
	// the undefined flag. The asymmetry is deliberate.
	if points[0].Recall != 0 {
		t.Errorf("recall = %v, want 0", points[0].Recall)
	}
	if math.IsNaN(points[0].Recall) {
		t.Error("sweep recall must never be NaN")
	}
	if points[0].Precision != 0.5 {
		t.Errorf("precision = %v, want 0.5", points[0].Precision)
	}
}

func TestSweep_RejectsOutOfRangeThreshold(t *testing.T) {
	_, err := Sweep([]Scored{{0.5, 1}}, []float64{0.5, 1.5})
	if err == nil {
		t.Fatal("expected error for threshold outside [0,1]")
	}
}

func TestDefaultThresholds(t *testing.T) {
	ths := DefaultThresholds()
	if len(ths) != 101 {
		t.Fatalf("got %d thresholds, want 101", len(ths))
	}
	if ths[0] != 0.0 || ths[100] != 1.0 {
		t.Errorf("endpoints = %v, %v; want 0.0 and 1.0", ths[0], ths[100])
	}
	for i := 1; i < len(ths); i++ {
		if ths[i] <= ths[i-1] {
			t.Errorf("thresholds not strictly ascending at %d: %v <= %v", i, ths[i], ths[i-1])
		}
	}
}
