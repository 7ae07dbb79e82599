package eval

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadScored(t *testing.T) {
	in := strings.NewReader(
		"id,Amount,fraud_probability,Class\n" +
			"tx-1,100.0,0.92,1\n" +
			"tx-2,5.5,0.03,0\n")

	records, err := ReadScored(in, "")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, ScoredRecord{ID: "tx-1", Probability: 0.92, Actual: 1}, records[0])
	assert.Equal(t, ScoredRecord{ID: "tx-2", Probability: 0.03, Actual: 0}, records[1])
}

func TestReadScored_RowIndexFallbackID(t *testing.T) {
	in := strings.NewReader(
		"fraud_probability,Class\n" +
			"0.7,1\n" +
			"0.2,0\n")

	records, err := ReadScored(in, "")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "0", records[0].ID)
	assert.Equal(t, "1", records[1].ID)
}

func TestReadScored_CustomTruthColumn(t *testing.T) {
	in := strings.NewReader(
		"fraud_probability,is_fraud\n" +
			"0.9,1\n")

	records, err := ReadScored(in, "is_fraud")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Actual)
}

func TestReadScored_MissingColumns(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"no probability", "id,Class\n"},
		{"no truth", "id,fraud_probability\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadScored(strings.NewReader(tc.header), "")
			assert.Error(t, err)
		})
	}
}

func TestReadScored_BadValues(t *testing.T) {
	cases := []struct {
		name string
		rows string
	}{
		{"non-numeric probability", "fraud_probability,Class\nhigh,1\n"},
		{"non-binary label", "fraud_probability,Class\n0.5,2\n"},
		{"textual label", "fraud_probability,Class\n0.5,yes\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadScored(strings.NewReader(tc.rows), "")
			assert.Error(t, err)
		})
	}
}

func TestLoadScoredCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scored.csv")
	data := "fraud_probability,Class\n0.8,1\n0.1,0\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	records, err := LoadScoredCSV(path, "")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = LoadScoredCSV(filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.Error(t, err)
}

func TestAsScored(t *testing.T) {
	records := []ScoredRecord{
		{ID: "a", Probability: 0.9, Actual: 1},
		{ID: "b", Probability: 0.1, Actual: 0},
	}

	scored := AsScored(records)
	require.Len(t, scored, 2)
	assert.Equal(t, Scored{Probability: 0.9, Actual: 1}, scored[0])
	assert.Equal(t, Scored{Probability: 0.1, Actual: 0}, scored[1])
}
