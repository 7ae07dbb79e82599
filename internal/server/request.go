package server

import (
	"encoding/json"
	"fmt"
)

// PredictRequest is the body of POST /predict. The features field accepts
// either an object keyed by feature name or a positional array matching the
// schema order. An optional threshold overrides the service default for this
// request only.
type PredictRequest struct {
	Named      map[string]any
	Positional []float64
	Threshold  *float64
}

func (r *PredictRequest) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Features  json.RawMessage `json:"features"`
		Threshold *float64        `json:"threshold"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	r.Threshold = envelope.Threshold

	if len(envelope.Features) == 0 {
		return fmt.Errorf("features field is required")
	}

	switch envelope.Features[0] {
	case '[':
		return json.Unmarshal(envelope.Features, &r.Positional)
	case '{':
		return json.Unmarshal(envelope.Features, &r.Named)
	default:
		return fmt.Errorf("features must be an object or an array")
	}
}

// BatchRequest is the body of POST /predict/batch. Each record follows the
// same named-or-positional convention as a single prediction.
type BatchRequest struct {
	Records   []json.RawMessage `json:"records"`
	Threshold *float64          `json:"threshold"`
}

type batchRecord struct {
	Named      map[string]any
	Positional []float64
}

func parseBatchRecord(data json.RawMessage) (batchRecord, error) {
	var rec batchRecord
	if len(data) == 0 {
		return rec, fmt.Errorf("empty record")
	}

	var err error
	switch data[0] {
	case '[':
		err = json.Unmarshal(data, &rec.Positional)
	case '{':
		err = json.Unmarshal(data, &rec.Named)
	default:
		err = fmt.Errorf("record must be an object or an array")
	}
	return rec, err
}
