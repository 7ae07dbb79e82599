package cfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

type thresholdFile struct {
	Threshold float64 `json:"threshold"`
}

// LoadThreshold reads the persisted decision threshold from path, returning
// fallback when the file is missing or unreadable. Stored values outside
// [0, 1] are clamped rather than rejected so a hand-edited file cannot take
// the service down.
func LoadThreshold(path string, fallback float64) float64 {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("threshold file unreadable, using default")
		}
		return clampUnit(fallback)
	}

	var tf thresholdFile
	if err := json.Unmarshal(data, &tf); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("threshold file malformed, using default")
		return clampUnit(fallback)
	}

	return clampUnit(tf.Threshold)
}

// SaveThreshold persists the decision threshold to path. The value is
// clamped to [0, 1] and the write goes through a temp file rename so a
// crash cannot leave a half-written file behind.
func SaveThreshold(path string, value float64) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create threshold dir: %w", err)
		}
	}

	data, err := json.Marshal(thresholdFile{Threshold: clampUnit(value)})
	if err != nil {
		return fmt.Errorf("encode threshold: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write threshold file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace threshold file: %w", err)
	}

	return nil
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
