// Package storage provides persistent storage for the fraud scoring service.
// It uses BoltDB as the underlying storage engine to keep a durable log of
// scoring decisions for later audit and offline evaluation.
//
// The package provides thread-safe operations for storing and retrieving
// time-series data with efficient range queries and automatic bucket management.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const scoresBucket = "scores" // Bucket name for scoring decision records

// ScoreEntry is one scoring decision as persisted to the audit log.
type ScoreEntry struct {
	RequestID    string    `json:"request_id"`
	ModelVersion string    `json:"model_version"`
	Probability  float64   `json:"prob"`
	Label        int       `json:"label"`
	Threshold    float64   `json:"threshold"`
	Ts           time.Time `json:"ts"`
}

// Store provides persistent storage for scoring decisions using BoltDB.
// It supports efficient time-range queries per model version for audit
// and drift analysis.
type Store struct {
	db *bbolt.DB
}

// New creates a new storage instance with the specified data path.
// It initializes the BoltDB database and creates necessary buckets.
// Returns an error if the database cannot be opened or buckets cannot be created.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "fraud-scores.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(scoresBucket)); err != nil {
			return fmt.Errorf("create scores bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
// It should be called when the storage is no longer needed to ensure
// proper cleanup of database resources.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StoreScore appends a scoring decision to the audit log.
// The entry is stored with a key format of "version_timestamp_requestID" for
// efficient version-scoped time-range queries. Returns an error if the entry
// cannot be serialized or stored.
func (s *Store) StoreScore(entry ScoreEntry) error {
	if entry.Ts.IsZero() {
		entry.Ts = time.Now().UTC()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(scoresBucket))

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal score entry: %w", err)
		}

		key := fmt.Sprintf("%s_%020d_%s", entry.ModelVersion, entry.Ts.UnixNano(), entry.RequestID)
		return b.Put([]byte(key), data)
	})
}

// GetScores retrieves scoring decisions for a model version within a time range.
// Returns entries ordered by timestamp, or an error if the query fails.
// The time range is inclusive of both start and end times.
func (s *Store) GetScores(modelVersion string, start, end time.Time) ([]ScoreEntry, error) {
	var entries []ScoreEntry

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(scoresBucket))
		c := b.Cursor()

		prefix := []byte(modelVersion + "_")
		startKey := []byte(fmt.Sprintf("%s_%020d", modelVersion, start.UnixNano()))
		// The trailing 'z' keeps keys for the end nanosecond inside the range
		// regardless of their request ID suffix.
		endKey := []byte(fmt.Sprintf("%s_%020d_z", modelVersion, end.UnixNano()))

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			if !bytes.HasPrefix(k, prefix) {
				continue
			}

			var entry ScoreEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue // Skip malformed records
			}
			entries = append(entries, entry)
		}

		return nil
	})

	return entries, err
}

// CountScores reports how many decisions the log holds for a model version.
func (s *Store) CountScores(modelVersion string) (int, error) {
	count := 0
	prefix := []byte(modelVersion + "_")

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(scoresBucket)).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			count++
		}
		return nil
	})

	return count, err
}
