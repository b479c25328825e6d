// Package storage keeps an audit trail of scored transactions. It uses
// BoltDB as the underlying storage engine and stores one record per scored
// transaction, keyed by timestamp for efficient range queries.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"fraudscore/internal/features"
)

const scoresBucket = "scores"

// Score is one audited prediction: the raw input record plus the returned
// label and probability.
type Score struct {
	Ts          time.Time       `json:"ts"`
	Record      features.Record `json:"record"`
	Label       int             `json:"label"`
	Probability float64         `json:"probability"`
}

// Store persists scored transactions using BoltDB.
type Store struct {
	db *bbolt.DB
}

// New opens the audit database under dataPath and creates the scores
// bucket if needed.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "fraudscore-audit.db")

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

// Close closes the database. Call it when the store is no longer needed.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StoreScore appends one scored transaction. Keys are zero-padded
// nanosecond timestamps so cursor scans come back in time order.
func (s *Store) StoreScore(sc Score) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(scoresBucket))

		data, err := json.Marshal(sc)
		if err != nil {
			return fmt.Errorf("marshal score: %w", err)
		}

		return b.Put(key(sc.Ts), data)
	})
}

// GetScores retrieves scored transactions within a time range, inclusive
// of both ends, in time order.
func (s *Store) GetScores(start, end time.Time) ([]Score, error) {
	var scores []Score

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(scoresBucket)).Cursor()

		min, max := key(start), key(end)
		for k, v := c.Seek(min); k != nil && string(k) <= string(max); k, v = c.Next() {
			var sc Score
			if err := json.Unmarshal(v, &sc); err != nil {
				continue // Skip malformed records
			}
			scores = append(scores, sc)
		}

		return nil
	})

	return scores, err
}

func key(ts time.Time) []byte {
	return []byte(fmt.Sprintf("%020d", ts.UnixNano()))
}
