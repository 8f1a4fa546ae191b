// SQLite-backed Storer. Uses ncruces/go-sqlite3/driver which provides a
// database/sql interface.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/kittclouds/gokitt/pkg/qgram"
)

// SQLiteStore is the SQLite-backed corpus store.
// Thread-safe for concurrent callers.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// schema defines the corpus tables: one metadata row per corpus, one
// row per key carrying that key's resolved edges as JSON arrays.
const schema = `
CREATE TABLE IF NOT EXISTS corpora (
    name TEXT PRIMARY KEY,
    arity INTEGER NOT NULL,
    num_keys INTEGER NOT NULL,
    num_grams INTEGER NOT NULL,
    grams TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- No foreign keys: referential integrity managed at application level.
CREATE TABLE IF NOT EXISTS corpus_keys (
    corpus TEXT NOT NULL,
    key_id INTEGER NOT NULL,
    key TEXT NOT NULL,
    gram_ids TEXT NOT NULL,
    weights TEXT NOT NULL,
    PRIMARY KEY (corpus, key_id)
);

CREATE INDEX IF NOT EXISTS idx_corpus_keys_key ON corpus_keys(key);
`

// NewSQLiteStore opens an in-memory store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN opens a store at the given DSN.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// Each pooled connection to ":memory:" would open its own database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveCorpus stores (or replaces) the named corpus snapshot in one
// transaction.
func (s *SQLiteStore) SaveCorpus(name string, arity int, snap *qgram.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	gramsJSON, err := json.Marshal(snap.Grams)
	if err != nil {
		return fmt.Errorf("store: marshal grams: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin save: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	var created int64
	err = tx.QueryRow(`SELECT created_at FROM corpora WHERE name = ?`, name).Scan(&created)
	if err == sql.ErrNoRows {
		created = now
	} else if err != nil {
		return fmt.Errorf("store: read prior corpus: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM corpus_keys WHERE corpus = ?`, name); err != nil {
		return fmt.Errorf("store: clear prior keys: %w", err)
	}
	_, err = tx.Exec(`
		INSERT INTO corpora (name, arity, num_keys, num_grams, grams, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			arity = excluded.arity,
			num_keys = excluded.num_keys,
			num_grams = excluded.num_grams,
			grams = excluded.grams,
			updated_at = excluded.updated_at`,
		name, arity, len(snap.Keys), len(snap.Grams), string(gramsJSON), created, now)
	if err != nil {
		return fmt.Errorf("store: upsert corpus: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO corpus_keys (corpus, key_id, key, gram_ids, weights)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare key insert: %w", err)
	}
	defer stmt.Close()

	for i, key := range snap.Keys {
		gramIDs, err := json.Marshal(snap.KeyGrams[i])
		if err != nil {
			return fmt.Errorf("store: marshal key %d gram ids: %w", i, err)
		}
		weights, err := json.Marshal(snap.KeyWeights[i])
		if err != nil {
			return fmt.Errorf("store: marshal key %d weights: %w", i, err)
		}
		if _, err := stmt.Exec(name, i, key, string(gramIDs), string(weights)); err != nil {
			return fmt.Errorf("store: insert key %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit save: %w", err)
	}
	return nil
}

// LoadCorpus reassembles the named corpus snapshot.
func (s *SQLiteStore) LoadCorpus(name string) (*qgram.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var numKeys int
	var gramsJSON string
	err := s.db.QueryRow(
		`SELECT num_keys, grams FROM corpora WHERE name = ?`, name,
	).Scan(&numKeys, &gramsJSON)
	if err == sql.ErrNoRows {
		return nil, &ErrCorpusNotFound{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("store: read corpus: %w", err)
	}

	snap := &qgram.Snapshot{
		Keys:       make([]string, numKeys),
		KeyGrams:   make([][]uint32, numKeys),
		KeyWeights: make([][]uint32, numKeys),
	}
	if err := json.Unmarshal([]byte(gramsJSON), &snap.Grams); err != nil {
		return nil, fmt.Errorf("store: unmarshal grams: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT key_id, key, gram_ids, weights FROM corpus_keys WHERE corpus = ? ORDER BY key_id`, name)
	if err != nil {
		return nil, fmt.Errorf("store: read keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var key, gramIDs, weights string
		if err := rows.Scan(&id, &key, &gramIDs, &weights); err != nil {
			return nil, fmt.Errorf("store: scan key row: %w", err)
		}
		if id < 0 || id >= numKeys {
			return nil, fmt.Errorf("store: key id %d outside corpus of %d keys", id, numKeys)
		}
		snap.Keys[id] = key
		if err := json.Unmarshal([]byte(gramIDs), &snap.KeyGrams[id]); err != nil {
			return nil, fmt.Errorf("store: unmarshal key %d gram ids: %w", id, err)
		}
		if err := json.Unmarshal([]byte(weights), &snap.KeyWeights[id]); err != nil {
			return nil, fmt.Errorf("store: unmarshal key %d weights: %w", id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate keys: %w", err)
	}
	return snap, nil
}

// GetCorpusInfo returns the named corpus metadata.
func (s *SQLiteStore) GetCorpusInfo(name string) (*CorpusInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanInfo(s.db.QueryRow(
		`SELECT name, arity, num_keys, num_grams, created_at, updated_at
		 FROM corpora WHERE name = ?`, name), name)
}

func (s *SQLiteStore) scanInfo(row *sql.Row, name string) (*CorpusInfo, error) {
	var info CorpusInfo
	err := row.Scan(&info.Name, &info.Arity, &info.NumKeys, &info.NumGrams,
		&info.CreatedAt, &info.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, &ErrCorpusNotFound{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("store: read corpus info: %w", err)
	}
	return &info, nil
}

// DeleteCorpus removes the named corpus and its keys; deleting an
// absent corpus is not an error.
func (s *SQLiteStore) DeleteCorpus(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM corpus_keys WHERE corpus = ?`, name); err != nil {
		return fmt.Errorf("store: delete keys: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM corpora WHERE name = ?`, name); err != nil {
		return fmt.Errorf("store: delete corpus: %w", err)
	}
	return tx.Commit()
}

// ListCorpora returns metadata for every stored corpus, by name.
func (s *SQLiteStore) ListCorpora() ([]*CorpusInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT name, arity, num_keys, num_grams, created_at, updated_at
		 FROM corpora ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list corpora: %w", err)
	}
	defer rows.Close()

	var out []*CorpusInfo
	for rows.Next() {
		var info CorpusInfo
		if err := rows.Scan(&info.Name, &info.Arity, &info.NumKeys, &info.NumGrams,
			&info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan corpus info: %w", err)
		}
		out = append(out, &info)
	}
	return out, rows.Err()
}

// CountCorpora returns the number of stored corpora.
func (s *SQLiteStore) CountCorpora() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM corpora`).Scan(&count); err != nil {
		return 0, fmt.Errorf("store: count corpora: %w", err)
	}
	return count, nil
}
