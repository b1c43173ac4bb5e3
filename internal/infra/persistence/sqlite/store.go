// Package sqlite provides a SQLite-backed persistent store. It reuses the
// in-memory implementation for transactional semantics and snapshots the
// full state to a single table as JSON blobs after every successful commit.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"talentcore/internal/infra/persistence/memory"
	"talentcore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// Store persists the in-memory state to a SQLite file.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore constructs a snapshotting SQLite-backed persistent store.
func NewStore(path string, engine *domain.RulesEngine) (*Store, error) {
	if path == "" {
		path = "talentcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, domain.PersistenceError{Op: "create dirs", Err: err}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, domain.PersistenceError{Op: "open sqlite", Err: err}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, domain.PersistenceError{Op: "create state table", Err: err}
	}
	s := &Store{Store: memory.NewStore(engine), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

var buckets = []string{"employees", "units", "competencies", "gaps", "plans", "courses", "trainings", "kpis", "sequences"}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return domain.PersistenceError{Op: "select state", Err: err}
	}
	defer func() { _ = rows.Close() }()

	snapshot := memory.Snapshot{}
	loaded := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return domain.PersistenceError{Op: "scan state", Err: err}
		}
		if err := decodeBucket(&snapshot, bucket, payload); err != nil {
			return err
		}
		loaded = true
	}
	if err := rows.Err(); err != nil {
		return domain.PersistenceError{Op: "iterate state", Err: err}
	}
	if loaded {
		s.ImportState(snapshot)
	}
	return nil
}

func decodeBucket(snapshot *memory.Snapshot, bucket string, payload []byte) error {
	var err error
	switch bucket {
	case "employees":
		err = json.Unmarshal(payload, &snapshot.Employees)
	case "units":
		err = json.Unmarshal(payload, &snapshot.Units)
	case "competencies":
		err = json.Unmarshal(payload, &snapshot.Competencies)
	case "gaps":
		err = json.Unmarshal(payload, &snapshot.Gaps)
	case "plans":
		err = json.Unmarshal(payload, &snapshot.Plans)
	case "courses":
		err = json.Unmarshal(payload, &snapshot.Courses)
	case "trainings":
		err = json.Unmarshal(payload, &snapshot.Trainings)
	case "kpis":
		err = json.Unmarshal(payload, &snapshot.KPIs)
	case "sequences":
		err = json.Unmarshal(payload, &snapshot.Sequences)
	}
	if err != nil {
		return domain.PersistenceError{Op: "decode " + bucket, Err: err}
	}
	return nil
}

func encodeBucket(snapshot memory.Snapshot, bucket string) ([]byte, error) {
	switch bucket {
	case "employees":
		return json.Marshal(snapshot.Employees)
	case "units":
		return json.Marshal(snapshot.Units)
	case "competencies":
		return json.Marshal(snapshot.Competencies)
	case "gaps":
		return json.Marshal(snapshot.Gaps)
	case "plans":
		return json.Marshal(snapshot.Plans)
	case "courses":
		return json.Marshal(snapshot.Courses)
	case "trainings":
		return json.Marshal(snapshot.Trainings)
	case "kpis":
		return json.Marshal(snapshot.KPIs)
	case "sequences":
		return json.Marshal(snapshot.Sequences)
	}
	return nil, fmt.Errorf("unknown bucket %s", bucket)
}

func (s *Store) persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return domain.PersistenceError{Op: "begin", Err: err}
	}
	for _, bucket := range buckets {
		payload, err := encodeBucket(snapshot, bucket)
		if err != nil {
			_ = tx.Rollback()
			return domain.PersistenceError{Op: "encode " + bucket, Err: err}
		}
		if _, err := tx.Exec(`INSERT INTO state (bucket, payload) VALUES (?, ?)
			ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`, bucket, payload); err != nil {
			_ = tx.Rollback()
			return domain.PersistenceError{Op: "write " + bucket, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.PersistenceError{Op: "commit", Err: err}
	}
	return nil
}

// RunInTransaction applies fn in memory, then snapshots to SQLite when the
// commit succeeds.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if err := s.persist(); err != nil {
		return res, err
	}
	return res, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
