package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS records (
	kind    TEXT    NOT NULL,
	id      TEXT    NOT NULL,
	version INTEGER NOT NULL,
	spec    BLOB    NOT NULL,
	PRIMARY KEY (kind, id)
)`

// SQLiteDB is a shared SQLite handle that backs one SQLiteStore per record kind.
type SQLiteDB struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteDB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

// Close closes the database handle.
func (d *SQLiteDB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// SQLiteStore is a Storer that writes records of one kind to a shared
// SQLite database. Like FileStore it serves reads from memory.
type SQLiteStore[T ValidatingSpec] struct {
	db      *sql.DB
	kind    string
	records map[string]T

	mu sync.RWMutex
}

// NewSQLiteStore loads every record of kind from the database.
func NewSQLiteStore[T ValidatingSpec](d *SQLiteDB, kind string) (*SQLiteStore[T], error) {
	s := &SQLiteStore[T]{
		db:      d.db,
		kind:    kind,
		records: map[string]T{},
	}
	if err := s.load(context.Background()); err != nil {
		return nil, fmt.Errorf("loading %s records: %w", kind, err)
	}
	return s, nil
}

func (s *SQLiteStore[T]) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, version, spec FROM records WHERE kind = ?`, s.kind)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	s.mu.Lock()
	defer s.mu.Unlock()

	for rows.Next() {
		var (
			id      string
			version uint
			raw     []byte
		)
		if err := rows.Scan(&id, &version, &raw); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}

		asset := &Asset[T]{Version: version, Identifier: Identifier(id)}
		if err := json.Unmarshal(raw, &asset.Spec); err != nil {
			return fmt.Errorf("unmarshalling %q: %w", id, err)
		}
		if err := asset.Validate(); err != nil {
			return fmt.Errorf("validating %q: %w", id, err)
		}
		s.records[id] = asset.Spec
	}
	return rows.Err()
}

func (s *SQLiteStore[T]) Save(id string, o T) error {
	asset := &Asset[T]{Version: assetVersion, Identifier: Identifier(id), Spec: o}
	if err := asset.Validate(); err != nil {
		return fmt.Errorf("validating %q: %w", id, err)
	}

	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT INTO records (kind, id, version, spec) VALUES (?, ?, ?, ?)
		 ON CONFLICT (kind, id) DO UPDATE SET version = excluded.version, spec = excluded.spec`,
		s.kind, id, assetVersion, raw,
	)
	if err != nil {
		return fmt.Errorf("saving %s %q: %w", s.kind, id, err)
	}
	s.records[id] = o
	return nil
}

func (s *SQLiteStore[T]) Get(id string) T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[id]
}

func (s *SQLiteStore[T]) GetAll() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vals := make(map[string]T, len(s.records))
	for id, v := range s.records {
		vals[id] = v
	}
	return vals
}

func (s *SQLiteStore[T]) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM records WHERE kind = ? AND id = ?`, s.kind, id); err != nil {
		return fmt.Errorf("deleting %s %q: %w", s.kind, id, err)
	}
	delete(s.records, id)
	return nil
}
