package viewstate

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// Persister mirrors the snapshot map to a backing store. SaveAll replaces
// the persisted set with the given entries in order; LoadAll returns them in
// the same order.
type Persister interface {
	SaveAll(entries []*Snapshot) error
	LoadAll() ([]*Snapshot, error)
	Clear() error
}

// NopPersister discards everything. Used when no persistence is configured.
type NopPersister struct{}

func (NopPersister) SaveAll([]*Snapshot) error     { return nil }
func (NopPersister) LoadAll() ([]*Snapshot, error) { return nil, nil }
func (NopPersister) Clear() error                  { return nil }

// SQLitePersister stores the snapshot map in a single SQLite table, one row
// per snapshot with the full snapshot serialized as JSON. Position encodes
// insertion order so eviction order survives a reload.
type SQLitePersister struct {
	db *sql.DB
}

// NewSQLitePersister opens (or creates) the database at path and ensures the
// snapshot table exists.
func NewSQLitePersister(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS view_snapshots (
			position       INTEGER PRIMARY KEY,
			name           TEXT NOT NULL UNIQUE,
			snapshot_json  TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot table: %w", err)
	}

	return &SQLitePersister{db: db}, nil
}

// Close releases the underlying database handle.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}

// SaveAll atomically replaces the persisted snapshot set.
func (p *SQLitePersister) SaveAll(entries []*Snapshot) error {
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM view_snapshots`); err != nil {
		return fmt.Errorf("clear snapshot table: %w", err)
	}

	for i, snap := range entries {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("marshal snapshot %q: %w", snap.Name, err)
		}
		_, err = tx.Exec(
			`INSERT INTO view_snapshots (position, name, snapshot_json) VALUES (?, ?, ?)`,
			i, snap.Name, string(data),
		)
		if err != nil {
			return fmt.Errorf("insert snapshot %q: %w", snap.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot save: %w", err)
	}
	return nil
}

// LoadAll returns all persisted snapshots in insertion order.
func (p *SQLitePersister) LoadAll() ([]*Snapshot, error) {
	rows, err := p.db.Query(`SELECT snapshot_json FROM view_snapshots ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	defer rows.Close()

	var entries []*Snapshot
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		var snap Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return nil, fmt.Errorf("unmarshal persisted snapshot: %w", err)
		}
		entries = append(entries, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load snapshot rows: %w", err)
	}
	return entries, nil
}

// Clear removes every persisted snapshot.
func (p *SQLitePersister) Clear() error {
	if _, err := p.db.Exec(`DELETE FROM view_snapshots`); err != nil {
		return fmt.Errorf("clear snapshots: %w", err)
	}
	return nil
}
