package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage is a SQLite storage backend.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates a new SQLite storage backend.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStorage{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// init creates the necessary tables.
func (s *SQLiteStorage) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			name TEXT PRIMARY KEY,
			snapshot TEXT NOT NULL,
			modified INTEGER NOT NULL
		);
	`)
	return err
}

// Save persists a project snapshot to SQLite.
func (s *SQLiteStorage) Save(p *ProjectData) error {
	if !json.Valid(p.Snapshot) {
		return fmt.Errorf("project %q: snapshot is not valid JSON", p.Name)
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO projects (name, snapshot, modified)
		VALUES (?, ?, ?)
	`, p.Name, string(p.Snapshot), p.Modified.UnixMilli())
	return err
}

// Load retrieves a project snapshot from SQLite.
func (s *SQLiteStorage) Load(name string) (*ProjectData, error) {
	var snapshot string
	var modified int64
	err := s.db.QueryRow(`
		SELECT snapshot, modified FROM projects WHERE name = ?
	`, name).Scan(&snapshot, &modified)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return &ProjectData{
		Name:     name,
		Snapshot: json.RawMessage(snapshot),
		Modified: time.UnixMilli(modified),
	}, nil
}

// List returns the stored project names.
func (s *SQLiteStorage) List() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM projects ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a project snapshot.
func (s *SQLiteStorage) Delete(name string) error {
	_, err := s.db.Exec("DELETE FROM projects WHERE name = ?", name)
	return err
}

// Close closes the storage backend.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
