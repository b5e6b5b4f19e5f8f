package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStorage is a PostgreSQL storage backend.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL storage backend.
func NewPostgresStorage(url string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	s := &PostgresStorage{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// init creates the necessary tables.
func (s *PostgresStorage) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			name TEXT PRIMARY KEY,
			snapshot JSONB NOT NULL,
			modified BIGINT NOT NULL
		);
	`)
	return err
}

// Save persists a project snapshot to PostgreSQL.
func (s *PostgresStorage) Save(p *ProjectData) error {
	if !json.Valid(p.Snapshot) {
		return fmt.Errorf("project %q: snapshot is not valid JSON", p.Name)
	}
	_, err := s.db.Exec(`
		INSERT INTO projects (name, snapshot, modified)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET snapshot = $2, modified = $3
	`, p.Name, string(p.Snapshot), p.Modified.UnixMilli())
	return err
}

// Load retrieves a project snapshot from PostgreSQL.
func (s *PostgresStorage) Load(name string) (*ProjectData, error) {
	var snapshot string
	var modified int64
	err := s.db.QueryRow(`
		SELECT snapshot, modified FROM projects WHERE name = $1
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
func (s *PostgresStorage) List() ([]string, error) {
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
func (s *PostgresStorage) Delete(name string) error {
	_, err := s.db.Exec("DELETE FROM projects WHERE name = $1", name)
	return err
}

// Close closes the storage backend.
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
