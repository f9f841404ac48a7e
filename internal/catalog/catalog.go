// Package catalog provides a SQLite-backed store of named puzzles.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"crosswarped.com/nonogrid"
)

// Store handles SQLite database operations for the puzzle catalog.
type Store struct {
	db *sql.DB
}

// Entry is one stored puzzle.
type Entry struct {
	ID        string
	Name      string
	Rules     nonogrid.Rules
	CreatedAt time.Time
}

// Open opens (creating if necessary) the catalog at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS puzzles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		rules TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_puzzles_name ON puzzles(name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the rules under the given name, replacing the clues of an
// existing puzzle with the same name, and returns the puzzle id.
func (s *Store) Save(ctx context.Context, name string, rules nonogrid.Rules) (string, error) {
	data, err := json.Marshal(rules)
	if err != nil {
		return "", fmt.Errorf("encode rules: %w", err)
	}

	var id string
	err = s.db.QueryRowContext(ctx, `SELECT id FROM puzzles WHERE name = ?`, name).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		id = uuid.New().String()
		_, err = s.db.ExecContext(ctx, `INSERT INTO puzzles (id, name, rules) VALUES (?, ?, ?)`, id, name, string(data))
	case err == nil:
		_, err = s.db.ExecContext(ctx, `UPDATE puzzles SET rules = ? WHERE id = ?`, string(data), id)
	}
	if err != nil {
		return "", fmt.Errorf("save puzzle %q: %w", name, err)
	}
	return id, nil
}

// Load returns the rules stored under the given name.
func (s *Store) Load(ctx context.Context, name string) (nonogrid.Rules, error) {
	var rules nonogrid.Rules
	var data string

	err := s.db.QueryRowContext(ctx, `SELECT rules FROM puzzles WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return rules, fmt.Errorf("puzzle %q not found", name)
	}
	if err != nil {
		return rules, fmt.Errorf("load puzzle %q: %w", name, err)
	}

	if err := json.Unmarshal([]byte(data), &rules); err != nil {
		return rules, fmt.Errorf("decode puzzle %q: %w", name, err)
	}
	return rules, nil
}

// List returns all stored puzzles ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, rules, created_at FROM puzzles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list puzzles: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var data string
		if err := rows.Scan(&e.ID, &e.Name, &data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan puzzle: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &e.Rules); err != nil {
			return nil, fmt.Errorf("decode puzzle %q: %w", e.Name, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
