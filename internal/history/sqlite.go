package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    line TEXT NOT NULL UNIQUE,
    created INTEGER NOT NULL
);
`

// SQLiteStore keeps history in a SQLite database. Appends are written
// immediately; Save trims the table to the configured maximum.
type SQLiteStore struct {
	db  *sql.DB
	max int
}

// OpenSQLiteStore opens or creates the database at path.
func OpenSQLiteStore(path string, max int) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	dsn := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(2000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db, max: max}, nil
}

func (s *SQLiteStore) Load() ([]string, error) {
	rows, err := s.db.Query(`SELECT line FROM entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if s.max > 0 && len(out) > s.max {
		out = out[len(out)-s.max:]
	}
	return out, nil
}

// Append moves an existing line to the end by reinserting it.
func (s *SQLiteStore) Append(entry string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM entries WHERE line = ?`, entry); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO entries (line, created) VALUES (?, ?)`,
		entry, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Save() error {
	if s.max <= 0 {
		return nil
	}
	_, err := s.db.Exec(`DELETE FROM entries WHERE id NOT IN
		(SELECT id FROM entries ORDER BY id DESC LIMIT ?)`, s.max)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
