package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"habitvault/internal/shared"
)

// SQLiteStore persists entries in a single kv_entries table.
//
// The schema is created by [shared.RunMigrations]; callers open the database
// with [shared.NewDatabase] and hand the connection over.
type SQLiteStore struct {
	notifier
	db *sql.DB
}

// NewSQLiteStore wraps an open database connection.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv_entries WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: key %q", shared.ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read entry: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	query := `
		INSERT INTO kv_entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	s.notify(key)
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv_entries WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	s.notify(key)
	return nil
}

func (s *SQLiteStore) Keys(prefix string) ([]string, error) {
	// substr comparison instead of LIKE: prefixes may contain LIKE wildcards
	// (the backup prefix ends in an underscore).
	rows, err := s.db.Query("SELECT key FROM kv_entries WHERE substr(key, 1, length(?)) = ?", prefix, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate keys: %w", err)
	}
	return keys, nil
}
