package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists key-value pairs in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the store at the given path.
// The caller owns the store and must call Close when done.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open kv store: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv_entries (key TEXT PRIMARY KEY, value TEXT, is_list INTEGER NOT NULL DEFAULT 0)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init kv store schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetString(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ? AND is_list = 0`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) SetString(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, is_list) VALUES (?, ?, 0)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, is_list = 0`, key, value)
	return err
}

func (s *SQLiteStore) GetStringList(ctx context.Context, key string) ([]string, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ? AND is_list = 1`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, false, fmt.Errorf("corrupt list for key %s: %w", key, err)
	}
	return values, true, nil
}

func (s *SQLiteStore) SetStringList(ctx context.Context, key string, values []string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, is_list) VALUES (?, ?, 1)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, is_list = 1`, key, string(raw))
	return err
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
	return err
}
