package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteMemory implements the Memory interface on a single kv table
type SQLiteMemory struct {
	db *sql.DB
}

// NewSQLiteMemory opens (or creates) the SQLite database file at path
func NewSQLiteMemory(ctx context.Context, path string) (*SQLiteMemory, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS kv (
			k TEXT PRIMARY KEY,
			v BLOB NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite memory: %w", err)
		}
	}

	return &SQLiteMemory{db: db}, nil
}

// Store implements the Memory interface Store method
func (s *SQLiteMemory) Store(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrKeyEmpty
	}
	if value == nil {
		value = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv(k, v) VALUES(?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		key, value)
	return err
}

// Retrieve implements the Memory interface Retrieve method
func (s *SQLiteMemory) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Delete implements the Memory interface Delete method
func (s *SQLiteMemory) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyEmpty
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, key)
	return err
}

// List implements the Memory interface List method
func (s *SQLiteMemory) List(ctx context.Context, prefix string) ([]string, error) {
	// substr keeps '%' and '_' in prefixes literal, which LIKE would not.
	rows, err := s.db.QueryContext(ctx,
		`SELECT k FROM kv WHERE substr(k, 1, length(?)) = ? ORDER BY k`, prefix, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close implements the Memory interface Close method
func (s *SQLiteMemory) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
