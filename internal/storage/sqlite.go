package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps each collection as one JSON document in the collections table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, key string, dst any) (bool, error) {
	if s.db == nil {
		return false, ErrClosed
	}
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM collections WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select collection: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode collection: %w", err)
	}
	return true, nil
}

const upsertCollection = `
	INSERT INTO collections (key, value, version, updated_at)
	VALUES (?, ?, 1, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		version = collections.version + 1,
		updated_at = CURRENT_TIMESTAMP`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, key string, value any) error {
	if s.db == nil {
		return ErrClosed
	}
	return upsert(ctx, s.db, key, value)
}

// SaveBatch implements BatchStore inside one transaction.
func (s *SQLiteStore) SaveBatch(ctx context.Context, entries []Entry) error {
	if s.db == nil {
		return ErrClosed
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if err := upsert(ctx, tx, e.Key, e.Value); err != nil {
			return fmt.Errorf("%s: %w", e.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func upsert(ctx context.Context, db execer, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if _, err := db.ExecContext(ctx, upsertCollection, key, string(raw)); err != nil {
		return fmt.Errorf("upsert collection: %w", err)
	}

	slog.DebugContext(ctx, "Collection saved to SQLite", "key", key, "bytes", len(raw))
	return nil
}

// Version returns how many times the collection under key has been written.
func (s *SQLiteStore) Version(ctx context.Context, key string) (int64, error) {
	if s.db == nil {
		return 0, ErrClosed
	}
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM collections WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select version: %w", err)
	}
	return v, nil
}
