// Package sqlite provides a durable kv.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/syntrixbase/wordlog/internal/kv/internal/notify"
	"github.com/syntrixbase/wordlog/internal/kv/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

type store struct {
	db       *sql.DB
	notifier *notify.Notifier
	closed   atomic.Bool
}

// Open opens (creating if needed) the database at path. ":memory:" selects a
// shared in-memory database.
func Open(ctx context.Context, path string, notifier *notify.Notifier) (types.Store, error) {
	connStr := path
	inMemory := path == ":memory:"
	if inMemory {
		connStr = "file::memory:?cache=shared"
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One writer keeps multi-key transactions from hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if !inMemory {
		for _, pragma := range []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA busy_timeout = 5000",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
			}
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &store{db: db, notifier: notifier}, nil
}

func (s *store) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if s.closed.Load() {
		return nil, types.ErrClosed
	}
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	query := "SELECT key, value FROM kv WHERE key IN (?" + strings.Repeat(",?", len(keys)-1) + ")"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return out, nil
}

func (s *store) Set(ctx context.Context, entries map[string][]byte) error {
	if s.closed.Load() {
		return types.ErrClosed
	}
	for k := range entries {
		if err := types.ValidateKeys(k); err != nil {
			return err
		}
	}

	now := time.Now()
	changes := make([]types.Change, 0, len(entries))

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for k, v := range entries {
			if v == nil {
				v = []byte{}
			}
			if _, err := stmt.ExecContext(ctx, k, v, now.UnixMilli()); err != nil {
				return fmt.Errorf("write %q: %w", k, err)
			}
			changes = append(changes, types.Change{Key: k, Value: v, Timestamp: now})
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Announce(ctx, changes)
	return nil
}

func (s *store) Remove(ctx context.Context, keys ...string) error {
	if s.closed.Load() {
		return types.ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}

	now := time.Now()
	var changes []types.Change

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, k := range keys {
			res, err := tx.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", k)
			if err != nil {
				return fmt.Errorf("delete %q: %w", k, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				changes = append(changes, types.Change{Key: k, Deleted: true, Timestamp: now})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Announce(ctx, changes)
	return nil
}

func (s *store) Subscribe(ctx context.Context, key string, fn func(types.Change)) error {
	if s.closed.Load() {
		return types.ErrClosed
	}
	return s.notifier.Subscribe(ctx, key, fn)
}

func (s *store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	nErr := s.notifier.Close()
	if err := s.db.Close(); err != nil {
		return err
	}
	return nErr
}

func (s *store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
