// Package kv opens the key-value store backing the word log.
package kv

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syntrixbase/wordlog/internal/core/pubsub"
	"github.com/syntrixbase/wordlog/internal/kv/config"
	"github.com/syntrixbase/wordlog/internal/kv/internal/memory"
	"github.com/syntrixbase/wordlog/internal/kv/internal/mongo"
	"github.com/syntrixbase/wordlog/internal/kv/internal/notify"
	"github.com/syntrixbase/wordlog/internal/kv/internal/sqlite"
	"github.com/syntrixbase/wordlog/internal/kv/types"
)

type (
	Store  = types.Store
	Change = types.Change
)

var (
	ErrClosed   = types.ErrClosed
	ErrEmptyKey = types.ErrEmptyKey
)

// Dependency injection for testing
var (
	newMongoStore = func(ctx context.Context, cfg config.MongoConfig) (Store, error) {
		return mongo.Open(ctx, cfg.URI, cfg.DatabaseName, cfg.Collection)
	}
	newSQLiteStore = func(ctx context.Context, path string, n *notify.Notifier) (Store, error) {
		return sqlite.Open(ctx, path, n)
	}
)

// Open creates the store selected by cfg.Type. Memory and SQLite stores
// announce changes through provider; Mongo uses its own change stream and
// ignores it.
func Open(ctx context.Context, cfg config.Config, provider pubsub.Provider) (Store, error) {
	switch cfg.Type {
	case config.TypeMongo:
		s, err := newMongoStore(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mongo storage: %w", err)
		}
		slog.Info("Opened mongo storage", "database", cfg.Mongo.DatabaseName, "collection", cfg.Mongo.Collection)
		return s, nil

	case config.TypeSQLite, config.TypeMemory, "":
		n, err := notify.New(provider, cfg.Stream)
		if err != nil {
			return nil, err
		}
		if cfg.Type == config.TypeSQLite {
			s, err := newSQLiteStore(ctx, cfg.SQLite.Path, n)
			if err != nil {
				_ = n.Close()
				return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
			}
			slog.Info("Opened sqlite storage", "path", cfg.SQLite.Path)
			return s, nil
		}
		slog.Info("Opened in-memory storage")
		return memory.NewStore(n), nil
	}

	return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
}
