package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syntrixbase/wordlog/internal/config"
	"github.com/syntrixbase/wordlog/internal/core/pubsub"
	pubsubmem "github.com/syntrixbase/wordlog/internal/core/pubsub/memory"
	natspubsub "github.com/syntrixbase/wordlog/internal/core/pubsub/nats"
	"github.com/syntrixbase/wordlog/internal/gateway"
	"github.com/syntrixbase/wordlog/internal/gateway/auth"
	"github.com/syntrixbase/wordlog/internal/kv"
	"github.com/syntrixbase/wordlog/internal/record"
	"github.com/syntrixbase/wordlog/internal/record/wordfilter"
	"github.com/syntrixbase/wordlog/internal/server"
)

var providerFactory = func(ctx context.Context, cfg config.PubSubConfig) (pubsub.Provider, error) {
	if cfg.Type != config.PubSubNATS {
		return pubsubmem.New(), nil
	}
	storage := pubsub.MemoryStorage
	if cfg.Storage == "file" {
		storage = pubsub.FileStorage
	}
	p := natspubsub.NewProvider(cfg.URL, natspubsub.WithStreamDefaults(storage, cfg.MaxAge))
	if err := pubsub.Connect(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

var storeOpener = kv.Open

func (m *Manager) Init(ctx context.Context) error {
	if err := m.initPubSub(ctx); err != nil {
		return err
	}
	if err := m.initStore(ctx); err != nil {
		return err
	}
	if err := m.initBook(); err != nil {
		return err
	}
	if err := m.initAuth(); err != nil {
		return err
	}
	if m.opts.RunAPI {
		return m.initAPIServer()
	}
	return nil
}

func (m *Manager) initPubSub(ctx context.Context) error {
	p, err := providerFactory(ctx, m.cfg.PubSub)
	if err != nil {
		return fmt.Errorf("failed to initialize pubsub: %w", err)
	}
	m.provider = p
	slog.Info("Initialized pubsub", "type", m.cfg.PubSub.Type)
	return nil
}

func (m *Manager) initStore(ctx context.Context) error {
	store, err := storeOpener(ctx, m.cfg.Storage, m.provider)
	if err != nil {
		return err
	}
	m.store = store
	return nil
}

func (m *Manager) initBook() error {
	opts := []record.Option{
		record.WithRolloverThreshold(m.cfg.Record.RolloverThreshold),
		record.WithMaxSets(m.cfg.Record.MaxSets),
	}
	if expr := m.cfg.Record.WordFilter; expr != "" {
		f, err := wordfilter.New(expr)
		if err != nil {
			return fmt.Errorf("invalid word filter: %w", err)
		}
		opts = append(opts, record.WithWordFilter(f))
		slog.Info("Word filter enabled", "expr", expr)
	}
	m.book = record.NewBook(m.store, opts...)
	return nil
}

func (m *Manager) initAuth() error {
	if !m.cfg.Auth.Enabled {
		return nil
	}
	tokens, err := auth.NewTokenService(m.cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize auth: %w", err)
	}
	m.tokens = tokens
	return nil
}

func (m *Manager) initAPIServer() error {
	var opts []gateway.ServerOption
	if m.tokens != nil {
		opts = append(opts, gateway.WithTokens(m.tokens))
	}
	gw, err := gateway.NewServer(m.book, m.cfg.Gateway, opts...)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}
	m.gateway = gw

	m.server = server.New(m.cfg.Server, slog.Default())
	gw.RegisterRoutes(m.server.HTTPMux())
	slog.Info("Initialized API gateway", "auth", m.tokens != nil)
	return nil
}
