// Package services wires configuration into the running word log: pubsub,
// storage, the book and, when serving, the HTTP gateway.
package services

import (
	"context"
	"sync"

	"github.com/syntrixbase/wordlog/internal/config"
	"github.com/syntrixbase/wordlog/internal/core/pubsub"
	"github.com/syntrixbase/wordlog/internal/gateway"
	"github.com/syntrixbase/wordlog/internal/gateway/auth"
	"github.com/syntrixbase/wordlog/internal/kv"
	"github.com/syntrixbase/wordlog/internal/record"
	"github.com/syntrixbase/wordlog/internal/server"
)

type Options struct {
	// RunAPI starts the HTTP server with the REST and realtime routes.
	// CLI commands leave it off and use Book directly.
	RunAPI bool
}

type Manager struct {
	cfg  *config.Config
	opts Options

	provider pubsub.Provider
	store    kv.Store
	book     *record.Book
	tokens   *auth.TokenService
	gateway  *gateway.Server
	server   server.Service

	cancel context.CancelFunc
	errCh  chan error
	wg     sync.WaitGroup
}

func NewManager(cfg *config.Config, opts Options) *Manager {
	return &Manager{
		cfg:   cfg,
		opts:  opts,
		errCh: make(chan error, 1),
	}
}

// Book returns the word log. Nil before Init.
func (m *Manager) Book() *record.Book {
	return m.book
}

// Tokens returns the token service, nil when auth is disabled.
func (m *Manager) Tokens() *auth.TokenService {
	return m.tokens
}

// Server returns the HTTP server, nil unless RunAPI is set.
func (m *Manager) Server() server.Service {
	return m.server
}

// Errors reports a server that stopped on its own.
func (m *Manager) Errors() <-chan error {
	return m.errCh
}
