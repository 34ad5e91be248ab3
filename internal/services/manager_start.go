package services

import (
	"context"
	"log/slog"
)

// Start runs the HTTP server in the background until bgCtx is done or
// Shutdown is called. A server failure is reported on Errors.
func (m *Manager) Start(bgCtx context.Context) {
	if m.server == nil {
		return
	}

	ctx, cancel := context.WithCancel(bgCtx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.server.Start(ctx); err != nil {
			slog.Error("HTTP server failed", "error", err)
			select {
			case m.errCh <- err:
			default:
			}
		}
	}()
}
