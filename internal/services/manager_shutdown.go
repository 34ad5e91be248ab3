package services

import (
	"context"
	"log/slog"
)

// Shutdown stops serving, then closes the store and the pubsub provider.
// It is safe to call after a partial Init.
func (m *Manager) Shutdown(ctx context.Context) {
	if m.gateway != nil {
		m.gateway.Close()
	}

	if m.server != nil {
		if err := m.server.Stop(ctx); err != nil {
			slog.Error("Error shutting down HTTP server", "error", err)
		}
	}
	if m.cancel != nil {
		m.cancel()
	}

	slog.Debug("Waiting for background tasks to finish")
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("Timeout waiting for background tasks")
	}

	if m.store != nil {
		if err := m.store.Close(); err != nil {
			slog.Error("Error closing storage", "error", err)
		}
	}
	if m.provider != nil {
		if err := m.provider.Close(); err != nil {
			slog.Error("Error closing pubsub provider", "error", err)
		}
	}
}
