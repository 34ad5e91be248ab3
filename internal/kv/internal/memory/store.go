// Package memory provides an in-process kv.Store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/syntrixbase/wordlog/internal/kv/internal/notify"
	"github.com/syntrixbase/wordlog/internal/kv/types"
)

type store struct {
	mu       sync.RWMutex
	data     map[string][]byte
	closed   bool
	notifier *notify.Notifier
}

// NewStore returns an empty in-memory store. Changes are announced through
// notifier.
func NewStore(notifier *notify.Notifier) types.Store {
	return &store{
		data:     make(map[string][]byte),
		notifier: notifier,
	}
}

func (s *store) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, types.ErrClosed
	}

	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = append([]byte(nil), v...)
		}
	}
	return out, nil
}

func (s *store) Set(ctx context.Context, entries map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for k := range entries {
		if err := types.ValidateKeys(k); err != nil {
			return err
		}
	}

	now := time.Now()
	changes := make([]types.Change, 0, len(entries))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return types.ErrClosed
	}
	for k, v := range entries {
		cp := append([]byte(nil), v...)
		s.data[k] = cp
		changes = append(changes, types.Change{Key: k, Value: cp, Timestamp: now})
	}
	s.mu.Unlock()

	s.notifier.Announce(ctx, changes)
	return nil
}

func (s *store) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()
	var changes []types.Change

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return types.ErrClosed
	}
	for _, k := range keys {
		if _, ok := s.data[k]; !ok {
			continue
		}
		delete(s.data, k)
		changes = append(changes, types.Change{Key: k, Deleted: true, Timestamp: now})
	}
	s.mu.Unlock()

	s.notifier.Announce(ctx, changes)
	return nil
}

func (s *store) Subscribe(ctx context.Context, key string, fn func(types.Change)) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return types.ErrClosed
	}
	return s.notifier.Subscribe(ctx, key, fn)
}

func (s *store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.data = nil
	return s.notifier.Close()
}
