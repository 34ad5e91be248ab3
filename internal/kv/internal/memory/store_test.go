package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntrixbase/wordlog/internal/core/pubsub"
	pubsubmem "github.com/syntrixbase/wordlog/internal/core/pubsub/memory"
	"github.com/syntrixbase/wordlog/internal/kv/internal/notify"
	"github.com/syntrixbase/wordlog/internal/kv/types"
)

func newTestStore(t *testing.T) types.Store {
	t.Helper()
	engine := pubsubmem.New()
	t.Cleanup(func() { _ = engine.Close() })
	n, err := notify.New(engine, "")
	require.NoError(t, err)
	s := NewStore(n)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_GetSetRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.Get(ctx, "a", "b")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Set(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}))

	got, err = s.Get(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": []byte("1"), "b": []byte("2")}, got)

	require.NoError(t, s.Remove(ctx, "a", "missing"))
	got, err = s.Get(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"b": []byte("2")}, got)
}

func TestStore_ValuesAreCopied(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v := []byte("abc")
	require.NoError(t, s.Set(ctx, map[string][]byte{"k": v}))
	v[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got["k"]))

	got["k"][0] = 'y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again["k"]))
}

func TestStore_SetRejectsEmptyKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Set(ctx, map[string][]byte{"ok": []byte("1"), "": []byte("2")})
	assert.ErrorIs(t, err, types.ErrEmptyKey)

	got, err := s.Get(ctx, "ok")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Subscribe(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan types.Change, 4)
	require.NoError(t, s.Subscribe(ctx, "gymCat", func(c types.Change) { changes <- c }))

	require.NoError(t, s.Set(ctx, map[string][]byte{"gymCat": []byte("v1"), "set": []byte("x")}))
	require.NoError(t, s.Remove(ctx, "gymCat"))

	select {
	case c := <-changes:
		assert.Equal(t, "gymCat", c.Key)
		assert.Equal(t, []byte("v1"), c.Value)
	case <-time.After(time.Second):
		t.Fatal("set not delivered")
	}
	select {
	case c := <-changes:
		assert.True(t, c.Deleted)
	case <-time.After(time.Second):
		t.Fatal("remove not delivered")
	}
}

func TestStore_Closed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, types.ErrClosed)
	assert.ErrorIs(t, s.Set(ctx, map[string][]byte{"k": nil}), types.ErrClosed)
	assert.ErrorIs(t, s.Remove(ctx, "k"), types.ErrClosed)
	assert.ErrorIs(t, s.Subscribe(ctx, "k", func(types.Change) {}), types.ErrClosed)
}

func TestStore_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, map[string][]byte{"k": nil}), context.Canceled)
}

type downProvider struct {
	pubsub.Provider
}

func (downProvider) NewPublisher(pubsub.PublisherOptions) (pubsub.Publisher, error) {
	return downPublisher{}, nil
}

type downPublisher struct{}

func (downPublisher) Publish(context.Context, string, []byte) error { return errors.New("broker down") }
func (downPublisher) Close() error { return nil }

func TestStore_WriteSucceedsWhenNotificationFails(t *testing.T) {
	engine := pubsubmem.New()
	t.Cleanup(func() { _ = engine.Close() })
	n, err := notify.New(downProvider{Provider: engine}, "")
	require.NoError(t, err)
	s := NewStore(n)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}))
	got, err := s.Get(ctx, "a", "b")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, s.Remove(ctx, "a"))
	got, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got)
}
