package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pubsubmem "github.com/syntrixbase/wordlog/internal/core/pubsub/memory"
	"github.com/syntrixbase/wordlog/internal/kv/internal/notify"
	"github.com/syntrixbase/wordlog/internal/kv/types"
)

func newNotifier(t *testing.T) *notify.Notifier {
	t.Helper()
	engine := pubsubmem.New()
	t.Cleanup(func() { _ = engine.Close() })
	n, err := notify.New(engine, "")
	require.NoError(t, err)
	return n
}

func openTestStore(t *testing.T, path string) types.Store {
	t.Helper()
	s, err := Open(context.Background(), path, newNotifier(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "data", "wordlog.db"))
	ctx := context.Background()

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Set(ctx, map[string][]byte{
		"gymCat": []byte(`{"data":["a"]}`),
		"a":      []byte(`{"id":"a"}`),
	}))
	require.NoError(t, s.Set(ctx, map[string][]byte{"a": []byte(`{"id":"a","wordCount":1}`)}))

	got, err = s.Get(ctx, "gymCat", "a", "missing")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.JSONEq(t, `{"id":"a","wordCount":1}`, string(got["a"]))

	require.NoError(t, s.Remove(ctx, "a", "missing"))
	require.NoError(t, s.Remove(ctx))
	got, err = s.Get(ctx, "a", "gymCat")
	require.NoError(t, err)
	assert.Equal(t, []string{"gymCat"}, keysOf(got))
}

func TestStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordlog.db")
	ctx := context.Background()

	s, err := Open(ctx, path, newNotifier(t))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, map[string][]byte{"k": []byte("v")}))
	require.NoError(t, s.Close())

	s2 := openTestStore(t, path)
	got, err := s2.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got["k"])
}

func TestStore_SetIsAtomic(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "wordlog.db"))
	ctx := context.Background()

	err := s.Set(ctx, map[string][]byte{"good": []byte("1"), "": []byte("2")})
	assert.ErrorIs(t, err, types.ErrEmptyKey)

	got, err := s.Get(ctx, "good")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Subscribe(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "wordlog.db"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan types.Change, 4)
	require.NoError(t, s.Subscribe(ctx, "gymCat", func(c types.Change) { changes <- c }))

	require.NoError(t, s.Set(ctx, map[string][]byte{"gymCat": []byte("1")}))
	require.NoError(t, s.Remove(ctx, "gymCat"))
	require.NoError(t, s.Remove(ctx, "gymCat"))

	select {
	case c := <-changes:
		assert.Equal(t, []byte("1"), c.Value)
	case <-time.After(time.Second):
		t.Fatal("set not delivered")
	}
	select {
	case c := <-changes:
		assert.True(t, c.Deleted)
	case <-time.After(time.Second):
		t.Fatal("remove not delivered")
	}
	select {
	case c := <-changes:
		t.Fatalf("removing a missing key must not notify: %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStore_InMemory(t *testing.T) {
	s := openTestStore(t, ":memory:")
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, map[string][]byte{"k": nil}))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Contains(t, got, "k")
}

func TestStore_Closed(t *testing.T) {
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "wordlog.db"), newNotifier(t))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	ctx := context.Background()
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, types.ErrClosed)
	assert.ErrorIs(t, s.Set(ctx, map[string][]byte{"k": nil}), types.ErrClosed)
	assert.ErrorIs(t, s.Remove(ctx, "k"), types.ErrClosed)
	assert.ErrorIs(t, s.Subscribe(ctx, "k", func(types.Change) {}), types.ErrClosed)
}

func keysOf(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
