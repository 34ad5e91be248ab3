package record

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/syntrixbase/wordlog/internal/core/pubsub"
	pubsubmem "github.com/syntrixbase/wordlog/internal/core/pubsub/memory"
	"github.com/syntrixbase/wordlog/internal/kv"
	kvconfig "github.com/syntrixbase/wordlog/internal/kv/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.March, 5, 10, 0, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// faultyStore wraps a store and fails selected operations.
type faultyStore struct {
	kv.Store
	getErr    error
	setErr    error
	removeErr error
	sets      []map[string][]byte
	removes   [][]string
}

func (s *faultyStore) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.Store.Get(ctx, keys...)
}

func (s *faultyStore) Set(ctx context.Context, entries map[string][]byte) error {
	s.sets = append(s.sets, entries)
	if s.setErr != nil {
		return s.setErr
	}
	return s.Store.Set(ctx, entries)
}

func (s *faultyStore) Remove(ctx context.Context, keys ...string) error {
	s.removes = append(s.removes, keys)
	if s.removeErr != nil {
		return s.removeErr
	}
	return s.Store.Remove(ctx, keys...)
}

// downPublisherProvider hands out publishers that always fail, as with an
// unreachable broker.
type downPublisherProvider struct {
	pubsub.Provider
}

func (p *downPublisherProvider) NewPublisher(pubsub.PublisherOptions) (pubsub.Publisher, error) {
	return downPublisher{}, nil
}

type downPublisher struct{}

func (downPublisher) Publish(context.Context, string, []byte) error {
	return errors.New("broker down")
}

func (downPublisher) Close() error { return nil }

func newTestStore(t *testing.T) kv.Store {
	t.Helper()
	engine := pubsubmem.New()
	t.Cleanup(func() { _ = engine.Close() })
	s, err := kv.Open(context.Background(), kvconfig.DefaultConfig(), engine)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, store kv.Store, key string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), map[string][]byte{key: raw}))
}

func loadCatalogT(t *testing.T, store kv.Store, area string) Catalog {
	t.Helper()
	values, err := store.Get(context.Background(), area+catalogSuffix)
	require.NoError(t, err)
	raw, ok := values[area+catalogSuffix]
	require.True(t, ok, "catalog of %q not stored", area)
	var cat Catalog
	require.NoError(t, json.Unmarshal(raw, &cat))
	return cat
}

func loadSetT(t *testing.T, store kv.Store, id string) (RecordSet, bool) {
	t.Helper()
	values, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	raw, ok := values[id]
	if !ok {
		return RecordSet{}, false
	}
	var set RecordSet
	require.NoError(t, json.Unmarshal(raw, &set))
	return set, true
}
