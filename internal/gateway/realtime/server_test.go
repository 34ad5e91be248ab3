package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pubsubmem "github.com/syntrixbase/wordlog/internal/core/pubsub/memory"
	"github.com/syntrixbase/wordlog/internal/gateway/config"
	"github.com/syntrixbase/wordlog/internal/kv"
	kvconfig "github.com/syntrixbase/wordlog/internal/kv/config"
	"github.com/syntrixbase/wordlog/internal/record"
)

type MockListener struct {
	mock.Mock
}

func (m *MockListener) Listen(ctx context.Context, area string, fn func(record.Event)) error {
	return m.Called(ctx, area, fn).Error(0)
}

func (m *MockListener) Summary(ctx context.Context, area string) (record.Summary, error) {
	args := m.Called(ctx, area)
	return args.Get(0).(record.Summary), args.Error(1)
}

func newTestBook(t *testing.T) *record.Book {
	t.Helper()
	engine := pubsubmem.New()
	t.Cleanup(func() { _ = engine.Close() })
	store, err := kv.Open(context.Background(), kvconfig.DefaultConfig(), engine)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return record.NewBook(store)
}

func testConfig() config.RealtimeConfig {
	cfg := config.DefaultGatewayConfig().Realtime
	cfg.AllowDevOrigin = false
	return cfg
}

func startFeed(t *testing.T, log Listener, cfg config.RealtimeConfig, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	s, err := NewServer(log, cfg, opts...)
	require.NoError(t, err)
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, ts
}

func wsURL(ts *httptest.Server, area string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/realtime/v1/areas/" + area
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestNewServer_NilListener(t *testing.T) {
	_, err := NewServer(nil, testConfig())
	assert.Error(t, err)
}

func TestNewServer_FillsDefaults(t *testing.T) {
	s, err := NewServer(&MockListener{}, config.RealtimeConfig{})
	require.NoError(t, err)
	defaults := config.DefaultGatewayConfig().Realtime
	assert.Equal(t, defaults.PingInterval, s.cfg.PingInterval)
	assert.Equal(t, defaults.WriteTimeout, s.cfg.WriteTimeout)
	assert.Equal(t, defaults.SendBuffer, s.cfg.SendBuffer)
}

func TestFeed_SnapshotAndChanges(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)
	require.NoError(t, book.Add(ctx, "gym", "squat"))

	s, ts := startFeed(t, book, testConfig())
	conn := dial(t, wsURL(ts, "gym"))

	snap := readMessage(t, conn)
	assert.Equal(t, TypeSnapshot, snap.Type)
	assert.Equal(t, "gym", snap.Area)
	assert.Equal(t, 1, snap.WordCount)
	assert.Equal(t, 1, snap.PageCount)
	assert.Equal(t, 1, s.Hub().Len())

	require.NoError(t, book.Add(ctx, "gym", "bench"))
	msg := readMessage(t, conn)
	assert.Equal(t, TypeCatalog, msg.Type)
	assert.Equal(t, 2, msg.WordCount)
	assert.Equal(t, 1, msg.PageCount)
	assert.NotZero(t, msg.Timestamp)

	require.NoError(t, book.Clear(ctx, "gym"))
	msg = readMessage(t, conn)
	assert.Equal(t, TypeCleared, msg.Type)
	assert.Equal(t, 0, msg.WordCount)
}

func TestFeed_SnapshotPageCountFromCatalog(t *testing.T) {
	m := &MockListener{}
	m.On("Listen", mock.Anything, "gym", mock.Anything).Return(nil)
	m.On("Summary", mock.Anything, "gym").Return(record.Summary{WordCount: 700, PageCount: 3}, nil)

	_, ts := startFeed(t, m, testConfig())
	conn := dial(t, wsURL(ts, "gym"))

	snap := readMessage(t, conn)
	assert.Equal(t, TypeSnapshot, snap.Type)
	assert.Equal(t, 700, snap.WordCount)
	assert.Equal(t, 3, snap.PageCount)
}

func TestFeed_AreaNameIsVerbatim(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)
	require.NoError(t, book.Add(ctx, " gym", "squat"))

	_, ts := startFeed(t, book, testConfig())

	padded := readMessage(t, dial(t, wsURL(ts, "%20gym")))
	assert.Equal(t, " gym", padded.Area)
	assert.Equal(t, 1, padded.WordCount)

	plain := readMessage(t, dial(t, wsURL(ts, "gym")))
	assert.Equal(t, "gym", plain.Area)
	assert.Equal(t, 0, plain.WordCount)
}

func TestFeed_IgnoresOtherAreas(t *testing.T) {
	ctx := context.Background()
	book := newTestBook(t)
	_, ts := startFeed(t, book, testConfig())
	conn := dial(t, wsURL(ts, "gym"))

	snap := readMessage(t, conn)
	assert.Equal(t, 0, snap.WordCount)
	assert.Equal(t, 0, snap.PageCount)

	require.NoError(t, book.Add(ctx, "work", "deploy"))
	require.NoError(t, book.Add(ctx, "gym", "row"))

	msg := readMessage(t, conn)
	assert.Equal(t, "gym", msg.Area)
	assert.Equal(t, 1, msg.WordCount)
}

func TestFeed_CloseDisconnectsClients(t *testing.T) {
	s, ts := startFeed(t, newTestBook(t), testConfig())
	conn := dial(t, wsURL(ts, "gym"))
	readMessage(t, conn)

	s.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Eventually(t, func() bool { return s.Hub().Len() == 0 }, 2*time.Second, 10*time.Millisecond)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "gym"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestFeed_ClientDisconnectUnregisters(t *testing.T) {
	s, ts := startFeed(t, newTestBook(t), testConfig())
	conn := dial(t, wsURL(ts, "gym"))
	readMessage(t, conn)
	require.Equal(t, 1, s.Hub().Len())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	assert.Eventually(t, func() bool { return s.Hub().Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFeed_ListenError(t *testing.T) {
	m := &MockListener{}
	m.On("Listen", mock.Anything, "gym", mock.Anything).Return(errors.New("broker down"))

	s, ts := startFeed(t, m, testConfig())
	conn := dial(t, wsURL(ts, "gym"))

	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, "subscription failed", msg.Error)

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	assert.Eventually(t, func() bool { return s.Hub().Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFeed_SnapshotError(t *testing.T) {
	m := &MockListener{}
	m.On("Listen", mock.Anything, "gym", mock.Anything).Return(nil)
	m.On("Summary", mock.Anything, "gym").Return(record.Summary{}, errors.New("store down"))

	_, ts := startFeed(t, m, testConfig())
	conn := dial(t, wsURL(ts, "gym"))

	msg := readMessage(t, conn)
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, "snapshot unavailable", msg.Error)
	m.AssertExpectations(t)
}

func TestFeed_AuthRejects(t *testing.T) {
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
	_, ts := startFeed(t, &MockListener{}, testConfig(), WithAuth(deny))

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "gym"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFeed_RejectsForeignOrigin(t *testing.T) {
	_, ts := startFeed(t, &MockListener{}, testConfig())

	header := http.Header{"Origin": {"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "gym"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestFeed_Pings(t *testing.T) {
	cfg := testConfig()
	cfg.PingInterval = 50 * time.Millisecond
	cfg.WriteTimeout = 20 * time.Millisecond
	_, ts := startFeed(t, newTestBook(t), cfg)
	conn := dial(t, wsURL(ts, "gym"))

	var pings atomic.Int32
	conn.SetPingHandler(func(data string) error {
		pings.Add(1)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	assert.Eventually(t, func() bool { return pings.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		dev    bool
		want   bool
	}{
		{"no origin", "", false, true},
		{"allowed", "http://localhost:3000", false, true},
		{"unknown", "https://example.com", false, false},
		{"dev localhost", "http://localhost:9999", true, true},
		{"dev loopback ip", "http://127.0.0.1:4000", true, true},
		{"dev remote", "https://example.com", true, false},
		{"dev disabled", "http://localhost:9999", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.AllowDevOrigin = tt.dev
			s, err := NewServer(&MockListener{}, cfg)
			require.NoError(t, err)

			req := httptest.NewRequest("GET", "/realtime/v1/areas/gym", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, s.checkOrigin(req))
		})
	}
}

func TestMessageFromEvent(t *testing.T) {
	ts := time.UnixMilli(1700000000000)

	msg := messageFromEvent(record.Event{
		Area:      "gym",
		Catalog:   record.Catalog{Data: []string{"a", "b"}, WordCount: 7},
		Timestamp: ts,
	})
	assert.Equal(t, Message{Type: TypeCatalog, Area: "gym", WordCount: 7, PageCount: 2, Timestamp: ts.UnixMilli()}, msg)

	msg = messageFromEvent(record.Event{Area: "gym", Cleared: true, Timestamp: ts})
	assert.Equal(t, Message{Type: TypeCleared, Area: "gym", Timestamp: ts.UnixMilli()}, msg)
}

func TestClient_SlowConsumerIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{area: "gym", send: make(chan Message, 1), ctx: ctx, cancel: cancel}

	c.enqueue(Message{Type: TypeCatalog})
	c.enqueue(Message{Type: TypeCatalog})

	assert.True(t, c.closed)
	assert.Error(t, c.ctx.Err())

	// Further events after the drop are ignored.
	c.enqueue(Message{Type: TypeCatalog})
	c.stop()
}
