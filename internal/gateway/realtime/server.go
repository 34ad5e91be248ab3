// Package realtime pushes catalog changes of an area to websocket clients.
package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/syntrixbase/wordlog/internal/gateway/config"
	"github.com/syntrixbase/wordlog/internal/record"
)

const snapshotTimeout = 5 * time.Second

// Listener is the subset of *record.Book the feed needs.
type Listener interface {
	Listen(ctx context.Context, area string, fn func(record.Event)) error
	Summary(ctx context.Context, area string) (record.Summary, error)
}

type Server struct {
	log      Listener
	cfg      config.RealtimeConfig
	hub      *Hub
	upgrader websocket.Upgrader
	protect  func(http.Handler) http.Handler

	// Connections outlive the upgrade request, so they hang off this
	// context instead of r.Context().
	baseCtx context.Context
	cancel  context.CancelFunc
}

type Option func(*Server)

// WithAuth wraps the upgrade route with mw.
func WithAuth(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) { s.protect = mw }
}

func NewServer(log Listener, cfg config.RealtimeConfig, opts ...Option) (*Server, error) {
	if log == nil {
		return nil, errors.New("listener cannot be nil")
	}
	defaults := config.DefaultGatewayConfig().Realtime
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaults.SendBuffer
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		log:     log,
		cfg:     cfg,
		hub:     NewHub(),
		baseCtx: ctx,
		cancel:  cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	var h http.Handler = http.HandlerFunc(s.handleWS)
	if s.protect != nil {
		h = s.protect(h)
	}
	mux.Handle("GET /realtime/v1/areas/{area}", h)
}

// Hub exposes the connection registry.
func (s *Server) Hub() *Hub { return s.hub }

// Close disconnects every client and stops their listeners.
func (s *Server) Close() {
	s.cancel()
	s.hub.CloseAll()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients.
		return true
	}
	if slices.Contains(s.cfg.AllowedOrigins, origin) {
		return true
	}
	if s.cfg.AllowDevOrigin {
		if u, err := url.Parse(origin); err == nil && isLoopback(u.Hostname()) {
			return true
		}
	}
	slog.Warn("Rejected realtime origin", "origin", origin)
	return false
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	area := r.PathValue("area")
	if area == "" {
		http.Error(w, "area name is required", http.StatusBadRequest)
		return
	}
	if s.baseCtx.Err() != nil {
		http.Error(w, "realtime feed is shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already replied.
		slog.Debug("Websocket upgrade failed", "area", area, "error", err)
		return
	}

	client := newClient(s.baseCtx, s.hub, conn, area, s)
	s.hub.register(client)
	go client.writePump()

	// Subscribe before reading the snapshot so no change falls between them.
	if err := s.log.Listen(client.ctx, area, client.onEvent); err != nil {
		slog.Error("Failed to listen on area", "area", area, "error", err)
		client.enqueue(Message{Type: TypeError, Area: area, Timestamp: time.Now().UnixMilli(), Error: "subscription failed"})
		client.stop()
		s.hub.unregister(client)
		return
	}
	client.enqueue(s.snapshot(client.ctx, area))

	slog.Debug("Realtime client connected", "area", area, "clients", s.hub.Len())
	go client.readPump()
}

func (s *Server) snapshot(ctx context.Context, area string) Message {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	msg := Message{Type: TypeSnapshot, Area: area, Timestamp: time.Now().UnixMilli()}
	sum, err := s.log.Summary(ctx, area)
	if err != nil {
		slog.Warn("Failed to read realtime snapshot", "area", area, "error", err)
		return Message{Type: TypeError, Area: area, Timestamp: msg.Timestamp, Error: "snapshot unavailable"}
	}
	msg.WordCount = sum.WordCount
	msg.PageCount = sum.PageCount
	return msg
}
