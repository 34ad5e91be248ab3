package gateway

import (
	"context"
	"net/http"

	"github.com/syntrixbase/wordlog/internal/gateway/auth"
	"github.com/syntrixbase/wordlog/internal/gateway/config"
	"github.com/syntrixbase/wordlog/internal/gateway/realtime"
	"github.com/syntrixbase/wordlog/internal/gateway/rest"
	"github.com/syntrixbase/wordlog/internal/record"
)

// WordLog is everything the gateway needs from *record.Book.
type WordLog interface {
	rest.WordLog
	Listen(ctx context.Context, area string, fn func(record.Event)) error
	Summary(ctx context.Context, area string) (record.Summary, error)
}

// Server is a route registrar for the API layer.
// It registers the REST and realtime routes to a given ServeMux.
type Server struct {
	rest     *rest.Handler
	realtime *realtime.Server
}

// ServerOption is a function that configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	tokens *auth.TokenService
}

// WithTokens protects every area route with bearer tokens issued by svc.
func WithTokens(svc *auth.TokenService) ServerOption {
	return func(c *serverConfig) {
		c.tokens = svc
	}
}

// NewServer creates a new API Server (route registrar).
func NewServer(log WordLog, cfg config.GatewayConfig, opts ...ServerOption) (*Server, error) {
	sc := &serverConfig{}
	for _, opt := range opts {
		opt(sc)
	}

	restOpts := []rest.HandlerOption{
		rest.WithMaxBodySize(cfg.MaxBodySize),
		rest.WithRequestTimeout(cfg.RequestTimeout),
	}
	var rtOpts []realtime.Option
	if sc.tokens != nil {
		restOpts = append(restOpts, rest.WithAuth(sc.tokens.Middleware))
		rtOpts = append(rtOpts, realtime.WithAuth(sc.tokens.Middleware))
	}

	restHandler, err := rest.NewHandler(log, restOpts...)
	if err != nil {
		return nil, err
	}
	rt, err := realtime.NewServer(log, cfg.Realtime, rtOpts...)
	if err != nil {
		return nil, err
	}
	return &Server{
		rest:     restHandler,
		realtime: rt,
	}, nil
}

// RegisterRoutes registers all API routes to the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	s.rest.RegisterRoutes(mux)
	s.realtime.RegisterRoutes(mux)
}

// Close disconnects realtime clients.
func (s *Server) Close() {
	s.realtime.Close()
}
