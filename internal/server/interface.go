package server

import (
	"context"
	"net/http"
)

// Service is the HTTP front door shared by the gateway handlers.
type Service interface {
	// Start listens and serves until ctx is cancelled or the listener fails.
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	RegisterHTTPHandler(pattern string, handler http.Handler)
	HTTPMux() *http.ServeMux

	// Addr reports the bound address once Start has opened the listener.
	Addr() string
}
