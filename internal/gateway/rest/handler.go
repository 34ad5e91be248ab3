// Package rest exposes the word log over HTTP.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/syntrixbase/wordlog/internal/record"
	"github.com/syntrixbase/wordlog/internal/server"
)

// WordLog is the subset of *record.Book the handlers use.
type WordLog interface {
	Add(ctx context.Context, area, word string) error
	Clear(ctx context.Context, area string) error
	Words(ctx context.Context, area string) ([]string, error)
	Page(ctx context.Context, area string, index int) (record.Page, bool, error)
	WordCount(ctx context.Context, area string) (int, error)
}

// Default limits, overridden by the gateway configuration.
const (
	DefaultMaxBodySize    = 4 << 10
	DefaultRequestTimeout = 5 * time.Second
)

// APIError represents a structured error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnprocessable   = "UNPROCESSABLE"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

type Handler struct {
	log            WordLog
	protect        func(http.Handler) http.Handler
	maxBodySize    int64
	requestTimeout time.Duration
}

type HandlerOption func(*Handler)

// WithAuth wraps every area route with mw.
func WithAuth(mw func(http.Handler) http.Handler) HandlerOption {
	return func(h *Handler) { h.protect = mw }
}

func WithMaxBodySize(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodySize = n
		}
	}
}

func WithRequestTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.requestTimeout = d
		}
	}
}

func NewHandler(log WordLog, opts ...HandlerOption) (*Handler, error) {
	if log == nil {
		return nil, errors.New("word log cannot be nil")
	}
	h := &Handler{
		log:            log,
		maxBodySize:    DefaultMaxBodySize,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Request ID and panic recovery come from the server middleware.
	mux.HandleFunc("POST /api/v1/areas/{area}/words", withTimeout(maxBodySize(h.protected(h.handleAddWord), h.maxBodySize), h.requestTimeout))
	mux.HandleFunc("DELETE /api/v1/areas/{area}/words", withTimeout(h.protected(h.handleClear), h.requestTimeout))
	mux.HandleFunc("GET /api/v1/areas/{area}/words", withTimeout(h.protected(h.handleWords), h.requestTimeout))
	mux.HandleFunc("GET /api/v1/areas/{area}/pages", withTimeout(h.protected(h.handlePage), h.requestTimeout))
	mux.HandleFunc("GET /api/v1/areas/{area}/count", withTimeout(h.protected(h.handleCount), h.requestTimeout))

	mux.HandleFunc("GET /health", withTimeout(h.handleHealth, time.Second))
}

func (h *Handler) protected(handler http.HandlerFunc) http.HandlerFunc {
	if h.protect == nil {
		return handler
	}
	wrapped := h.protect(handler)
	return wrapped.ServeHTTP
}

// writeError writes a structured JSON error response
func writeError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIError{Code: code, Message: message}); err != nil {
		slog.Warn("Failed to encode error response", "error", err)
	}
}

// writeRecordError maps word log errors onto HTTP responses. A cancelled
// client gets 499 without a body.
func writeRecordError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, record.ErrInvalidArea):
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Area name is required")
	case errors.Is(err, record.ErrWordRejected):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeUnprocessable, "Word rejected by filter")
	case errors.Is(err, context.Canceled):
		w.WriteHeader(server.StatusClientClosedRequest)
	default:
		slog.Error(message, "error", err, "area", r.PathValue("area"), "request_id", server.GetRequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
	}
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Failed to encode JSON response", "error", err)
	}
}

// maxBodySize wraps a handler with request body size limiting
func maxBodySize(next http.HandlerFunc, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		}
		next(w, r)
	}
}

// withTimeout wraps a handler with a context timeout
func withTimeout(next http.HandlerFunc, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}
