// Package memory provides an in-memory pubsub implementation for standalone mode.
package memory

import "errors"

// ErrEngineClosed is returned when operating on a closed engine.
var ErrEngineClosed = errors.New("engine is closed")
