// Package types defines the key-value store contract shared by every backend.
package types

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrClosed is returned by operations on a store that has been closed.
	ErrClosed = errors.New("kv store closed")
	// ErrEmptyKey is returned when an operation is given an empty key.
	ErrEmptyKey = errors.New("kv key must not be empty")
)

// Store is a key-value store keyed by opaque string ids.
type Store interface {
	// Get returns the values stored under keys. Missing keys are absent from
	// the result; they are never an error.
	Get(ctx context.Context, keys ...string) (map[string][]byte, error)

	// Set writes every entry. Either all entries are persisted or none is.
	// A committed write is never reported as failed because its change
	// notification could not be delivered.
	Set(ctx context.Context, entries map[string][]byte) error

	// Remove deletes keys. Missing keys are ignored.
	Remove(ctx context.Context, keys ...string) error

	// Subscribe calls fn for every change of key until ctx is done.
	// It returns once the subscription is established.
	Subscribe(ctx context.Context, key string, fn func(Change)) error

	// Close releases the backend.
	Close() error
}

// Change describes a write or a removal of a single key.
type Change struct {
	Key       string    `json:"key"`
	Value     []byte    `json:"value,omitempty"`
	Deleted   bool      `json:"deleted,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidateKeys returns ErrEmptyKey if any key is empty.
func ValidateKeys(keys ...string) error {
	for _, k := range keys {
		if k == "" {
			return ErrEmptyKey
		}
	}
	return nil
}
