// Package notify fans key-value changes out through a pubsub provider.
package notify

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/zeebo/blake3"

	"github.com/syntrixbase/wordlog/internal/core/pubsub"
	"github.com/syntrixbase/wordlog/internal/kv/types"
)

// DefaultStream is the stream used when none is configured.
const DefaultStream = "WORDLOG"

// Notifier publishes key changes and delivers them to per-key subscribers.
// Subjects carry a hash of the key so arbitrary key strings never clash with
// subject token syntax.
type Notifier struct {
	provider pubsub.Provider
	stream   string
	pub      pubsub.Publisher
}

// New creates a notifier publishing on stream.
func New(provider pubsub.Provider, stream string) (*Notifier, error) {
	if provider == nil {
		return nil, fmt.Errorf("pubsub provider cannot be nil")
	}
	if stream == "" {
		stream = DefaultStream
	}
	pub, err := provider.NewPublisher(pubsub.PublisherOptions{
		StreamName:    stream,
		SubjectPrefix: stream,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create change publisher: %w", err)
	}
	return &Notifier{provider: provider, stream: stream, pub: pub}, nil
}

// Subject returns the subject (without stream prefix) changes of key are
// published to.
func Subject(key string) string {
	hash := blake3.Sum256([]byte(key))
	return "kv." + hex.EncodeToString(hash[:16])
}

// Publish announces a change.
func (n *Notifier) Publish(ctx context.Context, change types.Change) error {
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now()
	}
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to encode change for %q: %w", change.Key, err)
	}
	return n.pub.Publish(ctx, Subject(change.Key), data)
}

// Announce publishes every change of a committed write. Failures are only
// logged.
func (n *Notifier) Announce(ctx context.Context, changes []types.Change) {
	for _, c := range changes {
		if err := n.Publish(ctx, c); err != nil {
			slog.Warn("Failed to announce change", "key", c.Key, "deleted", c.Deleted, "error", err)
		}
	}
}

// Subscribe calls fn for each change of key until ctx is done.
func (n *Notifier) Subscribe(ctx context.Context, key string, fn func(types.Change)) error {
	consumer, err := n.provider.NewConsumer(pubsub.ConsumerOptions{
		StreamName:    n.stream,
		FilterSubject: n.stream + "." + Subject(key),
	})
	if err != nil {
		return fmt.Errorf("failed to create change consumer: %w", err)
	}

	msgCh, err := consumer.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %q: %w", key, err)
	}

	go func() {
		for msg := range msgCh {
			var change types.Change
			if err := json.Unmarshal(msg.Data(), &change); err != nil {
				slog.Warn("Dropping undecodable change notification", "subject", msg.Subject(), "error", err)
				_ = msg.Ack()
				continue
			}
			_ = msg.Ack()
			if change.Key != key {
				continue
			}
			fn(change)
		}
	}()

	return nil
}

// Close releases the publisher. The provider is owned by the caller.
func (n *Notifier) Close() error {
	return n.pub.Close()
}
