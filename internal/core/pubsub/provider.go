package pubsub

import (
	"context"
	"io"
)

// Provider provides factory methods for creating publishers and consumers.
// This interface abstracts the underlying message broker (NATS, in-memory)
// allowing different implementations to be swapped transparently.
type Provider interface {
	io.Closer

	// NewPublisher creates a new Publisher with the given options.
	NewPublisher(opts PublisherOptions) (Publisher, error)

	// NewConsumer creates a new Consumer with the given options.
	NewConsumer(opts ConsumerOptions) (Consumer, error)
}

// Connectable is an optional interface for providers that need to establish
// a connection before they can be used. Memory-based providers
// don't implement this interface.
type Connectable interface {
	Connect(ctx context.Context) error
}

// Connect connects p if it implements Connectable.
func Connect(ctx context.Context, p Provider) error {
	if c, ok := p.(Connectable); ok {
		return c.Connect(ctx)
	}
	return nil
}
