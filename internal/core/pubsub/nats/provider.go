// Package nats implements pubsub.Provider on top of NATS JetStream.
package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/syntrixbase/wordlog/internal/core/pubsub"
)

// natsConnection abstracts the nats.Conn for testing purposes
type natsConnection interface {
	Close()
}

// natsConnectFunc is a function type for connecting to NATS (injectable for testing)
type natsConnectFunc func(url string) (natsConnection, error)

// jetStreamFactory creates JetStream from a connection (injectable for testing)
type jetStreamFactory func(nc natsConnection) (JetStream, error)

var defaultNatsConnect natsConnectFunc = func(url string) (natsConnection, error) {
	return nats.Connect(url, nats.Name("wordlog"))
}

var defaultJetStreamFactory jetStreamFactory = func(nc natsConnection) (JetStream, error) {
	conn, ok := nc.(*nats.Conn)
	if !ok {
		return nil, fmt.Errorf("unexpected connection type %T", nc)
	}
	return NewJetStream(conn)
}

// Provider implements pubsub.Provider using NATS JetStream.
// It manages the NATS connection lifecycle and provides factory methods
// for creating publishers and consumers.
type Provider struct {
	url              string
	nc               natsConnection
	js               JetStream
	natsConnect      natsConnectFunc
	jetStreamFactory jetStreamFactory

	storage pubsub.StorageType
	maxAge  time.Duration
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithStreamDefaults sets the storage and retention used for streams whose
// publisher options leave them unset.
func WithStreamDefaults(storage pubsub.StorageType, maxAge time.Duration) ProviderOption {
	return func(p *Provider) {
		p.storage = storage
		p.maxAge = maxAge
	}
}

// Compile-time checks
var (
	_ pubsub.Provider    = (*Provider)(nil)
	_ pubsub.Connectable = (*Provider)(nil)
)

// NewProvider creates a new NATS-based pubsub provider.
// Connect must be called before use.
func NewProvider(url string, opts ...ProviderOption) *Provider {
	p := &Provider{
		url:              url,
		natsConnect:      defaultNatsConnect,
		jetStreamFactory: defaultJetStreamFactory,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect establishes the NATS connection and initializes JetStream.
func (p *Provider) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	nc, err := p.natsConnect(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", p.url, err)
	}

	js, err := p.jetStreamFactory(nc)
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream: %w", err)
	}

	p.nc = nc
	p.js = js
	slog.Info("Connected to NATS", "url", p.url)
	return nil
}

// NewPublisher creates a new Publisher backed by NATS JetStream.
func (p *Provider) NewPublisher(opts pubsub.PublisherOptions) (pubsub.Publisher, error) {
	if p.js == nil {
		return nil, fmt.Errorf("NATS not connected, call Connect first")
	}
	if opts.Storage == pubsub.MemoryStorage {
		opts.Storage = p.storage
	}
	if opts.MaxAge == 0 {
		opts.MaxAge = p.maxAge
	}
	return NewPublisher(p.js, opts)
}

// NewConsumer creates a new Consumer backed by NATS JetStream.
func (p *Provider) NewConsumer(opts pubsub.ConsumerOptions) (pubsub.Consumer, error) {
	if p.js == nil {
		return nil, fmt.Errorf("NATS not connected, call Connect first")
	}
	return NewConsumer(p.js, opts)
}

// Close closes the NATS connection.
func (p *Provider) Close() error {
	if p.nc != nil {
		slog.Info("Closing NATS connection...")
		p.nc.Close()
		p.nc = nil
		p.js = nil
	}
	return nil
}
