package nats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/syntrixbase/wordlog/internal/core/pubsub"
)

// jetStreamConsumer implements pubsub.Consumer with an ordered, ephemeral
// JetStream consumer. Every subscriber sees every new message; there is no
// work-queue sharing between subscribers.
type jetStreamConsumer struct {
	js   JetStream
	opts pubsub.ConsumerOptions
}

// NewConsumer creates a new Consumer backed by NATS JetStream.
func NewConsumer(js JetStream, opts pubsub.ConsumerOptions) (pubsub.Consumer, error) {
	if js == nil {
		return nil, fmt.Errorf("jetstream cannot be nil")
	}
	if opts.StreamName == "" {
		return nil, fmt.Errorf("stream name is required")
	}
	if opts.ChannelBufSize <= 0 {
		opts.ChannelBufSize = pubsub.DefaultConsumerOptions().ChannelBufSize
	}
	return &jetStreamConsumer{js: js, opts: opts}, nil
}

// Subscribe starts consuming new messages and returns a channel.
func (c *jetStreamConsumer) Subscribe(ctx context.Context) (<-chan pubsub.Message, error) {
	filterSubject := c.opts.FilterSubject
	if filterSubject == "" {
		filterSubject = c.opts.StreamName + ".>"
	}

	consumer, err := c.js.OrderedConsumer(ctx, c.opts.StreamName, jetstream.OrderedConsumerConfig{
		FilterSubjects: []string{filterSubject},
		DeliverPolicy:  jetstream.DeliverNewPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	msgCh := make(chan pubsub.Message, c.opts.ChannelBufSize)

	// mu guards msgCh against sends after close.
	var mu sync.Mutex
	closed := false

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case msgCh <- WrapMessage(msg):
		case <-ctx.Done():
		}
	})
	if err != nil {
		close(msgCh)
		return nil, fmt.Errorf("failed to start consumer: %w", err)
	}

	slog.Debug("NATS consumer subscribed", "stream", c.opts.StreamName, "filter", filterSubject)

	go func() {
		<-ctx.Done()
		cc.Stop()
		mu.Lock()
		closed = true
		close(msgCh)
		mu.Unlock()
		slog.Debug("NATS consumer stopped", "stream", c.opts.StreamName, "filter", filterSubject)
	}()

	return msgCh, nil
}
