package memory

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syntrixbase/wordlog/internal/core/pubsub"
)

// broker manages in-memory message routing. Not exported.
type broker struct {
	mu            sync.RWMutex
	subscriptions map[uint64]*subscription
	nextID        uint64
	closed        atomic.Bool
}

// subscription represents a single consumer's subscription. Several
// subscriptions may share a pattern; each receives its own copy.
type subscription struct {
	pattern    string
	msgCh      chan pubsub.Message
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func newBroker() *broker {
	return &broker{
		subscriptions: make(map[uint64]*subscription),
	}
}

// publish sends a message to all matching subscriptions. A subscription
// whose buffer is full misses the message; publishers never wait on a slow
// subscriber.
func (b *broker) publish(ctx context.Context, subject string, data []byte) error {
	if b.closed.Load() {
		return ErrEngineClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	now := time.Now()
	for id, sub := range b.subscriptions {
		if !matchSubject(sub.pattern, subject) {
			continue
		}
		msg := &memoryMessage{
			data:      data,
			subject:   subject,
			timestamp: now,
		}
		select {
		case sub.msgCh <- msg:
		case <-sub.ctx.Done():
		default:
			slog.Warn("Dropping message for slow subscriber", "subject", subject, "subscription", id, "pattern", sub.pattern)
		}
	}
	return nil
}

// subscribe creates a subscription for the given pattern.
// Returns the message channel and an unsubscribe function.
func (b *broker) subscribe(ctx context.Context, pattern string, bufSize int) (<-chan pubsub.Message, func(), error) {
	if b.closed.Load() {
		return nil, nil, ErrEngineClosed
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	msgCh := make(chan pubsub.Message, bufSize)

	b.nextID++
	id := b.nextID
	b.subscriptions[id] = &subscription{
		pattern:    pattern,
		msgCh:      msgCh,
		ctx:        subCtx,
		cancelFunc: cancel,
	}

	unsubscribe := func() {
		cancel()
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscriptions[id]; ok {
			delete(b.subscriptions, id)
			close(msgCh)
		}
	}

	return msgCh, unsubscribe, nil
}

// close shuts down the broker and all subscriptions.
func (b *broker) close() error {
	if b.closed.Swap(true) {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subscriptions {
		sub.cancelFunc()
		close(sub.msgCh)
		delete(b.subscriptions, id)
	}
	return nil
}

func (b *broker) isClosed() bool {
	return b.closed.Load()
}

func (b *broker) subscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}
