package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntrixbase/wordlog/internal/core/pubsub"
)

// =============================================================================
// Engine Tests
// =============================================================================

func TestEngine_New(t *testing.T) {
	engine := New()
	require.NotNil(t, engine)
	assert.False(t, engine.IsClosed())
	require.NoError(t, engine.Close())
}

func TestEngine_DoubleClose(t *testing.T) {
	engine := New()
	require.NoError(t, engine.Close())
	require.NoError(t, engine.Close())
	assert.True(t, engine.IsClosed())
}

func TestEngine_NewAfterClose(t *testing.T) {
	engine := New()
	require.NoError(t, engine.Close())

	_, err := engine.NewPublisher(pubsub.PublisherOptions{})
	assert.ErrorIs(t, err, ErrEngineClosed)

	_, err = engine.NewConsumer(pubsub.ConsumerOptions{})
	assert.ErrorIs(t, err, ErrEngineClosed)
}

// =============================================================================
// Publish/Subscribe Tests
// =============================================================================

func receive(t *testing.T, ch <-chan pubsub.Message) pubsub.Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestBroker_PublishSubscribe(t *testing.T) {
	engine := New()
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	consumer, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "test.>"})
	require.NoError(t, err)
	msgCh, err := consumer.Subscribe(ctx)
	require.NoError(t, err)

	pub, err := engine.NewPublisher(pubsub.PublisherOptions{})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(ctx, "test.foo", []byte("hello")))

	msg := receive(t, msgCh)
	assert.Equal(t, "test.foo", msg.Subject())
	assert.Equal(t, []byte("hello"), msg.Data())
	require.NoError(t, msg.Ack())

	md, err := msg.Metadata()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), md.NumDelivered)
	assert.Equal(t, "test.foo", md.Subject)
}

func TestBroker_FanOutToSamePattern(t *testing.T) {
	engine := New()
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var channels []<-chan pubsub.Message
	for i := 0; i < 3; i++ {
		consumer, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "area.words"})
		require.NoError(t, err)
		ch, err := consumer.Subscribe(ctx)
		require.NoError(t, err)
		channels = append(channels, ch)
	}

	pub, err := engine.NewPublisher(pubsub.PublisherOptions{})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(ctx, "area.words", []byte("x")))

	for _, ch := range channels {
		assert.Equal(t, []byte("x"), receive(t, ch).Data())
	}
}

func TestPublisher_SubjectPrefixAndCallback(t *testing.T) {
	engine := New()
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	consumer, err := engine.NewConsumer(pubsub.ConsumerOptions{StreamName: "WORDLOG"})
	require.NoError(t, err)
	msgCh, err := consumer.Subscribe(ctx)
	require.NoError(t, err)

	var published string
	pub, err := engine.NewPublisher(pubsub.PublisherOptions{
		SubjectPrefix: "WORDLOG",
		OnPublish: func(subject string, err error, _ time.Duration) {
			published = subject
		},
	})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(ctx, "kv.abc", []byte("1")))

	assert.Equal(t, "WORDLOG.kv.abc", receive(t, msgCh).Subject())
	assert.Equal(t, "WORDLOG.kv.abc", published)
}

func TestPublisher_Closed(t *testing.T) {
	engine := New()
	defer engine.Close()

	pub, err := engine.NewPublisher(pubsub.PublisherOptions{})
	require.NoError(t, err)
	require.NoError(t, pub.Close())

	assert.ErrorIs(t, pub.Publish(context.Background(), "a", nil), ErrEngineClosed)
}

func TestConsumer_UnsubscribeOnCancel(t *testing.T) {
	engine := New()
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	consumer, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "a"})
	require.NoError(t, err)
	msgCh, err := consumer.Subscribe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.broker.subscriberCount())

	cancel()

	select {
	case _, ok := <-msgCh:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Eventually(t, func() bool { return engine.broker.subscriberCount() == 0 }, time.Second, 10*time.Millisecond)
}

func TestEngine_CloseClosesSubscriptions(t *testing.T) {
	engine := New()

	consumer, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "a"})
	require.NoError(t, err)
	msgCh, err := consumer.Subscribe(context.Background())
	require.NoError(t, err)

	require.NoError(t, engine.Close())

	_, ok := <-msgCh
	assert.False(t, ok)

	pub := &memoryPublisher{broker: engine.broker}
	assert.ErrorIs(t, pub.Publish(context.Background(), "a", nil), ErrEngineClosed)
}

func TestBroker_PublishNoSubscribers(t *testing.T) {
	engine := New()
	defer engine.Close()

	pub, err := engine.NewPublisher(pubsub.PublisherOptions{})
	require.NoError(t, err)
	assert.NoError(t, pub.Publish(context.Background(), "nobody.listens", []byte("x")))
}

func TestBroker_SlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	engine := New()
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slow, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "test.>", ChannelBufSize: 1})
	require.NoError(t, err)
	slowCh, err := slow.Subscribe(ctx)
	require.NoError(t, err)

	fast, err := engine.NewConsumer(pubsub.ConsumerOptions{FilterSubject: "test.>", ChannelBufSize: 10})
	require.NoError(t, err)
	fastCh, err := fast.Subscribe(ctx)
	require.NoError(t, err)

	pub, err := engine.NewPublisher(pubsub.PublisherOptions{})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, d := range []string{"1", "2", "3"} {
			assert.NoError(t, pub.Publish(context.Background(), "test.a", []byte(d)))
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.Equal(t, "1", string(receive(t, slowCh).Data()))
	select {
	case msg := <-slowCh:
		t.Fatalf("expected overflow to be dropped, got %q", msg.Data())
	default:
	}

	for _, want := range []string{"1", "2", "3"} {
		assert.Equal(t, want, string(receive(t, fastCh).Data()))
	}
}

func TestBroker_PublishCancelledContext(t *testing.T) {
	engine := New()
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, engine.broker.publish(ctx, "a", nil), context.Canceled)
}
