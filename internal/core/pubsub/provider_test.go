package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type plainProvider struct{}

func (plainProvider) Close() error { return nil }
func (plainProvider) NewPublisher(PublisherOptions) (Publisher, error) { return nil, nil }
func (plainProvider) NewConsumer(ConsumerOptions) (Consumer, error)    { return nil, nil }

type connectingProvider struct {
	plainProvider
	err    error
	called bool
}

func (p *connectingProvider) Connect(context.Context) error {
	p.called = true
	return p.err
}

func TestDefaultConsumerOptions(t *testing.T) {
	assert.Equal(t, 100, DefaultConsumerOptions().ChannelBufSize)
}

func TestConnect(t *testing.T) {
	assert.NoError(t, Connect(context.Background(), plainProvider{}))

	p := &connectingProvider{}
	assert.NoError(t, Connect(context.Background(), p))
	assert.True(t, p.called)

	boom := errors.New("boom")
	assert.ErrorIs(t, Connect(context.Background(), &connectingProvider{err: boom}), boom)
}
