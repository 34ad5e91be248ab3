package memory

import (
	"time"

	"github.com/syntrixbase/wordlog/internal/core/pubsub"
)

// memoryMessage implements pubsub.Message for in-memory delivery.
// In-memory delivery is at-most-once, so Ack is a no-op.
type memoryMessage struct {
	data      []byte
	subject   string
	timestamp time.Time
}

func (m *memoryMessage) Data() []byte {
	return m.data
}

func (m *memoryMessage) Subject() string {
	return m.subject
}

func (m *memoryMessage) Ack() error {
	return nil
}

func (m *memoryMessage) Metadata() (pubsub.MessageMetadata, error) {
	return pubsub.MessageMetadata{
		NumDelivered: 1,
		Timestamp:    m.timestamp,
		Subject:      m.subject,
	}, nil
}
