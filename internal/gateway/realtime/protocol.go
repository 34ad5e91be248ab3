package realtime

import (
	"github.com/syntrixbase/wordlog/internal/record"
)

// Message types pushed to websocket clients.
const (
	TypeSnapshot = "snapshot"
	TypeCatalog  = "catalog"
	TypeCleared  = "cleared"
	TypeError    = "error"
)

// Message is the only frame the server writes. Clients never need to send
// anything; inbound frames are read and discarded.
type Message struct {
	Type      string `json:"type"`
	Area      string `json:"area"`
	WordCount int    `json:"wordCount"`
	PageCount int    `json:"pageCount"`
	Timestamp int64  `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

func messageFromEvent(ev record.Event) Message {
	if ev.Cleared {
		return Message{
			Type:      TypeCleared,
			Area:      ev.Area,
			Timestamp: ev.Timestamp.UnixMilli(),
		}
	}
	return Message{
		Type:      TypeCatalog,
		Area:      ev.Area,
		WordCount: ev.Catalog.WordCount,
		PageCount: ev.Catalog.PageCount(),
		Timestamp: ev.Timestamp.UnixMilli(),
	}
}
