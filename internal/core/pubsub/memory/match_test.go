package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchSubject(t *testing.T) {
	tests := []struct {
		pattern string
		subject string
		want    bool
	}{
		{"wordlog.kv.abc", "wordlog.kv.abc", true},
		{"wordlog.kv.abc", "wordlog.kv.abd", false},
		{"wordlog.kv.*", "wordlog.kv.abc", true},
		{"wordlog.*", "wordlog.kv.abc", false},
		{"wordlog.>", "wordlog.kv.abc", true},
		{"wordlog.>", "wordlog", false},
		{">", "anything", true},
		{"", "wordlog", false},
		{"wordlog", "", false},
		{"wordlog.kv", "wordlog.kv.abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, matchSubject(tt.pattern, tt.subject))
		})
	}
}
