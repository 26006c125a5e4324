package notify

import (
	"testing"

	goslack "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
)

func TestRunIDMarker(t *testing.T) {
	assert.Equal(t, "run:abc-123", runIDMarker("abc-123"))
}

func TestCollectMessageText(t *testing.T) {
	tests := []struct {
		name     string
		msg      goslack.Message
		expected string
	}{
		{
			name:     "text only",
			msg:      goslack.Message{Msg: goslack.Msg{Text: "run:abc-123 started"}},
			expected: "run:abc-123 started",
		},
		{
			name: "attachment text and fallback",
			msg: goslack.Message{
				Msg: goslack.Msg{
					Attachments: []goslack.Attachment{
						{Text: "attachment text", Fallback: "attachment fallback"},
					},
				},
			},
			expected: "attachment text attachment fallback",
		},
		{
			name:     "empty message",
			msg:      goslack.Message{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, collectMessageText(tt.msg))
		})
	}
}
