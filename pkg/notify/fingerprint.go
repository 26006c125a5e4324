package notify

import (
	"fmt"
	"strings"

	goslack "github.com/slack-go/slack"
)

// runIDMarker is the invisible-in-rendering tag embedded in every posted
// message so FindMessageByRunID can recognize its own prior post.
func runIDMarker(runID string) string {
	return fmt.Sprintf("run:%s", runID)
}

func collectMessageText(msg goslack.Message) string {
	var parts []string
	if msg.Text != "" {
		parts = append(parts, msg.Text)
	}
	for _, att := range msg.Attachments {
		if att.Text != "" {
			parts = append(parts, att.Text)
		}
		if att.Fallback != "" {
			parts = append(parts, att.Fallback)
		}
	}
	return strings.Join(parts, " ")
}
