package notify

import (
	"strings"
	"testing"

	goslack "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessage(t *testing.T) {
	blocks := BuildStartedMessage("run-123", "quantum computing")

	require.Len(t, blocks, 1)
	section, ok := blocks[0].(*goslack.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, ":arrows_counterclockwise:")
	assert.Contains(t, section.Text.Text, "quantum computing")
	assert.Contains(t, section.Text.Text, "run:run-123")
}

func TestBuildCompletedMessage_Completed(t *testing.T) {
	input := RunCompletedInput{
		RunID:            "run-1",
		MainTopic:        "large language models",
		Status:           "completed",
		ExecutiveSummary: "Three new papers advance retrieval-augmented generation.",
		TopicCount:       4,
		HTMLPath:         "/output/run-1/newsletter.html",
	}
	blocks := BuildCompletedMessage(input)

	require.GreaterOrEqual(t, len(blocks), 3)
	header := blocks[0].(*goslack.SectionBlock)
	assert.Contains(t, header.Text.Text, ":white_check_mark:")
	assert.Contains(t, header.Text.Text, "Newsletter Ready")
	assert.Contains(t, header.Text.Text, "large language models")

	summary := blocks[1].(*goslack.SectionBlock)
	assert.Contains(t, summary.Text.Text, "retrieval-augmented generation")

	footer := blocks[2].(*goslack.ContextBlock)
	footerText := footer.ContextElements.Elements[0].(*goslack.TextBlockObject)
	assert.Contains(t, footerText.Text, "run:run-1")
	assert.Contains(t, footerText.Text, "/output/run-1/newsletter.html")
}

func TestBuildCompletedMessage_Failed(t *testing.T) {
	input := RunCompletedInput{
		RunID:       "run-2",
		MainTopic:   "genomics",
		Status:      "failed",
		ErrorCount:  3,
		ErrorSample: "every configured topic returned zero articles",
	}
	blocks := BuildCompletedMessage(input)

	require.GreaterOrEqual(t, len(blocks), 2)
	header := blocks[0].(*goslack.SectionBlock)
	assert.Contains(t, header.Text.Text, ":x:")
	assert.Contains(t, header.Text.Text, "Newsletter Run Failed")

	errBlock := blocks[1].(*goslack.SectionBlock)
	assert.Contains(t, errBlock.Text.Text, "3 recorded")
	assert.Contains(t, errBlock.Text.Text, "zero articles")
}

func TestBuildCompletedMessage_UnknownStatusFallsBackToLabel(t *testing.T) {
	blocks := BuildCompletedMessage(RunCompletedInput{RunID: "run-3", Status: "canceled"})
	header := blocks[0].(*goslack.SectionBlock)
	assert.Contains(t, header.Text.Text, ":question:")
	assert.Contains(t, header.Text.Text, "Newsletter Run canceled")
}

func TestTruncateForSlack(t *testing.T) {
	short := "a summary"
	assert.Equal(t, short, truncateForSlack(short))

	long := strings.Repeat("x", maxBlockTextLength+500)
	truncated := truncateForSlack(long)
	assert.Less(t, len(truncated), len(long))
	assert.Contains(t, truncated, "truncated")
}
