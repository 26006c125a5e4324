package notify

import (
	"fmt"

	goslack "github.com/slack-go/slack"
)

const maxBlockTextLength = 2900

// BuildStartedMessage creates Block Kit blocks for a run-start notification.
func BuildStartedMessage(runID, mainTopic string) []goslack.Block {
	text := fmt.Sprintf(":arrows_counterclockwise: *Newsletter run started* for _%s_\n`%s`", mainTopic, runIDMarker(runID))
	return []goslack.Block{
		goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, text, false, false),
			nil, nil,
		),
	}
}

// RunCompletedInput carries everything BuildCompletedMessage needs.
type RunCompletedInput struct {
	RunID            string
	MainTopic        string
	Status           string // "completed" or "failed"
	ExecutiveSummary string
	TopicCount       int
	ErrorCount       int
	ErrorSample      string
	HTMLPath         string
}

var statusEmoji = map[string]string{
	"completed": ":white_check_mark:",
	"failed":    ":x:",
}

var statusLabel = map[string]string{
	"completed": "Newsletter Ready",
	"failed":    "Newsletter Run Failed",
}

// BuildCompletedMessage creates Block Kit blocks for a terminal run
// notification: success shows the executive summary, failure shows the
// sampled error that triggered FinalizeOnFailure.
func BuildCompletedMessage(input RunCompletedInput) []goslack.Block {
	emoji := statusEmoji[input.Status]
	if emoji == "" {
		emoji = ":question:"
	}
	label := statusLabel[input.Status]
	if label == "" {
		label = "Newsletter Run " + input.Status
	}

	headerText := fmt.Sprintf("%s *%s* — %s (%d topics)", emoji, label, input.MainTopic, input.TopicCount)
	var blocks []goslack.Block
	blocks = append(blocks, goslack.NewSectionBlock(
		goslack.NewTextBlockObject(goslack.MarkdownType, headerText, false, false),
		nil, nil,
	))

	if input.Status == "completed" && input.ExecutiveSummary != "" {
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, truncateForSlack(input.ExecutiveSummary), false, false),
			nil, nil,
		))
	}
	if input.Status != "completed" && input.ErrorSample != "" {
		errText := fmt.Sprintf("*Error (%d recorded):*\n%s", input.ErrorCount, truncateForSlack(input.ErrorSample))
		blocks = append(blocks, goslack.NewSectionBlock(
			goslack.NewTextBlockObject(goslack.MarkdownType, errText, false, false),
			nil, nil,
		))
	}

	if input.HTMLPath != "" {
		footer := fmt.Sprintf("%s\n_artifact: %s_", runIDMarker(input.RunID), input.HTMLPath)
		blocks = append(blocks, goslack.NewContextBlock("", goslack.NewTextBlockObject(goslack.MarkdownType, footer, false, false)))
	}

	return blocks
}

func truncateForSlack(text string) string {
	if len(text) <= maxBlockTextLength {
		return text
	}
	return text[:maxBlockTextLength] + "\n\n_... (truncated)_"
}
