// Package notify posts a run's completion (or early failure) summary to
// Slack: a thin API client, Block Kit message builders, and a
// notification service gating both on configuration.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goslack "github.com/slack-go/slack"
)

// Client is a thin wrapper around the slack-go SDK.
type Client struct {
	api       *goslack.Client
	channelID string
	logger    *slog.Logger
}

// NewClient creates a new Slack API client.
func NewClient(token, channelID string) *Client {
	return &Client{
		api:       goslack.New(token),
		channelID: channelID,
		logger:    slog.Default().With("component", "notify-client"),
	}
}

// NewClientWithAPIURL creates a Slack API client that targets a custom API
// URL. Useful for testing with a mock server.
func NewClientWithAPIURL(token, channelID, apiURL string) *Client {
	return &Client{
		api:       goslack.New(token, goslack.OptionAPIURL(apiURL)),
		channelID: channelID,
		logger:    slog.Default().With("component", "notify-client"),
	}
}

// PostMessage sends a message to the configured channel and returns its
// timestamp (usable as threadTS in a later call). If threadTS is non-empty,
// the message is posted as a threaded reply instead of a new top-level one.
func (c *Client) PostMessage(ctx context.Context, blocks []goslack.Block, threadTS string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := []goslack.MsgOption{
		goslack.MsgOptionBlocks(blocks...),
	}
	if threadTS != "" {
		opts = append(opts, goslack.MsgOptionTS(threadTS))
	}

	_, ts, err := c.api.PostMessageContext(ctx, c.channelID, opts...)
	if err != nil {
		return "", fmt.Errorf("chat.postMessage failed: %w", err)
	}
	return ts, nil
}

// FindMessageByRunID searches recent channel history for a message tagged
// with runID, so a resumed/retried run threads its completion notice under
// the same top-level message instead of posting a duplicate. Pages through
// up to 1000 messages from the last 24 hours.
func (c *Client) FindMessageByRunID(ctx context.Context, runID string) (string, error) {
	oldest := fmt.Sprintf("%d", time.Now().Add(-24*time.Hour).Unix())
	marker := runIDMarker(runID)

	params := &goslack.GetConversationHistoryParameters{
		ChannelID: c.channelID,
		Oldest:    oldest,
		Limit:     200,
	}

	const maxPages = 5
	for page := 0; page < maxPages; page++ {
		history, err := c.api.GetConversationHistoryContext(ctx, params)
		if err != nil {
			return "", fmt.Errorf("conversations.history failed: %w", err)
		}

		for _, msg := range history.Messages {
			if strings.Contains(collectMessageText(msg), marker) {
				return msg.Timestamp, nil
			}
		}

		if !history.HasMore || history.ResponseMetaData.NextCursor == "" {
			break
		}
		params.Cursor = history.ResponseMetaData.NextCursor
	}

	return "", nil
}
