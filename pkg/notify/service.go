package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/oncopulse/newsletter/pkg/state"
)

// ServiceConfig holds the parameters needed to construct a Service.
type ServiceConfig struct {
	Token   string
	Channel string
}

// Service handles Slack notification delivery for run start/completion.
// Nil-safe: every method is a no-op when the service itself is nil, which
// is how cmd/newsletter represents "notifications disabled".
type Service struct {
	client *Client
	logger *slog.Logger
}

// NewService creates a notification service. Returns nil if Token or
// Channel is empty, matching EnableNotifications being effectively off.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Token == "" || cfg.Channel == "" {
		return nil
	}
	return &Service{
		client: NewClient(cfg.Token, cfg.Channel),
		logger: slog.Default().With("component", "notify-service"),
	}
}

// NewServiceWithClient creates a Service backed by a pre-built Client.
// Useful for testing with a mock API server.
func NewServiceWithClient(client *Client) *Service {
	return &Service{client: client, logger: slog.Default().With("component", "notify-service")}
}

// NotifyRunStarted posts a run-start notification and returns its timestamp
// so the eventual completion notice can thread under it. Fail-open: errors
// are logged, never returned.
func (s *Service) NotifyRunStarted(ctx context.Context, runID, mainTopic string) string {
	if s == nil {
		return ""
	}
	blocks := BuildStartedMessage(runID, mainTopic)
	threadTS, err := s.client.PostMessage(ctx, blocks, "", 5*time.Second)
	if err != nil {
		s.logger.Error("failed to send run-start notification", "run_id", runID, "error", err)
		return ""
	}
	return threadTS
}

// NotifyRunCompleted posts a terminal-status notification, threaded under
// threadTS if non-empty, otherwise under whatever post for runID can still
// be found in channel history. Fail-open: errors are logged, never
// returned.
func (s *Service) NotifyRunCompleted(ctx context.Context, st *state.SharedState, threadTS string) {
	if s == nil {
		return
	}

	if threadTS == "" {
		var err error
		threadTS, err = s.client.FindMessageByRunID(ctx, st.RunID)
		if err != nil {
			s.logger.Warn("failed to find prior notification for run", "run_id", st.RunID, "error", err)
		}
	}

	status := "completed"
	if st.CurrentStage == "failed" {
		status = "failed"
	}

	input := RunCompletedInput{
		RunID:            st.RunID,
		MainTopic:        st.MainTopic,
		Status:           status,
		ExecutiveSummary: st.ExecutiveSummary,
		TopicCount:       len(st.TopicsConfig),
		ErrorCount:       len(st.Errors),
		HTMLPath:         st.Outputs.HTMLPath,
	}
	if len(st.Errors) > 0 {
		input.ErrorSample = st.Errors[len(st.Errors)-1].Message
	}

	blocks := BuildCompletedMessage(input)
	if _, err := s.client.PostMessage(ctx, blocks, threadTS, 10*time.Second); err != nil {
		s.logger.Error("failed to send run-completion notification", "run_id", st.RunID, "status", status, "error", err)
	}
}
