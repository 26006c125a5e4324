package notify

import (
	"context"
	"testing"

	"github.com/oncopulse/newsletter/pkg/state"
	"github.com/stretchr/testify/assert"
)

func TestService_NilReceiver(t *testing.T) {
	var s *Service

	t.Run("NotifyRunStarted is no-op", func(t *testing.T) {
		result := s.NotifyRunStarted(context.Background(), "run-1", "topic")
		assert.Empty(t, result)
	})

	t.Run("NotifyRunCompleted is no-op", func(_ *testing.T) {
		s.NotifyRunCompleted(context.Background(), &state.SharedState{RunID: "run-1"}, "")
	})
}

func TestNewService(t *testing.T) {
	t.Run("returns nil when token empty", func(t *testing.T) {
		svc := NewService(ServiceConfig{Token: "", Channel: "C123"})
		assert.Nil(t, svc)
	})

	t.Run("returns nil when channel empty", func(t *testing.T) {
		svc := NewService(ServiceConfig{Token: "xoxb-test", Channel: ""})
		assert.Nil(t, svc)
	})

	t.Run("returns service when configured", func(t *testing.T) {
		svc := NewService(ServiceConfig{Token: "xoxb-test", Channel: "C123"})
		assert.NotNil(t, svc)
	})
}
