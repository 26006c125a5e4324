package masking

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactingHandlerMasksMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	handler := NewRedactingHandler(base, NewService())
	logger := slog.New(handler)

	logger.Error("llm fallback chain exhausted",
		"error", "provider anthropic: unauthorized sk-ant-REDACTED")

	out := buf.String()
	assert.NotContains(t, out, "sk-ant-REDACTED")
	assert.Contains(t, out, "[MASKED_ANTHROPIC_KEY]")
}

func TestRedactingHandlerPreservesNonStringAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	handler := NewRedactingHandler(base, NewService())
	logger := slog.New(handler)

	logger.Info("node completed", "attempt", 3)
	assert.Contains(t, buf.String(), "attempt=3")
}

func TestRedactingHandlerWithAttrsAndGroupDelegate(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, nil)
	handler := NewRedactingHandler(base, NewService())

	withAttrs := handler.WithAttrs([]slog.Attr{slog.String("run_id", "r-1")})
	withGroup := withAttrs.WithGroup("pipeline")
	require.NoError(t, withGroup.Handle(context.Background(), slog.Record{Message: "ok", Level: slog.LevelInfo}))
	assert.Contains(t, buf.String(), "run_id=r-1")
}
