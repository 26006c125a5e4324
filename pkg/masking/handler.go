package masking

import (
	"context"
	"log/slog"
)

// RedactingHandler wraps another slog.Handler and runs every string-valued
// message and attribute through a Service before handing the record off.
// cmd/newsletter installs this as the process-wide default handler so a
// provider error echoing an API key, or a retrieval failure echoing an
// Authorization header, never reaches stdout or a log aggregator unmasked.
type RedactingHandler struct {
	next    slog.Handler
	service *Service
}

// NewRedactingHandler wraps next with service's redaction rules.
func NewRedactingHandler(next slog.Handler, service *Service) *RedactingHandler {
	return &RedactingHandler{next: next, service: service}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	redacted := slog.NewRecord(record.Time, record.Level, h.service.Redact(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, redacted)
}

func (h *RedactingHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, h.service.Redact(a.Value.String()))
	}
	return a
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &RedactingHandler{next: h.next.WithAttrs(attrs), service: h.service}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name), service: h.service}
}
