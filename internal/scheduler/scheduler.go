// Package scheduler optionally re-invokes the newsletter pipeline on a
// cron schedule. It is additive ambient scaffolding around a single
// pipeline run, not a pipeline component itself: when no schedule is
// configured, cmd/newsletter skips this package entirely and runs once.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// RunFunc executes one full pipeline run. It is called with a
// background context each time the configured schedule fires; errors
// are logged, never propagated, so one failed run doesn't stop future
// ones.
type RunFunc func(ctx context.Context) error

// Service wraps a robfig/cron scheduler around a RunFunc.
type Service struct {
	cron   *cron.Cron
	run    RunFunc
	logger *slog.Logger

	mu      sync.Mutex
	entryID cron.EntryID
	started bool
}

// NewService builds a Service that invokes run on the given 5-field
// cron expression. The expression is validated immediately so a typo'd
// schedule fails fast at startup rather than silently never firing.
func NewService(expr string, run RunFunc) (*Service, error) {
	c := cron.New()
	s := &Service{
		cron:   c,
		run:    run,
		logger: slog.Default().With("component", "scheduler"),
	}

	id, err := c.AddFunc(expr, s.runOnce)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	s.entryID = id
	return s, nil
}

// Start begins the cron loop in the background. Safe to call once;
// calling it again while already started is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	next := s.cron.Entry(s.entryID).Next
	s.logger.Info("scheduler started", "next_run", next)
	s.cron.Start()
}

// Stop halts the cron loop and waits for any in-flight run to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.started = false
	s.logger.Info("scheduler stopped")
}

func (s *Service) runOnce() {
	s.logger.Info("scheduled run firing")
	if err := s.run(context.Background()); err != nil {
		s.logger.Error("scheduled run failed", "error", err)
		return
	}
	s.logger.Info("scheduled run completed")
}
