// Package cleanup provides output-artifact retention and cleanup services.
package cleanup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oncopulse/newsletter/pkg/config"
)

// Service periodically removes generated run artifacts (Markdown/HTML/JSON
// newsletters, cover/chart PNGs, knowledge-graph exports) from OutputDir
// once they are older than ArtifactRetentionDays. Checkpoints are not this
// service's concern: the Redis sink expires them via its own TTL and the
// in-memory sink never outlives the process.
type Service struct {
	config    *config.RetentionConfig
	outputDir string

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a cleanup service rooted at outputDir.
func NewService(cfg *config.RetentionConfig, outputDir string) *Service {
	return &Service{config: cfg, outputDir: outputDir}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("cleanup service started",
		"artifact_retention_days", s.config.ArtifactRetentionDays,
		"interval", s.config.CleanupInterval,
		"output_dir", s.outputDir)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runAll(ctx)

	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runAll(ctx)
		}
	}
}

func (s *Service) runAll(_ context.Context) {
	count, err := s.removeExpiredArtifacts()
	if err != nil {
		slog.Error("retention: artifact cleanup failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("retention: removed expired artifacts", "count", count)
	}
}

// removeExpiredArtifacts deletes every top-level file in outputDir whose
// modification time is older than the retention window. It does not
// recurse: every run's output files live flat in outputDir, named by run
// ID, so a one-level scan is enough.
func (s *Service) removeExpiredArtifacts() (int, error) {
	entries, err := os.ReadDir(s.outputDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.ArtifactRetentionDays)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			slog.Warn("retention: could not stat artifact", "name", entry.Name(), "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.outputDir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("retention: could not remove expired artifact", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}
