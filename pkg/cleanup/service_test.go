package cleanup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncopulse/newsletter/pkg/config"
)

func writeArtifactWithAge(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	modTime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestServiceRemovesArtifactsPastRetentionWindow(t *testing.T) {
	dir := t.TempDir()
	writeArtifactWithAge(t, dir, "run-old.md", 40*24*time.Hour)
	writeArtifactWithAge(t, dir, "run-recent.md", 1*time.Hour)

	cfg := &config.RetentionConfig{ArtifactRetentionDays: 30, CleanupInterval: time.Hour}
	svc := NewService(cfg, dir)
	svc.runAll(context.Background())

	_, err := os.Stat(filepath.Join(dir, "run-old.md"))
	assert.True(t, os.IsNotExist(err), "expired artifact should be removed")

	_, err = os.Stat(filepath.Join(dir, "run-recent.md"))
	assert.NoError(t, err, "recent artifact should be preserved")
}

func TestServicePreservesDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	cfg := &config.RetentionConfig{ArtifactRetentionDays: 0, CleanupInterval: time.Hour}
	svc := NewService(cfg, dir)
	svc.runAll(context.Background())

	_, err := os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err)
}

func TestServiceToleratesMissingOutputDir(t *testing.T) {
	cfg := &config.RetentionConfig{ArtifactRetentionDays: 30, CleanupInterval: time.Hour}
	svc := NewService(cfg, filepath.Join(t.TempDir(), "does-not-exist"))
	svc.runAll(context.Background())
}

func TestServiceStartStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.RetentionConfig{ArtifactRetentionDays: 30, CleanupInterval: time.Hour}
	svc := NewService(cfg, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.Start(ctx)
	svc.Start(ctx) // second call is a no-op, guarded by s.cancel != nil
	svc.Stop()
	svc.Stop() // second call is a no-op, guarded by s.cancel == nil
}
