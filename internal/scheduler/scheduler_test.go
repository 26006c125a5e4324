package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceRejectsInvalidExpression(t *testing.T) {
	_, err := NewService("not a cron expression", func(context.Context) error { return nil })
	require.Error(t, err)
}

func TestNewServiceAcceptsValidExpression(t *testing.T) {
	svc, err := NewService("*/5 * * * *", func(context.Context) error { return nil })
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestServiceStartStopLifecycle(t *testing.T) {
	var calls int32
	svc, err := NewService("* * * * *", func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	require.NoError(t, err)
	// A 5-field expression fires at most once a minute, so this only
	// exercises Start/Stop lifecycle safety, not actual firing.
	svc.Start()
	svc.Stop()
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(0))
}

func TestServiceStartIsIdempotent(t *testing.T) {
	svc, err := NewService("0 0 * * *", func(context.Context) error { return nil })
	require.NoError(t, err)
	svc.Start()
	svc.Start()
	svc.Stop()
}

func TestServiceStopBeforeStartIsNoop(t *testing.T) {
	svc, err := NewService("0 0 * * *", func(context.Context) error { return nil })
	require.NoError(t, err)
	svc.Stop()
}

func TestRunOnceLogsErrorWithoutPanicking(t *testing.T) {
	svc, err := NewService("0 0 * * *", func(context.Context) error {
		return errors.New("provider unreachable")
	})
	require.NoError(t, err)
	svc.runOnce()
	_ = time.Millisecond
}
