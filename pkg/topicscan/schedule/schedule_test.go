package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("not a cron", "", nil)
	assert.Error(t, err)

	_, err = New("0 7 * * *", "Mars/Olympus", nil)
	assert.Error(t, err)
}

func TestNextAfterUsesTimezone(t *testing.T) {
	s, err := New("0 7 * * *", "Europe/Prague", nil)
	require.NoError(t, err)

	from := time.Date(2026, 3, 10, 5, 0, 0, 0, time.UTC) // 06:00 in Prague
	next := s.NextAfter(from)
	assert.Equal(t, time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC), next.UTC())
	assert.True(t, s.Next().IsZero())
}

func TestRunExecutesJobUntilCancelled(t *testing.T) {
	s, err := New("@every 1s", "UTC", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context) error {
			if runs.Add(1) == 2 {
				cancel()
			}
			return errors.New("logged, not fatal")
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(2))
}
