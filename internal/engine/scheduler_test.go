package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsEachInterval(t *testing.T) {
	mock := clock.NewMock()
	var runs atomic.Int32
	s := NewScheduler(mock, func() { runs.Add(1) })

	s.Start(5 * time.Second)
	defer s.Stop()
	assert.True(t, s.Running())
	assert.Equal(t, 5*time.Second, s.Interval())

	mock.Add(4 * time.Second)
	assert.Equal(t, int32(0), runs.Load())

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	mock.Add(5 * time.Second)
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerRestartKeepsOneTicker(t *testing.T) {
	mock := clock.NewMock()
	var runs atomic.Int32
	s := NewScheduler(mock, func() { runs.Add(1) })

	s.Start(5 * time.Second)
	s.Start(5 * time.Second)
	defer s.Stop()

	mock.Add(5 * time.Second)
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestSchedulerStop(t *testing.T) {
	mock := clock.NewMock()
	var runs atomic.Int32
	s := NewScheduler(mock, func() { runs.Add(1) })

	s.Stop()
	assert.False(t, s.Running())

	s.Start(time.Second)
	s.Stop()
	s.Stop()
	assert.False(t, s.Running())
	assert.Zero(t, s.Interval())

	mock.Add(3 * time.Second)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
