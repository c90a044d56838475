package notify

import (
	"bytes"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenterExpiresAfterTTL(t *testing.T) {
	mock := clock.NewMock()
	c := NewCenter(mock, 5)

	Error(c, "Failed to load hosts")
	require.Len(t, c.Active(), 1)

	mock.Add(2 * time.Second)
	assert.Len(t, c.Active(), 1)

	mock.Add(time.Second)
	assert.Empty(t, c.Active(), "message should be dismissed after ~3s")
}

func TestCenterCustomTTL(t *testing.T) {
	mock := clock.NewMock()
	c := NewCenter(mock, 5)

	c.Notify(Message{Level: LevelInfo, Text: "Refreshing...", TTL: time.Second})
	Success(c, "Host added")

	mock.Add(1500 * time.Millisecond)
	active := c.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Host added", active[0].Text)
}

func TestCenterLimit(t *testing.T) {
	c := NewCenter(clock.NewMock(), 2)
	Info(c, "a")
	Info(c, "b")
	Info(c, "c")

	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "b", active[0].Text)

	latest, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, "c", latest.Text)
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	Success(w, "Host deleted")
	Error(w, "Delete failed: not found")

	out := buf.String()
	assert.Contains(t, out, "Host deleted")
	assert.Contains(t, out, "✗")
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_, ok := r.Last()
	assert.False(t, ok)

	Success(&r, "ok")
	Error(&r, "bad")
	assert.True(t, r.HasLevel(LevelError))
	assert.False(t, r.HasLevel(LevelWarning))
	assert.Len(t, r.Messages(), 2)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "error", LevelError.String())
	assert.Equal(t, "info", Level(42).String())
}

func TestWithDefaultTTL(t *testing.T) {
	var r Recorder
	n := WithDefaultTTL(&r, 5*time.Second)
	Info(n, "a")
	n.Notify(Message{Text: "b", TTL: time.Second})

	msgs := r.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, 5*time.Second, msgs[0].TTL)
	assert.Equal(t, time.Second, msgs[1].TTL)

	assert.Same(t, &r, WithDefaultTTL(&r, 0))
}
