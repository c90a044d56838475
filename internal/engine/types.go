package engine

import (
	"time"

	"github.com/tonhe/hostwatch/internal/dashboard"
)

// Sample is one point of a host's usage history.
type Sample struct {
	At     time.Time
	CPU    float64
	Memory float64
	Disk   float64
}

// Stats counts refresh outcomes.
type Stats struct {
	PollCount  int
	ErrorCount int
	LastPoll   time.Time
	LastError  error
}

// Snapshot is a point-in-time copy of the poller's state.
type Snapshot struct {
	View        dashboard.View
	Stats       Stats
	AutoRefresh bool
	Interval    time.Duration
}

// Event is emitted to subscribers after each applied refresh.
type Event struct {
	Seq      uint64
	Snapshot Snapshot
}
