package engine

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler runs a task on a repeating ticker. At most one ticker exists at
// a time.
type Scheduler struct {
	clock clock.Clock
	task  func()

	mu       sync.Mutex
	ticker   *clock.Ticker
	stopCh   chan struct{}
	interval time.Duration
}

// NewScheduler creates a stopped Scheduler. A nil clock uses the wall clock.
func NewScheduler(clk clock.Clock, task func()) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{clock: clk, task: task}
}

// Start stops any running ticker and starts a new one firing every interval.
// The first run happens one interval after Start.
func (s *Scheduler) Start(interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	ticker := s.clock.Ticker(interval)
	stopCh := make(chan struct{})
	s.ticker = ticker
	s.stopCh = stopCh
	s.interval = interval
	go s.run(ticker, stopCh)
}

func (s *Scheduler) run(ticker *clock.Ticker, stopCh chan struct{}) {
	for {
		select {
		case <-ticker.C:
			select {
			case <-stopCh:
				return
			default:
			}
			s.task()
		case <-stopCh:
			return
		}
	}
}

// Stop cancels the ticker. It is a no-op when stopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stopCh)
	s.ticker = nil
	s.stopCh = nil
}

// Running reports whether a ticker is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker != nil
}

// Interval returns the interval of the active ticker, or zero.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker == nil {
		return 0
	}
	return s.interval
}
