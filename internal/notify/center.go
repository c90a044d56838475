package notify

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Entry is a message stamped with its expiry.
type Entry struct {
	Message
	ID        uint64
	ExpiresAt time.Time
}

// Center keeps recent messages and drops them once their TTL has passed.
// It is safe for concurrent use; the TUI reads it on every tick.
type Center struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries []Entry
	nextID  uint64
	limit   int
}

// NewCenter creates a Center that keeps at most limit live messages.
// A nil clock uses the wall clock.
func NewCenter(clk clock.Clock, limit int) *Center {
	if clk == nil {
		clk = clock.New()
	}
	if limit <= 0 {
		limit = 5
	}
	return &Center{clock: clk, limit: limit}
}

// Notify records msg. The oldest message is evicted when the limit is reached.
func (c *Center) Notify(msg Message) {
	ttl := msg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.entries = append(c.entries, Entry{
		Message:   msg,
		ID:        c.nextID,
		ExpiresAt: c.clock.Now().Add(ttl),
	})
	if len(c.entries) > c.limit {
		c.entries = c.entries[len(c.entries)-c.limit:]
	}
}

// Active prunes expired messages and returns the rest, oldest first.
func (c *Center) Active() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	live := c.entries[:0]
	for _, e := range c.entries {
		if now.Before(e.ExpiresAt) {
			live = append(live, e)
		}
	}
	c.entries = live
	out := make([]Entry, len(live))
	copy(out, live)
	return out
}

// Latest returns the newest live message.
func (c *Center) Latest() (Entry, bool) {
	active := c.Active()
	if len(active) == 0 {
		return Entry{}, false
	}
	return active[len(active)-1], true
}
