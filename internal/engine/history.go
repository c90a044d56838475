package engine

import (
	"sync"
	"time"

	"github.com/tonhe/hostwatch/internal/dashboard"
)

// DefaultHistorySize is the number of samples kept per host.
const DefaultHistorySize = 120

// Metric selects one series out of a Sample.
type Metric int

const (
	MetricCPU Metric = iota
	MetricMemory
	MetricDisk
)

// Of returns the metric's value in s.
func (m Metric) Of(s Sample) float64 {
	switch m {
	case MetricMemory:
		return s.Memory
	case MetricDisk:
		return s.Disk
	default:
		return s.CPU
	}
}

// History keeps a ring buffer of samples for every known host.
type History struct {
	mu    sync.RWMutex
	size  int
	hosts map[int64]*RingBuffer[Sample]
}

// NewHistory creates a History keeping size samples per host.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{size: size, hosts: make(map[int64]*RingBuffer[Sample])}
}

// Record appends a sample for each online card and forgets hosts that are no
// longer in the view.
func (h *History) Record(v dashboard.View, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	seen := make(map[int64]struct{}, len(v.Cards))
	for _, c := range v.Cards {
		seen[c.Host.ID] = struct{}{}
		if !c.Online {
			continue
		}
		rb, ok := h.hosts[c.Host.ID]
		if !ok {
			rb = NewRingBuffer[Sample](h.size)
			h.hosts[c.Host.ID] = rb
		}
		rb.Add(Sample{At: at, CPU: c.CPU.Value, Memory: c.Memory.Value, Disk: c.Disk.Value})
	}
	for id := range h.hosts {
		if _, ok := seen[id]; !ok {
			delete(h.hosts, id)
		}
	}
}

// Samples returns the samples for id, oldest first.
func (h *History) Samples(id int64) []Sample {
	h.mu.RLock()
	rb, ok := h.hosts[id]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return rb.All()
}

// Series returns one metric of the samples for id.
func (h *History) Series(id int64, m Metric) []float64 {
	samples := h.Samples(id)
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = m.Of(s)
	}
	return out
}

// Hosts returns the number of hosts with history.
func (h *History) Hosts() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.hosts)
}
