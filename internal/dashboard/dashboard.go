// Package dashboard turns a host list and a metrics snapshot into the view
// model the TUI and the status command render.
package dashboard

import (
	"math"
	"time"

	"github.com/tonhe/hostwatch/internal/api"
)

// DefaultOfflineMessage is shown for offline hosts whose metrics carry no error.
const DefaultOfflineMessage = "connection failed"

// Data source labels.
const (
	SourceReal      = "real"
	SourceSimulated = "simulated"
	SourceUnknown   = "unknown"
)

// Counts are the summary numbers above the host cards.
type Counts struct {
	Total     int `json:"total" yaml:"total"`
	Online    int `json:"online" yaml:"online"`
	Offline   int `json:"offline" yaml:"offline"`
	Simulated int `json:"simulated" yaml:"simulated"`
}

// Card is one host's rendered state.
type Card struct {
	Host        api.Host
	Online      bool
	Simulated   bool
	DataSource  string
	Badge       string // empty unless online
	CPU         Gauge
	Memory      Gauge
	Disk        Gauge
	MemoryUsed  int64 // MB, rounded
	MemoryTotal int64
	Load        api.LoadAvg
	LastUpdate  time.Time
	Error       string // set when offline
}

// View is the full dashboard state for one refresh.
type View struct {
	Counts Counts
	Cards  []Card
	// Err is set when the view was published because both feeds were
	// unavailable.
	Err error
}

// Empty reports whether there are no hosts to show.
func (v View) Empty() bool {
	return len(v.Cards) == 0
}

// Card returns the card for host id.
func (v View) Card(id int64) (Card, bool) {
	for _, c := range v.Cards {
		if c.Host.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// Option customizes Build.
type Option func(*options)

type options struct {
	offlineMessage string
}

// WithOfflineMessage replaces DefaultOfflineMessage, typically with a
// localized string.
func WithOfflineMessage(msg string) Option {
	return func(o *options) {
		if msg != "" {
			o.offlineMessage = msg
		}
	}
}

// CountHosts tallies hosts. Simulated hosts are always counted as simulated;
// other hosts are online only with an "online" metrics entry.
func CountHosts(hosts []api.Host, snap api.MetricsSnapshot) Counts {
	c := Counts{Total: len(hosts)}
	for _, h := range hosts {
		m, ok := snap.Lookup(h.ID)
		switch {
		case h.IsSimulated():
			c.Simulated++
		case ok && m.Online():
			c.Online++
		default:
			c.Offline++
		}
	}
	return c
}

// Build joins hosts with metrics by id. Cards follow host-list order and a
// missing metrics entry renders as offline.
func Build(hosts []api.Host, snap api.MetricsSnapshot, opts ...Option) View {
	o := options{offlineMessage: DefaultOfflineMessage}
	for _, opt := range opts {
		opt(&o)
	}

	v := View{
		Counts: CountHosts(hosts, snap),
		Cards:  make([]Card, 0, len(hosts)),
	}
	for _, h := range hosts {
		m, ok := snap.Lookup(h.ID)
		v.Cards = append(v.Cards, buildCard(h, m, ok, o))
	}
	return v
}

func buildCard(h api.Host, m api.Metrics, have bool, o options) Card {
	c := Card{
		Host:       h,
		Simulated:  h.IsSimulated(),
		Online:     have && m.Online(),
		DataSource: SourceUnknown,
	}
	if have {
		c.DataSource = m.DataSource
		if c.DataSource == "" {
			c.DataSource = SourceReal
		}
		c.LastUpdate = m.UpdatedAt()
	}

	if !c.Online {
		c.Error = o.offlineMessage
		if have && m.Error != "" {
			c.Error = m.Error
		}
		return c
	}

	c.Badge = SourceSimulated
	if c.DataSource == SourceReal || !c.Simulated {
		c.Badge = SourceReal
	}
	c.CPU = NewGauge(m.CPUUsage, CPULevel)
	c.Memory = NewGauge(m.MemoryUsage, MemoryLevel)
	c.Disk = NewGauge(m.DiskUsage, DiskLevel)
	c.MemoryUsed = int64(math.Round(m.MemoryUsed))
	c.MemoryTotal = int64(math.Round(m.MemoryTotal))
	c.Load = m.LoadAvg
	return c
}
