package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HostType distinguishes SSH-monitored servers from server-side simulations.
type HostType string

const (
	HostReal      HostType = "real"
	HostSimulated HostType = "simulated"
)

// UnmarshalJSON treats an empty or null host type as real.
func (h *HostType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		s = string(HostReal)
	}
	*h = HostType(s)
	return nil
}

// Status values reported in a metrics entry.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Host is a monitored machine as returned by GET /api/hosts.
type Host struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	IP        string    `json:"ip" yaml:"ip"`
	Port      int       `json:"port" yaml:"port"`
	Username  string    `json:"username" yaml:"username"`
	HostType  HostType  `json:"host_type" yaml:"host_type"`
	CreatedAt Timestamp `json:"created_at" yaml:"created_at"`
}

// IsSimulated reports whether the host is a server-side simulation.
func (h Host) IsSimulated() bool {
	return h.HostType == HostSimulated
}

// Metrics is one host's entry in the metrics snapshot.
type Metrics struct {
	Status      string   `json:"status" yaml:"status"`
	CPUUsage    float64  `json:"cpu_usage" yaml:"cpu_usage"`
	MemoryUsage float64  `json:"memory_usage" yaml:"memory_usage"`
	MemoryUsed  float64  `json:"memory_used" yaml:"memory_used"`
	MemoryTotal float64  `json:"memory_total" yaml:"memory_total"`
	DiskUsage   float64  `json:"disk_usage" yaml:"disk_usage"`
	LoadAvg     LoadAvg  `json:"load_avg" yaml:"load_avg"`
	DataSource  string   `json:"data_source" yaml:"data_source"`
	LastUpdate  float64  `json:"last_update" yaml:"last_update"`
	Error       string   `json:"error,omitempty" yaml:"error,omitempty"`
	HostType    HostType `json:"host_type,omitempty" yaml:"host_type,omitempty"`
}

// Online reports whether the entry's status is online.
func (m Metrics) Online() bool {
	return m.Status == StatusOnline
}

// UpdatedAt converts LastUpdate (epoch seconds) to a time. Zero when unset.
func (m Metrics) UpdatedAt() time.Time {
	if m.LastUpdate <= 0 {
		return time.Time{}
	}
	sec := int64(m.LastUpdate)
	nsec := int64((m.LastUpdate - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}

// LoadAvg holds the 1, 5 and 15 minute load averages. Shorter arrays leave
// the missing entries at zero; nulls inside the array read as zero.
type LoadAvg [3]float64

// UnmarshalJSON accepts arrays of up to three numbers.
func (l *LoadAvg) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = LoadAvg{}
		return nil
	}
	var vals []*float64
	if err := json.Unmarshal(data, &vals); err != nil {
		return fmt.Errorf("load_avg: %w", err)
	}
	var out LoadAvg
	for i := 0; i < len(vals) && i < len(out); i++ {
		if vals[i] != nil {
			out[i] = *vals[i]
		}
	}
	*l = out
	return nil
}

// MetricsSnapshot maps host id to its latest metrics. It is replaced as a
// whole on every poll.
type MetricsSnapshot map[int64]Metrics

// Lookup returns the entry for id. A missing entry is not an error.
func (s MetricsSnapshot) Lookup(id int64) (Metrics, bool) {
	m, ok := s[id]
	return m, ok
}

// decodeSnapshot turns the JSON object keyed by string host ids into a
// MetricsSnapshot. Keys that are not integers are returned in skipped.
func decodeSnapshot(data []byte) (MetricsSnapshot, []string, error) {
	var raw map[string]Metrics
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	snap := make(MetricsSnapshot, len(raw))
	var skipped []string
	for k, v := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
		if err != nil {
			skipped = append(skipped, k)
			continue
		}
		snap[id] = v
	}
	return snap, skipped, nil
}

// Timestamp accepts RFC 3339, SQLite's "YYYY-MM-DD HH:MM:SS" and numeric
// epoch seconds.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
}

// UnmarshalJSON parses any of the supported timestamp forms.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] != '"' {
		secs, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("created_at: %w", err)
		}
		sec := int64(secs)
		t.Time = time.Unix(sec, int64((secs-float64(sec))*float64(time.Second))).UTC()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("created_at: unrecognised time %q", s)
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// MarshalYAML writes RFC 3339, or an empty string for the zero time.
func (t Timestamp) MarshalYAML() (any, error) {
	if t.IsZero() {
		return "", nil
	}
	return t.Format(time.RFC3339), nil
}

// HostInput is the body of POST /api/hosts.
type HostInput struct {
	Name     string   `json:"name"`
	IP       string   `json:"ip"`
	Port     int      `json:"port"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	HostType HostType `json:"host_type"`
}

// CreateResult is the success body of POST /api/hosts.
type CreateResult struct {
	ID      int64  `json:"id"`
	Message string `json:"message,omitempty"`
}

// ConnectionResult is the body of POST /api/test-connection/{id}.
type ConnectionResult struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message,omitempty"`
	Error    string   `json:"error,omitempty"`
	HostType HostType `json:"host_type,omitempty"`
}

// Reason returns the server's explanation for a failed probe.
func (r ConnectionResult) Reason() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Error
}

// CollectResult is the body of POST /api/collect-now/{id}.
type CollectResult struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	DataSource string `json:"data_source,omitempty"`
}

// ActionResult is the generic {success, error} body used by the simulated
// host endpoints.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// errorBody is the {error} payload the server sends on failure.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
