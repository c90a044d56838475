package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonhe/hostwatch/internal/api"
)

func TestCPULevel(t *testing.T) {
	tests := []struct {
		v    float64
		want Level
	}{
		{0, Normal},
		{60, Normal},
		{60.1, Warning},
		{80, Warning},
		{80.01, Danger},
		{100, Danger},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CPULevel(tt.v), "cpu %v", tt.v)
	}
}

func TestMemoryAndDiskLevel(t *testing.T) {
	tests := []struct {
		v    float64
		want Level
	}{
		{50, Normal},
		{80, Normal},
		{80.5, Warning},
		{90, Warning},
		{90.5, Danger},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MemoryLevel(tt.v), "memory %v", tt.v)
		assert.Equal(t, tt.want, DiskLevel(tt.v), "disk %v", tt.v)
	}
}

func TestGaugeClampsWidth(t *testing.T) {
	g := NewGauge(130, CPULevel)
	assert.Equal(t, 130.0, g.Value)
	assert.Equal(t, 100.0, g.Width)
	assert.Equal(t, Danger, g.Level)

	assert.Equal(t, 0.0, NewGauge(-5, CPULevel).Width)
}

func TestBuildMixedHosts(t *testing.T) {
	hosts := []api.Host{
		{ID: 1, Name: "web", HostType: api.HostReal},
		{ID: 2, Name: "sim", HostType: api.HostSimulated},
	}
	snap := api.MetricsSnapshot{
		1: {Status: api.StatusOnline, CPUUsage: 95, DataSource: "real"},
	}

	v := Build(hosts, snap)
	assert.Equal(t, Counts{Total: 2, Online: 1, Offline: 0, Simulated: 1}, v.Counts)
	require.Len(t, v.Cards, 2)

	web := v.Cards[0]
	assert.True(t, web.Online)
	assert.Equal(t, Danger, web.CPU.Level)
	assert.Equal(t, SourceReal, web.Badge)

	sim := v.Cards[1]
	assert.True(t, sim.Simulated)
	assert.False(t, sim.Online)
	assert.Equal(t, SourceUnknown, sim.DataSource)
}

func TestBuildRealHostsWithoutMetricsAreOffline(t *testing.T) {
	hosts := []api.Host{
		{ID: 1, HostType: api.HostReal},
		{ID: 2, HostType: api.HostReal},
		{ID: 3, HostType: api.HostSimulated},
	}
	v := Build(hosts, api.MetricsSnapshot{})

	assert.Equal(t, 2, v.Counts.Offline)
	assert.Equal(t, 1, v.Counts.Simulated)
	assert.Equal(t, 0, v.Counts.Online)
	for _, c := range v.Cards[:2] {
		assert.False(t, c.Online)
		assert.Equal(t, DefaultOfflineMessage, c.Error)
		assert.Empty(t, c.Badge)
	}
}

func TestBuildOfflineUsesMetricsError(t *testing.T) {
	hosts := []api.Host{{ID: 4, HostType: api.HostReal}}
	snap := api.MetricsSnapshot{4: {Status: api.StatusOffline, Error: "ssh: handshake failed"}}

	v := Build(hosts, snap, WithOfflineMessage("连接失败"))
	c, ok := v.Card(4)
	require.True(t, ok)
	assert.Equal(t, "ssh: handshake failed", c.Error)

	v = Build(hosts, api.MetricsSnapshot{}, WithOfflineMessage("连接失败"))
	assert.Equal(t, "连接失败", v.Cards[0].Error)
}

func TestBuildSimulatedOnlineBadge(t *testing.T) {
	hosts := []api.Host{{ID: 7, HostType: api.HostSimulated}}
	snap := api.MetricsSnapshot{7: {
		Status:      api.StatusOnline,
		DataSource:  "simulated",
		MemoryUsed:  1023.6,
		MemoryTotal: 4096,
		LoadAvg:     api.LoadAvg{1, 2, 3},
	}}

	c := Build(hosts, snap).Cards[0]
	assert.True(t, c.Online)
	assert.Equal(t, SourceSimulated, c.Badge)
	assert.Equal(t, int64(1024), c.MemoryUsed)
	assert.Equal(t, api.LoadAvg{1, 2, 3}, c.Load)
	// Simulated hosts never count as online.
	assert.Equal(t, Counts{Total: 1, Simulated: 1}, Build(hosts, snap).Counts)
}

func TestBuildMissingDataSourceDefaultsToReal(t *testing.T) {
	hosts := []api.Host{{ID: 1, HostType: api.HostReal}}
	snap := api.MetricsSnapshot{1: {Status: api.StatusOnline}}
	assert.Equal(t, SourceReal, Build(hosts, snap).Cards[0].DataSource)
}

func TestBuildPreservesOrderAndEmpty(t *testing.T) {
	hosts := []api.Host{{ID: 3}, {ID: 1}, {ID: 2}}
	v := Build(hosts, nil)
	require.Len(t, v.Cards, 3)
	assert.Equal(t, int64(3), v.Cards[0].Host.ID)
	assert.Equal(t, int64(2), v.Cards[2].Host.ID)
	assert.False(t, v.Empty())

	assert.True(t, Build(nil, nil).Empty())
	_, ok := v.Card(99)
	assert.False(t, ok)
}
