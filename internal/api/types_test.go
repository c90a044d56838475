package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTimestampFormats(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-03-01T12:30:00Z"`, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
		{`"2024-03-01 12:30:00"`, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
		{`"2024-03-01T12:30:00"`, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
		{`1709296200`, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(tt.in), &ts), tt.in)
		assert.True(t, tt.want.Equal(ts.Time), "%s: got %v", tt.in, ts.Time)
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}

func TestTimestampMarshal(t *testing.T) {
	out, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	ts := Timestamp{time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)}
	y, err := yaml.Marshal(map[string]Timestamp{"at": ts})
	require.NoError(t, err)
	assert.Contains(t, string(y), "2024-03-01T12:30:00Z")
}

func TestLoadAvgNulls(t *testing.T) {
	var l LoadAvg
	require.NoError(t, json.Unmarshal([]byte(`[1.5, null, 0.25, 9]`), &l))
	assert.Equal(t, LoadAvg{1.5, 0, 0.25}, l)

	require.NoError(t, json.Unmarshal([]byte(`null`), &l))
	assert.Equal(t, LoadAvg{}, l)
}

func TestHostTypeNull(t *testing.T) {
	var h Host
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"host_type":null}`), &h))
	assert.Equal(t, HostReal, h.HostType)

	h = Host{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"host_type":""}`), &h))
	assert.Equal(t, HostReal, h.HostType)

	// Absent stays empty; ListHosts normalizes it.
	h = Host{}
	require.NoError(t, json.Unmarshal([]byte(`{"id":1}`), &h))
	assert.Equal(t, HostType(""), h.HostType)
}

func TestDecodeSnapshotSkipsBadKeys(t *testing.T) {
	snap, skipped, err := decodeSnapshot([]byte(`{"1":{"status":"offline"}," 2 ":{"status":"online"},"x":{}}`))
	require.NoError(t, err)
	assert.Len(t, snap, 2)
	assert.Equal(t, []string{"x"}, skipped)
	assert.True(t, snap[2].Online())
}
