package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tonhe/hostwatch/internal/api"
	"github.com/tonhe/hostwatch/internal/dashboard"
	hwerrors "github.com/tonhe/hostwatch/internal/errors"
	"github.com/tonhe/hostwatch/internal/i18n"
	"github.com/tonhe/hostwatch/internal/notify"
)

type fakeSource struct {
	mu         sync.Mutex
	hosts      []api.Host
	metrics    api.MetricsSnapshot
	hostsErr   error
	metricsErr error
	connResult api.ConnectionResult
	connErr    error
	collectErr error
	listCalls  atomic.Int32
	// gate, when set, blocks ListHosts until it receives.
	gate chan struct{}
}

func (f *fakeSource) ListHosts(ctx context.Context) ([]api.Host, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	gate := f.gate
	hosts, err := f.hosts, f.hostsErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return hosts, err
}

func (f *fakeSource) Metrics(ctx context.Context) (api.MetricsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metrics, f.metricsErr
}

func (f *fakeSource) TestConnection(ctx context.Context, id int64) (api.ConnectionResult, error) {
	return f.connResult, f.connErr
}

func (f *fakeSource) CollectNow(ctx context.Context, id int64) (api.CollectResult, error) {
	return api.CollectResult{Success: f.collectErr == nil}, f.collectErr
}

func (f *fakeSource) set(hosts []api.Host, metrics api.MetricsSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hosts, f.metrics = hosts, metrics
}

func newTestPoller(src Source, rec *notify.Recorder, clk clock.Clock) *Poller {
	return NewPoller(src, Options{
		Clock:    clk,
		Logger:   zap.NewNop(),
		Notifier: rec,
		Catalog:  i18n.New("en"),
	})
}

func mixedFixture() ([]api.Host, api.MetricsSnapshot) {
	hosts := []api.Host{
		{ID: 1, Name: "web", HostType: api.HostReal},
		{ID: 2, Name: "sim", HostType: api.HostSimulated},
	}
	metrics := api.MetricsSnapshot{1: {Status: api.StatusOnline, CPUUsage: 95}}
	return hosts, metrics
}

func TestRefreshBuildsView(t *testing.T) {
	hosts, metrics := mixedFixture()
	src := &fakeSource{hosts: hosts, metrics: metrics}
	rec := &notify.Recorder{}
	p := newTestPoller(src, rec, clock.NewMock())
	defer p.Close()

	events := p.Subscribe()
	require.NoError(t, p.Refresh(context.Background()))

	snap := p.Snapshot()
	assert.Equal(t, dashboard.Counts{Total: 2, Online: 1, Offline: 0, Simulated: 1}, snap.View.Counts)
	card, ok := snap.View.Card(1)
	require.True(t, ok)
	assert.Equal(t, dashboard.Danger, card.CPU.Level)
	assert.Equal(t, 1, snap.Stats.PollCount)
	assert.Empty(t, rec.Messages())

	select {
	case ev := <-events:
		assert.Equal(t, 2, ev.Snapshot.View.Counts.Total)
	default:
		t.Fatal("expected an event after refresh")
	}
	assert.Len(t, p.History(1), 1)
	assert.Empty(t, p.History(2), "offline hosts record no samples")
}

func TestRefreshFailureKeepsPreviousView(t *testing.T) {
	hosts, metrics := mixedFixture()
	src := &fakeSource{hosts: hosts, metrics: metrics}
	rec := &notify.Recorder{}
	p := newTestPoller(src, rec, clock.NewMock())
	defer p.Close()
	require.NoError(t, p.Refresh(context.Background()))

	src.mu.Lock()
	src.metricsErr = hwerrors.New(hwerrors.ErrNetwork, "HTTP error! status: 502", "")
	src.mu.Unlock()

	err := p.Refresh(context.Background())
	require.Error(t, err)

	snap := p.Snapshot()
	assert.Equal(t, 2, snap.View.Counts.Total, "previous view survives a failed refresh")
	assert.NoError(t, snap.View.Err)
	assert.Equal(t, 1, snap.Stats.ErrorCount)

	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.LevelError, last.Level)
	assert.Equal(t, "Failed to load metrics: HTTP error! status: 502", last.Text)
}

func TestRefreshFailureWithNoDataPublishesEmptyView(t *testing.T) {
	src := &fakeSource{hostsErr: errors.New("dial tcp: connection refused")}
	rec := &notify.Recorder{}
	p := newTestPoller(src, rec, clock.NewMock())
	defer p.Close()

	events := p.Subscribe()
	require.Error(t, p.Refresh(context.Background()))

	ev := <-events
	assert.True(t, ev.Snapshot.View.Empty())
	assert.Error(t, ev.Snapshot.View.Err)

	last, _ := rec.Last()
	assert.Contains(t, last.Text, "Failed to load hosts")
}

func TestRefreshDiscardsStaleCompletion(t *testing.T) {
	hosts, metrics := mixedFixture()
	src := &fakeSource{hosts: hosts[:1], metrics: metrics, gate: make(chan struct{})}
	p := newTestPoller(src, &notify.Recorder{}, clock.NewMock())
	defer p.Close()

	slow := make(chan error, 1)
	go func() { slow <- p.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return src.listCalls.Load() == 1 }, time.Second, time.Millisecond)

	// The second refresh sees the full host list and completes first.
	src.mu.Lock()
	gate := src.gate
	src.gate = nil
	src.hosts = hosts
	src.mu.Unlock()
	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, 2, p.Snapshot().View.Counts.Total)

	close(gate)
	require.NoError(t, <-slow)
	assert.Equal(t, 2, p.Snapshot().View.Counts.Total, "older completion must not overwrite newer view")
	assert.Equal(t, 1, p.Snapshot().Stats.PollCount)
}

func TestStartAutoRefreshTwiceLeavesOneTimer(t *testing.T) {
	hosts, metrics := mixedFixture()
	src := &fakeSource{hosts: hosts, metrics: metrics}
	mock := clock.NewMock()
	p := newTestPoller(src, &notify.Recorder{}, mock)
	defer p.Close()

	p.StartAutoRefresh(5 * time.Second)
	p.StartAutoRefresh(5 * time.Second)
	assert.True(t, p.AutoRefreshing())

	mock.Add(5 * time.Second)
	require.Eventually(t, func() bool { return src.listCalls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), src.listCalls.Load())

	p.StopAutoRefresh()
	assert.False(t, p.AutoRefreshing())
	p.StopAutoRefresh()
}

func TestManualRefreshLeavesTimerAlone(t *testing.T) {
	hosts, metrics := mixedFixture()
	src := &fakeSource{hosts: hosts, metrics: metrics}
	rec := &notify.Recorder{}
	p := newTestPoller(src, rec, clock.NewMock())
	defer p.Close()

	require.NoError(t, p.ManualRefresh(context.Background()))
	assert.False(t, p.AutoRefreshing())

	msgs := rec.Messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, "Refreshing...", msgs[0].Text)
	assert.Equal(t, time.Second, msgs[0].TTL)

	p.StartAutoRefresh(0)
	require.NoError(t, p.ManualRefresh(context.Background()))
	assert.True(t, p.AutoRefreshing())
	assert.Equal(t, DefaultInterval, p.Snapshot().Interval)
}

func TestRetryHost(t *testing.T) {
	hosts, metrics := mixedFixture()
	src := &fakeSource{
		hosts:      hosts,
		metrics:    metrics,
		connResult: api.ConnectionResult{Success: true, HostType: api.HostSimulated},
	}
	rec := &notify.Recorder{}
	p := newTestPoller(src, rec, clock.NewMock())
	defer p.Close()

	require.NoError(t, p.RetryHost(context.Background(), 2))
	msgs := rec.Messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, "Simulated host connection test succeeded", msgs[0].Text)
	assert.Equal(t, int32(1), src.listCalls.Load(), "success triggers a refresh")

	src.connErr = hwerrors.New(hwerrors.ErrApplication, "auth failed", "")
	require.Error(t, p.RetryHost(context.Background(), 1))
	last, _ := rec.Last()
	assert.Equal(t, "Connection test failed: auth failed", last.Text)
	assert.Equal(t, int32(1), src.listCalls.Load(), "failure does not refresh")
}

func TestCollectNow(t *testing.T) {
	hosts, metrics := mixedFixture()
	src := &fakeSource{hosts: hosts, metrics: metrics}
	rec := &notify.Recorder{}
	p := newTestPoller(src, rec, clock.NewMock())
	defer p.Close()

	require.NoError(t, p.CollectNow(context.Background(), 1))
	assert.True(t, rec.HasLevel(notify.LevelSuccess))

	src.collectErr = hwerrors.New(hwerrors.ErrApplication, "host offline", "")
	require.Error(t, p.CollectNow(context.Background(), 1))
	last, _ := rec.Last()
	assert.Equal(t, "Collection failed: host offline", last.Text)
}

func TestHistoryPrunesRemovedHosts(t *testing.T) {
	hosts, metrics := mixedFixture()
	src := &fakeSource{hosts: hosts, metrics: metrics}
	p := newTestPoller(src, &notify.Recorder{}, clock.NewMock())
	defer p.Close()

	require.NoError(t, p.Refresh(context.Background()))
	require.NoError(t, p.Refresh(context.Background()))
	assert.Equal(t, []float64{95, 95}, p.Series(1, MetricCPU))

	src.set(hosts[1:], api.MetricsSnapshot{})
	require.NoError(t, p.Refresh(context.Background()))
	assert.Empty(t, p.History(1))
}

func TestRefreshNotificationKeepsTransportCause(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := api.NewClient(api.NewHTTPTransport(url, time.Second, zap.NewNop()), zap.NewNop())
	rec := &notify.Recorder{}
	p := newTestPoller(client, rec, clock.NewMock())
	defer p.Close()

	require.Error(t, p.Refresh(context.Background()))
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Contains(t, last.Text, "Failed to load")
	assert.Contains(t, last.Text, "dial tcp")
}
