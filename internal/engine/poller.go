// Package engine polls the metrics server and keeps the latest dashboard view.
package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tonhe/hostwatch/internal/api"
	"github.com/tonhe/hostwatch/internal/dashboard"
	"github.com/tonhe/hostwatch/internal/i18n"
	"github.com/tonhe/hostwatch/internal/notify"
)

// DefaultInterval is the auto-refresh period.
const DefaultInterval = 5 * time.Second

// refreshingTTL is how long the manual refresh hint stays visible.
const refreshingTTL = time.Second

// Source is the part of the API the poller reads from. *api.Client
// satisfies it.
type Source interface {
	ListHosts(ctx context.Context) ([]api.Host, error)
	Metrics(ctx context.Context) (api.MetricsSnapshot, error)
	TestConnection(ctx context.Context, id int64) (api.ConnectionResult, error)
	CollectNow(ctx context.Context, id int64) (api.CollectResult, error)
}

// Options configures a Poller. Zero values pick defaults.
type Options struct {
	Interval       time.Duration
	RequestTimeout time.Duration
	HistorySize    int
	Clock          clock.Clock
	Logger         *zap.Logger
	Notifier       notify.Notifier
	Catalog        *i18n.Catalog
}

// Poller fetches hosts and metrics, joins them into a dashboard view and
// publishes the result to subscribers.
type Poller struct {
	src      Source
	clock    clock.Clock
	logger   *zap.Logger
	notifier notify.Notifier
	catalog  *i18n.Catalog
	timeout  time.Duration
	interval time.Duration

	history *History
	sched   *Scheduler
	issued  atomic.Uint64

	// ctx bounds refreshes started by the scheduler.
	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.RWMutex
	hosts       []api.Host
	metrics     api.MetricsSnapshot
	view        dashboard.View
	applied     uint64
	stats       Stats
	subscribers []chan Event
}

// NewPoller creates a Poller reading from src. Auto-refresh is not started.
func NewPoller(src Source, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Catalog == nil {
		opts.Catalog = i18n.New(i18n.DefaultLanguage)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{
		src:      src,
		clock:    opts.Clock,
		logger:   opts.Logger.Named("poller"),
		notifier: opts.Notifier,
		catalog:  opts.Catalog,
		timeout:  opts.RequestTimeout,
		interval: opts.Interval,
		history:  NewHistory(opts.HistorySize),
		ctx:      ctx,
		cancel:   cancel,
		metrics:  api.MetricsSnapshot{},
	}
	p.sched = NewScheduler(opts.Clock, func() {
		_ = p.Refresh(p.ctx)
	})
	return p
}

// Refresh fetches the host list and the metrics snapshot concurrently and,
// when both succeed, replaces the current view. A completion older than the
// last applied one is discarded. Failures are logged and reported to the
// notifier; the previous view stays unless there is none.
func (p *Poller) Refresh(ctx context.Context) error {
	seq := p.issued.Add(1)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var (
		hosts    []api.Host
		metrics  api.MetricsSnapshot
		hostsErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hosts, err = p.src.ListHosts(gctx)
		hostsErr = err
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = p.src.Metrics(gctx)
		return err
	})
	err := g.Wait()

	p.mu.Lock()
	if seq < p.applied {
		p.mu.Unlock()
		p.logger.Debug("discarding stale refresh", zap.Uint64("seq", seq))
		return nil
	}
	p.applied = seq

	if err != nil {
		p.stats.ErrorCount++
		p.stats.LastError = err
		if len(p.hosts) == 0 && len(p.metrics) == 0 {
			p.view = dashboard.View{Err: err}
			p.notifyLocked(seq)
		}
		p.mu.Unlock()

		key := i18n.LoadMetricsFailed
		if err == hostsErr {
			key = i18n.LoadHostsFailed
		}
		p.logger.Warn("refresh failed", zap.Uint64("seq", seq), zap.Error(err))
		notify.Error(p.notifier, p.catalog.T(key, p.reason(err)))
		return err
	}

	now := p.clock.Now()
	p.hosts = hosts
	p.metrics = metrics
	p.view = dashboard.Build(hosts, metrics,
		dashboard.WithOfflineMessage(p.catalog.T(i18n.ConnectionFailed)))
	p.history.Record(p.view, now)
	p.stats.PollCount++
	p.stats.LastPoll = now
	p.stats.LastError = nil
	p.notifyLocked(seq)
	p.mu.Unlock()

	p.logger.Debug("refresh applied",
		zap.Uint64("seq", seq),
		zap.Int("hosts", len(hosts)),
		zap.Int("metrics", len(metrics)),
	)
	return nil
}

// reason extracts the user-facing part of err.
func (p *Poller) reason(err error) string {
	if msg := api.Reason(err); msg != "" {
		return msg
	}
	return p.catalog.T(i18n.UnknownError)
}

// StartAutoRefresh replaces any running timer with one firing every
// interval. A non-positive interval uses the configured default.
func (p *Poller) StartAutoRefresh(interval time.Duration) {
	if interval <= 0 {
		interval = p.interval
	}
	p.sched.Start(interval)
	p.logger.Debug("auto refresh started", zap.Duration("interval", interval))
}

// StopAutoRefresh cancels the timer. It is a no-op when none is running.
func (p *Poller) StopAutoRefresh() {
	p.sched.Stop()
}

// AutoRefreshing reports whether the timer is active.
func (p *Poller) AutoRefreshing() bool {
	return p.sched.Running()
}

// ManualRefresh shows a short "refreshing" hint and refreshes once. The
// auto-refresh timer is left alone.
func (p *Poller) ManualRefresh(ctx context.Context) error {
	p.notifier.Notify(notify.Message{
		Level: notify.LevelInfo,
		Text:  p.catalog.T(i18n.Refreshing),
		TTL:   refreshingTTL,
	})
	return p.Refresh(ctx)
}

// RetryHost asks the server to test the connection to host id. On success
// the dashboard is refreshed.
func (p *Poller) RetryHost(ctx context.Context, id int64) error {
	res, err := p.src.TestConnection(ctx, id)
	if err != nil {
		p.logger.Info("connection test failed", zap.Int64("host", id), zap.Error(err))
		notify.Error(p.notifier, p.catalog.T(i18n.TestFailed, p.reason(err)))
		return err
	}
	msg := p.catalog.T(i18n.TestSucceededSSH)
	if res.HostType == api.HostSimulated {
		msg = p.catalog.T(i18n.TestSucceededSim)
	}
	notify.Success(p.notifier, msg)
	return p.Refresh(ctx)
}

// CollectNow asks the server to collect metrics for host id immediately and
// refreshes on success.
func (p *Poller) CollectNow(ctx context.Context, id int64) error {
	if _, err := p.src.CollectNow(ctx, id); err != nil {
		p.logger.Info("collect failed", zap.Int64("host", id), zap.Error(err))
		notify.Error(p.notifier, p.catalog.T(i18n.CollectFailed, p.reason(err)))
		return err
	}
	notify.Success(p.notifier, p.catalog.T(i18n.CollectSucceeded))
	return p.Refresh(ctx)
}

// Snapshot returns a copy of the current state. Safe from any goroutine.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

// snapshotLocked requires at least a read lock on p.mu.
func (p *Poller) snapshotLocked() Snapshot {
	view := p.view
	view.Cards = append([]dashboard.Card(nil), p.view.Cards...)
	interval := p.sched.Interval()
	return Snapshot{
		View:        view,
		Stats:       p.stats,
		AutoRefresh: interval > 0,
		Interval:    interval,
	}
}

// History returns the recorded samples for host id, oldest first.
func (p *Poller) History(id int64) []Sample {
	return p.history.Samples(id)
}

// Series returns one metric of host id's history.
func (p *Poller) Series(id int64, m Metric) []float64 {
	return p.history.Series(id, m)
}

// Subscribe returns a channel that receives an event after each applied
// refresh. Slow readers miss events rather than block the poller.
func (p *Poller) Subscribe() <-chan Event {
	ch := make(chan Event, 1)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// notifyLocked must be called with the write lock held.
func (p *Poller) notifyLocked(seq uint64) {
	event := Event{Seq: seq, Snapshot: p.snapshotLocked()}
	for _, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close stops auto-refresh and cancels scheduled refreshes in flight.
func (p *Poller) Close() {
	p.sched.Stop()
	p.cancel()
}
