package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/tonhe/hostwatch/internal/config"
	"github.com/tonhe/hostwatch/internal/engine"
	"github.com/tonhe/hostwatch/internal/i18n"
	"github.com/tonhe/hostwatch/internal/notify"
	"github.com/tonhe/hostwatch/internal/registry"
	"github.com/tonhe/hostwatch/tui/components"
	"github.com/tonhe/hostwatch/tui/keys"
	"github.com/tonhe/hostwatch/tui/styles"
	"github.com/tonhe/hostwatch/tui/views"
)

// AppState represents the current screen of the application.
type AppState int

const (
	StateDashboard AppState = iota
	StateDetail
	StateHosts
)

// TickMsg advances relative times and expires notifications.
type TickMsg time.Time

// snapshotMsg carries a poller event into the update loop.
type snapshotMsg engine.Event

// opDoneMsg ends a poller operation started from a key press.
type opDoneMsg struct{ err error }

// Options wires the model to the rest of the program.
type Options struct {
	Context  context.Context
	Config   *config.Config
	Poller   *engine.Poller
	Registry *registry.Registry
	Center   *notify.Center
	// Notifier receives the model's own messages. Defaults to Center.
	Notifier notify.Notifier
	Catalog  *i18n.Catalog
	Logger   *zap.Logger
	Version  string
}

// AppModel is the root Bubble Tea model that manages all views and state.
type AppModel struct {
	ctx      context.Context
	state    AppState
	slug     string
	theme    styles.Theme
	sty      *styles.Styles
	config   *config.Config
	poller   *engine.Poller
	center   *notify.Center
	notifier notify.Notifier
	logger   *zap.Logger
	version  string
	events   <-chan engine.Event
	snap     engine.Snapshot
	now      time.Time
	inflight int
	spinner  spinner.Model

	dashboard views.DashboardView
	detail    views.DetailView
	hosts     views.HostsView
	help      views.HelpView
	width     int
	height    int
}

// NewAppModel creates the root model. It subscribes to the poller; the
// first refresh and auto-refresh start in Init.
func NewAppModel(opts Options) AppModel {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Center == nil {
		opts.Center = notify.NewCenter(nil, 0)
	}
	if opts.Notifier == nil {
		opts.Notifier = opts.Center
	}

	slug := opts.Config.Theme
	if styles.GetThemeByName(slug) == nil {
		slug = styles.DefaultSlug
	}
	theme := styles.Resolve(slug)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(theme.Base0C)

	return AppModel{
		ctx:       opts.Context,
		state:     StateDashboard,
		slug:      slug,
		theme:     theme,
		sty:       styles.NewStyles(theme),
		config:    opts.Config,
		poller:    opts.Poller,
		center:    opts.Center,
		notifier:  opts.Notifier,
		logger:    opts.Logger.Named("tui"),
		version:   opts.Version,
		events:    opts.Poller.Subscribe(),
		snap:      opts.Poller.Snapshot(),
		now:       time.Now(),
		inflight:  1,
		spinner:   sp,
		dashboard: views.NewDashboardView(theme),
		detail:    views.NewDetailView(theme),
		hosts:     views.NewHostsView(opts.Context, theme, opts.Registry, opts.Catalog),
		help:      views.NewHelpView(theme),
	}
}

// Init starts auto-refresh, the first refresh and the tick loop.
func (m AppModel) Init() tea.Cmd {
	p, interval := m.poller, m.config.PollInterval
	return tea.Batch(
		func() tea.Msg {
			p.StartAutoRefresh(interval)
			return nil
		},
		m.refresh(p.Refresh),
		waitForEvent(m.events),
		m.hosts.Load(),
		tickCmd(),
		m.spinner.Tick,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForEvent blocks until the poller publishes.
func waitForEvent(ch <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(ev)
	}
}

// refresh runs a poller operation off the update loop.
func (m AppModel) refresh(op func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{err: op(ctx)}
	}
}

// start counts op as in flight and runs it.
func (m *AppModel) start(op func(ctx context.Context) error) tea.Cmd {
	m.inflight++
	return m.refresh(op)
}

// Update handles messages and dispatches to the active view.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		body := m.bodyHeight()
		m.dashboard.SetSize(msg.Width, body)
		m.detail.SetSize(msg.Width, body)
		m.hosts.SetSize(msg.Width, body)
		m.help.SetSize(msg.Width, body)
		return m, nil

	case TickMsg:
		m.now = time.Time(msg)
		m.dashboard.SetNow(m.now)
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.applySnapshot(msg.Snapshot)
		return m, waitForEvent(m.events)

	case opDoneMsg:
		m.inflight = max(m.inflight-1, 0)
		if msg.err != nil {
			m.logger.Debug("operation failed", zap.Error(msg.err))
		}
		// A failed refresh publishes nothing; pick up the stats anyway.
		m.applySnapshot(m.poller.Snapshot())
		return m, nil

	case views.HostsChangedMsg:
		var cmd tea.Cmd
		m.hosts, cmd, _ = m.hosts.Update(msg)
		if msg.Changed {
			return m, tea.Batch(cmd, m.start(m.poller.Refresh))
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state == StateHosts {
		var cmd tea.Cmd
		m.hosts, cmd, _ = m.hosts.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *AppModel) applySnapshot(snap engine.Snapshot) {
	m.snap = snap
	m.dashboard.SetView(snap.View)
	if id := m.detail.HostID(); id != 0 {
		if card, ok := snap.View.Card(id); ok {
			m.detail.SetHost(card, m.series(id))
		}
	}
}

func (m AppModel) series(id int64) views.Series {
	return views.Series{
		CPU:    m.poller.Series(id, engine.MetricCPU),
		Memory: m.poller.Series(id, engine.MetricMemory),
		Disk:   m.poller.Series(id, engine.MetricDisk),
	}
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := keys.DefaultKeyMap

	// The add form and the delete prompt take every key.
	if m.state == StateHosts && m.hosts.Capturing() {
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		var cmd tea.Cmd
		m.hosts, cmd, _ = m.hosts.Update(msg)
		return m, cmd
	}

	if m.help.IsVisible() {
		if key.Matches(msg, km.Help) || key.Matches(msg, km.Escape) {
			m.help.Toggle()
		}
		if key.Matches(msg, km.Quit) {
			return m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, km.Quit):
		return m.quit()
	case key.Matches(msg, km.Help):
		m.help.Toggle()
		return m, nil
	case key.Matches(msg, km.Theme):
		m.setTheme(styles.Next(m.slug))
		notify.Info(m.notifier, "Theme: "+m.theme.Name)
		return m, nil
	}

	switch m.state {
	case StateDashboard:
		return m.handleDashboardKey(msg)
	case StateDetail:
		return m.handleDetailKey(msg)
	case StateHosts:
		var (
			cmd  tea.Cmd
			back bool
		)
		m.hosts, cmd, back = m.hosts.Update(msg)
		if back {
			m.state = StateDashboard
		}
		return m, cmd
	}
	return m, nil
}

func (m AppModel) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := keys.DefaultKeyMap
	switch {
	case key.Matches(msg, km.Refresh):
		return m, m.start(m.poller.ManualRefresh)
	case key.Matches(msg, km.AutoRefresh):
		m.toggleAutoRefresh()
		return m, nil
	case key.Matches(msg, km.Hosts):
		m.state = StateHosts
		return m, m.hosts.Load()
	}

	card, ok := m.dashboard.Selected()
	switch {
	case !ok:
	case key.Matches(msg, km.Enter):
		m.detail.SetHost(card, m.series(card.Host.ID))
		m.state = StateDetail
		return m, nil
	case key.Matches(msg, km.Test):
		return m, m.retry(card.Host.ID)
	case key.Matches(msg, km.Collect):
		return m, m.collect(card.Host.ID)
	}

	var cmd tea.Cmd
	m.dashboard, cmd = m.dashboard.Update(msg)
	return m, cmd
}

func (m AppModel) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	km := keys.DefaultKeyMap
	id := m.detail.HostID()
	switch {
	case key.Matches(msg, km.Test):
		return m, m.retry(id)
	case key.Matches(msg, km.Collect):
		return m, m.collect(id)
	case key.Matches(msg, km.Refresh):
		return m, m.start(m.poller.ManualRefresh)
	}

	var (
		cmd  tea.Cmd
		back bool
	)
	m.detail, cmd, back = m.detail.Update(msg)
	if back {
		m.state = StateDashboard
	}
	return m, cmd
}

func (m *AppModel) retry(id int64) tea.Cmd {
	p := m.poller
	return m.start(func(ctx context.Context) error { return p.RetryHost(ctx, id) })
}

func (m *AppModel) collect(id int64) tea.Cmd {
	p := m.poller
	return m.start(func(ctx context.Context) error { return p.CollectNow(ctx, id) })
}

func (m *AppModel) toggleAutoRefresh() {
	if m.poller.AutoRefreshing() {
		m.poller.StopAutoRefresh()
		notify.Info(m.notifier, "Auto refresh paused")
	} else {
		m.poller.StartAutoRefresh(m.config.PollInterval)
		notify.Info(m.notifier, "Auto refresh every "+m.poller.Snapshot().Interval.String())
	}
	m.snap = m.poller.Snapshot()
}

func (m *AppModel) setTheme(slug string) {
	m.slug = slug
	m.theme = styles.Resolve(slug)
	m.sty = styles.NewStyles(m.theme)
	m.spinner.Style = lipgloss.NewStyle().Foreground(m.theme.Base0C)
	m.dashboard.SetTheme(m.theme)
	m.detail.SetTheme(m.theme)
	m.hosts.SetTheme(m.theme)
	m.help.SetTheme(m.theme)
	m.logger.Debug("theme changed", zap.String("theme", slug))
}

func (m AppModel) quit() (tea.Model, tea.Cmd) {
	m.poller.Close()
	return m, tea.Quit
}

// bodyHeight is what remains between the header and the two-line status bar.
func (m AppModel) bodyHeight() int {
	return max(m.height-1-2, 1)
}

// View renders the full application UI by composing header, body, and status.
func (m AppModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	busy := ""
	if m.inflight > 0 {
		busy = m.spinner.View()
	}
	header := components.RenderHeader(m.theme, components.HeaderInfo{
		Server:  m.config.Server,
		Live:    m.snap.AutoRefresh,
		Busy:    busy,
		Counts:  m.snap.View.Counts,
		Version: m.version,
	}, m.width)

	var body string
	switch {
	case m.help.IsVisible():
		body = m.help.View()
	case m.state == StateDetail:
		body = m.detail.View()
	case m.state == StateHosts:
		body = m.hosts.View()
	default:
		body = m.dashboard.View()
	}

	info := components.StatusInfo{
		Interval:    m.snap.Interval,
		AutoRefresh: m.snap.AutoRefresh,
		LastPoll:    m.snap.Stats.LastPoll,
		Now:         m.now,
		Errors:      m.snap.Stats.ErrorCount,
		Keys:        m.keyHints(),
	}
	if e, ok := m.center.Latest(); ok {
		info.Notice = &e
	}
	statusBar := components.RenderStatusBar(m.theme, m.sty, info, m.width)

	bodyStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(m.bodyHeight()).
		MaxHeight(m.bodyHeight()).
		Background(m.theme.Base00).
		Foreground(m.theme.Base05)

	return lipgloss.JoinVertical(lipgloss.Left, header, bodyStyle.Render(body), statusBar)
}

func (m AppModel) keyHints() []components.KeyHint {
	switch m.state {
	case StateDetail:
		return []components.KeyHint{{Key: "t", Desc: "test"}, {Key: "c", Desc: "collect"}, {Key: "r", Desc: "refresh"}, {Key: "esc", Desc: "back"}, {Key: "?", Desc: "help"}}
	case StateHosts:
		return []components.KeyHint{{Key: "n", Desc: "add"}, {Key: "x", Desc: "delete"}, {Key: "t", Desc: "test"}, {Key: "s", Desc: "simulate"}, {Key: "esc", Desc: "back"}}
	}
	auto := "pause"
	if !m.snap.AutoRefresh {
		auto = "resume"
	}
	return []components.KeyHint{
		{Key: "r", Desc: "refresh"}, {Key: "a", Desc: auto}, {Key: "enter", Desc: "detail"}, {Key: "t", Desc: "retry"},
		{Key: "c", Desc: "collect"}, {Key: "h", Desc: "hosts"}, {Key: "T", Desc: "theme"}, {Key: "?", Desc: "help"}, {Key: "q", Desc: "quit"},
	}
}
