package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tonhe/hostwatch/internal/dashboard"
	"github.com/tonhe/hostwatch/tui/components"
	"github.com/tonhe/hostwatch/tui/keys"
	"github.com/tonhe/hostwatch/tui/styles"
)

// Series is one host's usage history, oldest first.
type Series struct {
	CPU    []float64
	Memory []float64
	Disk   []float64
}

// DetailView shows one host's information and its usage charts.
type DetailView struct {
	theme  styles.Theme
	sty    *styles.Styles
	card   *dashboard.Card
	series Series
	width  int
	height int
}

// NewDetailView creates a new DetailView with the given theme.
func NewDetailView(theme styles.Theme) DetailView {
	return DetailView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// SetTheme swaps the palette.
func (v *DetailView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// SetHost updates the view with a host's card and history.
func (v *DetailView) SetHost(card dashboard.Card, series Series) {
	v.card = &card
	v.series = series
}

// HostID returns the displayed host, or 0.
func (v DetailView) HostID() int64 {
	if v.card == nil {
		return 0
	}
	return v.card.Host.ID
}

// SetSize updates the available dimensions for the view.
func (v *DetailView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Update handles key messages for the detail view. The third return value
// reports whether the user wants to go back.
func (v DetailView) Update(msg tea.Msg) (DetailView, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, keys.DefaultKeyMap.Escape) {
		return v, nil, true
	}
	return v, nil, false
}

// View renders the info panel above the three charts.
func (v DetailView) View() string {
	if v.card == nil {
		msg := lipgloss.NewStyle().
			Foreground(v.theme.Base04).
			Render("No host selected")
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msg)
	}

	info := v.renderInfoPanel(*v.card)

	const infoHeight = 10
	chartHeight := max(v.height-infoHeight-1, 6)
	chartWidth := max((v.width-6)/3, 15)

	chart := func(data []float64, title string, color lipgloss.Color) string {
		return lipgloss.NewStyle().
			Foreground(color).
			Render(components.RenderChart(data, chartWidth, chartHeight, title))
	}
	sep := lipgloss.NewStyle().
		Foreground(v.theme.Base03).
		Render(strings.TrimSuffix(strings.Repeat(" | \n", chartHeight), "\n"))

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		chart(v.series.CPU, "CPU", v.theme.Base0D), sep,
		chart(v.series.Memory, "Memory", v.theme.Base0E), sep,
		chart(v.series.Disk, "Disk", v.theme.Base0C),
	)

	helpStyle := lipgloss.NewStyle().Foreground(v.theme.Base04)
	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	help := helpStyle.Render(fmt.Sprintf("  %s test  %s collect  %s back",
		keyStyle.Render("[t]"), keyStyle.Render("[c]"), keyStyle.Render("[esc]")))

	return lipgloss.JoinVertical(lipgloss.Left, info, "", charts, help)
}

func (v DetailView) renderInfoPanel(c dashboard.Card) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Width(14)
	valueStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base05)
	highlightStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)

	row := func(label, value string) string {
		return "  " + labelStyle.Render(label) + value
	}

	status := v.sty.StatusDown.Render("offline")
	if c.Online {
		status = v.sty.StatusUp.Render("online")
	}
	kind := string(c.Host.HostType)
	if kind == "" {
		kind = dashboard.SourceReal
	}

	rows := []string{
		"",
		row("Host:", highlightStyle.Render(c.Host.Name)),
		row("Address:", valueStyle.Render(fmt.Sprintf("%s:%d", c.Host.IP, c.Host.Port))),
		row("Type:", valueStyle.Render(kind+", data "+c.DataSource)),
		row("Status:", status),
	}
	if !c.Online {
		rows = append(rows, row("Error:", v.sty.StatusDown.Render(c.Error)))
		return strings.Join(rows, "\n")
	}

	pct := func(g dashboard.Gauge) string {
		return components.LevelStyle(v.sty, g.Level).Render(components.FormatPercent(g.Value))
	}
	spark := func(data []float64) string {
		return "  " + lipgloss.NewStyle().Foreground(v.theme.Base0C).Render(components.Sparkline(data, 20, 100))
	}
	rows = append(rows,
		row("CPU:", pct(c.CPU)+spark(v.series.CPU)),
		row("Memory:", pct(c.Memory)+valueStyle.Render(fmt.Sprintf("  %s of %s",
			humanize.IBytes(uint64(max(c.MemoryUsed, 0))*humanize.MiByte),
			humanize.IBytes(uint64(max(c.MemoryTotal, 0))*humanize.MiByte)))),
		row("Disk:", pct(c.Disk)+spark(v.series.Disk)),
		row("Load:", valueStyle.Render(fmt.Sprintf("%.2f  %.2f  %.2f", c.Load[0], c.Load[1], c.Load[2]))),
	)
	return strings.Join(rows, "\n")
}
