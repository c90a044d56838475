package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tonhe/hostwatch/internal/dashboard"
	"github.com/tonhe/hostwatch/tui/components"
	"github.com/tonhe/hostwatch/tui/keys"
	"github.com/tonhe/hostwatch/tui/styles"
)

// Card sizing. cardOuter is the rendered width including border and
// padding; cardWidth is what lipgloss Width receives.
const (
	cardOuter   = 40
	cardWidth   = cardOuter - 2
	cardInner   = cardWidth - 2
	cardGap     = 1
	gaugeBar    = cardInner - 12
	summaryRows = 2
)

// DashboardView shows the summary counts and a grid of host cards.
type DashboardView struct {
	theme  styles.Theme
	sty    *styles.Styles
	view   dashboard.View
	loaded bool
	now    time.Time
	cursor int
	offset int // first visible card row
	width  int
	height int
}

// NewDashboardView creates a DashboardView with the given theme.
func NewDashboardView(theme styles.Theme) DashboardView {
	return DashboardView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// SetTheme swaps the palette.
func (v *DashboardView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// SetView replaces the rendered data and clamps the cursor.
func (v *DashboardView) SetView(view dashboard.View) {
	v.view = view
	v.loaded = true
	if v.cursor >= len(view.Cards) {
		v.cursor = max(len(view.Cards)-1, 0)
	}
	v.ensureVisible()
}

// SetNow sets the time last-update ages are measured against.
func (v *DashboardView) SetNow(now time.Time) {
	v.now = now
}

// SetSize updates the available dimensions for the view.
func (v *DashboardView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.ensureVisible()
}

// Selected returns the card under the cursor.
func (v DashboardView) Selected() (dashboard.Card, bool) {
	if v.cursor < 0 || v.cursor >= len(v.view.Cards) {
		return dashboard.Card{}, false
	}
	return v.view.Cards[v.cursor], true
}

// Update moves the cursor through the grid.
func (v DashboardView) Update(msg tea.Msg) (DashboardView, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok || len(v.view.Cards) == 0 {
		return v, nil
	}
	perRow := v.perRow()
	last := len(v.view.Cards) - 1
	switch {
	case key.Matches(km, keys.DefaultKeyMap.Left):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(km, keys.DefaultKeyMap.Right):
		v.cursor = min(v.cursor+1, last)
	case key.Matches(km, keys.DefaultKeyMap.Up):
		if v.cursor-perRow >= 0 {
			v.cursor -= perRow
		}
	case key.Matches(km, keys.DefaultKeyMap.Down):
		v.cursor = min(v.cursor+perRow, last)
	}
	v.ensureVisible()
	return v, nil
}

// perRow is how many cards fit side by side.
func (v DashboardView) perRow() int {
	if v.width <= 0 {
		return 1
	}
	return max(v.width/(cardOuter+cardGap), 1)
}

func (v DashboardView) visibleRows() int {
	return max((v.height-summaryRows)/cardHeight, 1)
}

func (v *DashboardView) ensureVisible() {
	row := v.cursor / v.perRow()
	visible := v.visibleRows()
	if row < v.offset {
		v.offset = row
	}
	if row >= v.offset+visible {
		v.offset = row - visible + 1
	}
}

// View renders the dashboard.
func (v DashboardView) View() string {
	summary := v.renderSummary()
	if !v.loaded || v.view.Empty() {
		return lipgloss.JoinVertical(lipgloss.Left, summary, v.renderEmpty())
	}
	return lipgloss.JoinVertical(lipgloss.Left, summary, v.renderCards())
}

func (v DashboardView) renderSummary() string {
	c := v.view.Counts
	item := func(label string, n int, st lipgloss.Style) string {
		return v.sty.SummaryLabel.Render(label+" ") + st.Render(fmt.Sprint(n))
	}
	line := " " + strings.Join([]string{
		item("Total", c.Total, v.sty.SummaryValue),
		item("Online", c.Online, v.sty.StatusUp),
		item("Offline", c.Offline, v.sty.StatusDown),
		item("Simulated", c.Simulated, v.sty.StatusSim),
	}, "   ")
	return line + "\n"
}

func (v DashboardView) renderEmpty() string {
	msgStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Align(lipgloss.Center)
	keyStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)

	text := "No hosts yet"
	if !v.loaded {
		text = "Loading hosts..."
	}
	msg := lipgloss.JoinVertical(lipgloss.Center,
		msgStyle.Render(text),
		"",
		msgStyle.Render(fmt.Sprintf("Press %s to manage hosts", keyStyle.Render("[h]"))),
	)
	return lipgloss.Place(v.width, max(v.height-summaryRows, 1), lipgloss.Center, lipgloss.Center, msg)
}

// renderCards lays out the visible card rows.
func (v DashboardView) renderCards() string {
	perRow := v.perRow()
	var rows []string
	for start := v.offset * perRow; start < len(v.view.Cards); start += perRow {
		if len(rows) == v.visibleRows() {
			break
		}
		end := min(start+perRow, len(v.view.Cards))
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, v.renderCard(v.view.Cards[i], i == v.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// cardHeight is the rendered height of every card: six content lines plus
// the border.
const cardHeight = 8

func (v DashboardView) renderCard(c dashboard.Card, selected bool) string {
	lines := []string{
		v.cardTitle(c),
		v.sty.CardDim.Render(truncate(c.Host.IP+"  "+v.updatedText(c), cardInner)),
	}

	if c.Online {
		lines = append(lines,
			components.RenderGauge(v.sty, "CPU", c.CPU, gaugeBar),
			components.RenderGauge(v.sty, "MEM", c.Memory, gaugeBar),
			components.RenderGauge(v.sty, "DISK", c.Disk, gaugeBar),
			v.sty.CardDim.Render(truncate(v.cardFooter(c), cardInner)),
		)
	} else {
		lines = append(lines,
			"",
			v.sty.StatusDown.Render(truncate(c.Error, cardInner)),
			"",
			"",
		)
	}

	style := v.sty.Card
	if selected {
		style = v.sty.CardSelected
	}
	return lipgloss.NewStyle().MarginRight(cardGap).Render(
		style.Width(cardWidth).Height(len(lines)).Render(strings.Join(lines, "\n")),
	)
}

// cardTitle is "● name [badge]" with the badge right-aligned.
func (v DashboardView) cardTitle(c dashboard.Card) string {
	dot := v.sty.StatusDown.Render("●")
	switch {
	case c.Online && c.Simulated:
		dot = v.sty.StatusSim.Render("●")
	case c.Online:
		dot = v.sty.StatusUp.Render("●")
	}

	badge := ""
	if c.Badge != "" {
		badge = v.sty.Badge.Render(strings.ToUpper(c.Badge))
	}
	room := cardInner - 2 - lipgloss.Width(badge) - 1
	name := v.sty.CardTitle.Render(truncate(c.Host.Name, room))
	gap := max(cardInner-2-lipgloss.Width(name)-lipgloss.Width(badge), 1)
	return dot + " " + name + strings.Repeat(" ", gap) + badge
}

func (v DashboardView) cardFooter(c dashboard.Card) string {
	mem := fmt.Sprintf("%s/%s",
		humanize.IBytes(uint64(max(c.MemoryUsed, 0))*humanize.MiByte),
		humanize.IBytes(uint64(max(c.MemoryTotal, 0))*humanize.MiByte))
	load := fmt.Sprintf("load %.2f %.2f %.2f", c.Load[0], c.Load[1], c.Load[2])
	return mem + "  " + load
}

func (v DashboardView) updatedText(c dashboard.Card) string {
	if c.LastUpdate.IsZero() {
		return "never updated"
	}
	now := v.now
	if now.IsZero() {
		now = time.Now()
	}
	return humanize.RelTime(c.LastUpdate, now, "ago", "from now")
}

// truncate shortens s to maxLen runes, adding an ellipsis if needed.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

