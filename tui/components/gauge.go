package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/hostwatch/internal/dashboard"
	"github.com/tonhe/hostwatch/tui/styles"
)

const (
	barFilled = '█'
	barEmpty  = '░'
)

// LevelStyle returns the color for a usage level.
func LevelStyle(sty *styles.Styles, l dashboard.Level) lipgloss.Style {
	switch l {
	case dashboard.Danger:
		return sty.LevelDanger
	case dashboard.Warning:
		return sty.LevelWarning
	default:
		return sty.LevelNormal
	}
}

// barCounts splits width cells for a 0-100 fill.
func barCounts(fill float64, width int) (filled, empty int) {
	if width <= 0 {
		return 0, 0
	}
	filled = int(math.Round(fill / 100 * float64(width)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return filled, width - filled
}

// RenderGauge renders "label [████░░░░]  42.0%" with the bar and value
// colored by the gauge level.
func RenderGauge(sty *styles.Styles, label string, g dashboard.Gauge, barWidth int) string {
	filled, empty := barCounts(g.Width, barWidth)
	style := LevelStyle(sty, g.Level)
	bar := style.Render(strings.Repeat(string(barFilled), filled)) +
		sty.GaugeTrack.Render(strings.Repeat(string(barEmpty), empty))
	return fmt.Sprintf("%s %s %s",
		sty.SummaryLabel.Render(fmt.Sprintf("%-4s", label)),
		bar,
		style.Render(fmt.Sprintf("%5.1f%%", g.Value)),
	)
}
