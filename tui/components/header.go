package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/hostwatch/internal/dashboard"
	"github.com/tonhe/hostwatch/tui/styles"
)

// HeaderInfo is what the top bar shows.
type HeaderInfo struct {
	Server  string
	Live    bool   // auto-refresh running
	Busy    string // spinner frame while a request is in flight
	Counts  dashboard.Counts
	Version string
}

// RenderHeader renders the top header bar with app name, server, refresh
// state and host counts.
func RenderHeader(theme styles.Theme, info HeaderInfo, width int) string {
	bg := lipgloss.NewStyle().Background(theme.Base01)
	seg := func(color lipgloss.Color, s string) string {
		return bg.Foreground(color).Render(s)
	}
	sep := seg(theme.Base03, "  |  ")

	title := bg.Foreground(theme.Base0D).Bold(true).Render("hostwatch")

	status, statusColor := "PAUSED", theme.Base0A
	if info.Live {
		status, statusColor = "LIVE", theme.Base0B
	}

	busy := " "
	if info.Busy != "" {
		busy = info.Busy
	}

	c := info.Counts
	counts := seg(theme.Base05, fmt.Sprintf("%d hosts ", c.Total)) +
		seg(theme.Base0B, fmt.Sprintf("%d up ", c.Online)) +
		seg(theme.Base08, fmt.Sprintf("%d down ", c.Offline)) +
		seg(theme.Base0E, fmt.Sprintf("%d sim", c.Simulated))

	content := bg.Render(" ") + title + sep +
		seg(theme.Base05, info.Server) + sep +
		seg(statusColor, status) + bg.Render(" ") + seg(theme.Base0C, busy) + sep +
		counts
	if info.Version != "" {
		content += sep + seg(theme.Base04, info.Version)
	}

	return bg.Width(width).MaxWidth(width).Render(content)
}
