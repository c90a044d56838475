package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tonhe/hostwatch/internal/notify"
	"github.com/tonhe/hostwatch/tui/styles"
)

// KeyHint is one "key:description" pair in the footer.
type KeyHint struct {
	Key  string
	Desc string
}

// StatusInfo is what the two-line footer shows.
type StatusInfo struct {
	Interval    time.Duration
	AutoRefresh bool
	LastPoll    time.Time
	Now         time.Time
	Errors      int
	Notice      *notify.Entry
	Keys        []KeyHint
}

// RenderStatusBar renders the two-line footer: poll state or the latest
// notification on top, key hints below.
func RenderStatusBar(theme styles.Theme, sty *styles.Styles, info StatusInfo, width int) string {
	bg := lipgloss.NewStyle().Background(theme.Base01)
	fill := func(s string) string {
		if w := lipgloss.Width(s); w < width {
			s += bg.Render(strings.Repeat(" ", width-w))
		}
		return lipgloss.NewStyle().MaxWidth(width).Render(s)
	}

	var top string
	if info.Notice != nil {
		top = bg.Render(" ") + noticeStyle(sty, info.Notice.Level).
			Render(notify.Symbol(info.Notice.Level)+" "+info.Notice.Text)
	} else {
		sep := bg.Foreground(theme.Base03).Render(" | ")
		poll := "poll: off"
		if info.AutoRefresh {
			poll = fmt.Sprintf("poll: %s", info.Interval)
		}
		last := "last: never"
		if !info.LastPoll.IsZero() {
			last = "last: " + humanize.RelTime(info.LastPoll, info.Now, "ago", "from now")
		}
		errColor := theme.Base04
		if info.Errors > 0 {
			errColor = theme.Base08
		}
		top = bg.Render(" ") +
			bg.Foreground(theme.Base05).Render(poll) + sep +
			bg.Foreground(theme.Base05).Render(last) + sep +
			bg.Foreground(errColor).Render(fmt.Sprintf("%d errors", info.Errors))
	}

	keys := bg.Render(" ")
	for i, k := range info.Keys {
		if i > 0 {
			keys += bg.Render("  ")
		}
		keys += sty.FooterKey.Render(k.Key) + sty.FooterDesc.Render(":"+k.Desc)
	}

	return lipgloss.JoinVertical(lipgloss.Left, fill(top), fill(keys))
}

func noticeStyle(sty *styles.Styles, l notify.Level) lipgloss.Style {
	switch l {
	case notify.LevelSuccess:
		return sty.NotifySuccess
	case notify.LevelWarning:
		return sty.NotifyWarning
	case notify.LevelError:
		return sty.NotifyError
	default:
		return sty.NotifyInfo
	}
}
