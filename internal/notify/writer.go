package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#859900")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#b58900")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc322f")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#268bd2"))
)

// Symbol returns the status glyph for a level.
func Symbol(l Level) string {
	switch l {
	case LevelSuccess:
		return "✓"
	case LevelWarning:
		return "!"
	case LevelError:
		return "✗"
	default:
		return "•"
	}
}

// Writer prints messages as they arrive. The CLI uses it; TTLs are ignored
// because the terminal scrolls.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriter returns a Writer printing to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Notify prints msg with a coloured status symbol.
func (w *Writer) Notify(msg Message) {
	style := infoStyle
	switch msg.Level {
	case LevelSuccess:
		style = successStyle
	case LevelWarning:
		style = warningStyle
	case LevelError:
		style = errorStyle
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "%s %s\n", style.Render(Symbol(msg.Level)), msg.Text)
}
