package styles

import "github.com/charmbracelet/lipgloss"

// Styles holds all themed lipgloss styles for the application.
type Styles struct {
	// Header / Footer
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	FooterKey   lipgloss.Style
	FooterDesc  lipgloss.Style

	// Summary counts
	SummaryLabel lipgloss.Style
	SummaryValue lipgloss.Style

	// Host cards
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	CardTitle    lipgloss.Style
	CardDim      lipgloss.Style
	Badge        lipgloss.Style

	// Status colors
	StatusUp   lipgloss.Style
	StatusDown lipgloss.Style
	StatusSim  lipgloss.Style

	// Gauge levels
	LevelNormal  lipgloss.Style
	LevelWarning lipgloss.Style
	LevelDanger  lipgloss.Style
	GaugeTrack   lipgloss.Style

	// Notifications
	NotifyInfo    lipgloss.Style
	NotifySuccess lipgloss.Style
	NotifyWarning lipgloss.Style
	NotifyError   lipgloss.Style

	// Tables
	TableHeader lipgloss.Style
	TableRow    lipgloss.Style
	TableRowSel lipgloss.Style
	GroupHeader lipgloss.Style

	// Modal / overlay
	ModalBorder lipgloss.Style
	ModalTitle  lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(theme Theme) *Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Base03).
		Padding(0, 1)

	return &Styles{
		Header: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Background(theme.Base01),
		HeaderTitle: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Background(theme.Base01).
			Bold(true),
		FooterKey: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Background(theme.Base01).
			Bold(true),
		FooterDesc: lipgloss.NewStyle().
			Foreground(theme.Base04).
			Background(theme.Base01),

		SummaryLabel: lipgloss.NewStyle().
			Foreground(theme.Base04),
		SummaryValue: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Bold(true),

		Card: card,
		CardSelected: card.
			BorderForeground(theme.Base0D),
		CardTitle: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Bold(true),
		CardDim: lipgloss.NewStyle().
			Foreground(theme.Base03),
		Badge: lipgloss.NewStyle().
			Foreground(theme.Base00).
			Background(theme.Base0E).
			Padding(0, 1),

		StatusUp: lipgloss.NewStyle().
			Foreground(theme.Base0B),
		StatusDown: lipgloss.NewStyle().
			Foreground(theme.Base08),
		StatusSim: lipgloss.NewStyle().
			Foreground(theme.Base0E),

		LevelNormal: lipgloss.NewStyle().
			Foreground(theme.Base0B),
		LevelWarning: lipgloss.NewStyle().
			Foreground(theme.Base0A),
		LevelDanger: lipgloss.NewStyle().
			Foreground(theme.Base08),
		GaugeTrack: lipgloss.NewStyle().
			Foreground(theme.Base02),

		NotifyInfo: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Background(theme.Base01),
		NotifySuccess: lipgloss.NewStyle().
			Foreground(theme.Base0B).
			Background(theme.Base01).
			Bold(true),
		NotifyWarning: lipgloss.NewStyle().
			Foreground(theme.Base0A).
			Background(theme.Base01).
			Bold(true),
		NotifyError: lipgloss.NewStyle().
			Foreground(theme.Base08).
			Background(theme.Base01).
			Bold(true),

		TableHeader: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),
		TableRow: lipgloss.NewStyle().
			Foreground(theme.Base05),
		TableRowSel: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Background(theme.Base02),
		GroupHeader: lipgloss.NewStyle().
			Foreground(theme.Base0E).
			Bold(true),

		ModalBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Base0D).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),
	}
}
