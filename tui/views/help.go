package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/hostwatch/tui/keys"
	"github.com/tonhe/hostwatch/tui/styles"
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

func helpSections(km keys.KeyMap) []helpSection {
	return []helpSection{
		{"Global", []key.Binding{km.Quit, km.Help, km.Theme}},
		{"Dashboard", []key.Binding{
			km.Up, km.Down, km.Left, km.Right, km.Enter,
			km.Refresh, km.AutoRefresh, km.Test, km.Collect, km.Hosts,
		}},
		{"Hosts", []key.Binding{km.New, km.Delete, km.Test, km.Simulate, km.Refresh, km.Escape}},
	}
}

// HelpView is the key reference overlay.
type HelpView struct {
	sty     *styles.Styles
	keyMap  keys.KeyMap
	width   int
	height  int
	visible bool
}

func NewHelpView(theme styles.Theme) HelpView {
	return HelpView{sty: styles.NewStyles(theme), keyMap: keys.DefaultKeyMap}
}

func (v *HelpView) SetTheme(theme styles.Theme) { v.sty = styles.NewStyles(theme) }

func (v *HelpView) Toggle() { v.visible = !v.visible }

func (v HelpView) IsVisible() bool { return v.visible }

func (v *HelpView) SetSize(width, height int) {
	v.width, v.height = width, height
}

// View centers the overlay in the body area.
func (v HelpView) View() string {
	inner := 42
	if v.width > 60 {
		inner = max(min(v.width/2, 56), 44) - 6
	}

	out := []string{v.sty.ModalTitle.Render("Keys"), ""}
	for _, s := range helpSections(v.keyMap) {
		out = append(out, v.sty.GroupHeader.Render(s.title))
		for _, b := range s.bindings {
			h := b.Help()
			out = append(out, "  "+v.sty.FooterKey.UnsetBackground().Render(padRight(h.Key, 12))+
				"  "+v.sty.TableRow.Render(h.Desc))
		}
		out = append(out, "")
	}
	out = append(out, v.sty.CardDim.Render("? or esc to close"))

	box := v.sty.ModalBorder.Width(inner).Render(strings.Join(out, "\n"))
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, box)
}
