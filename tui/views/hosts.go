package views

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tonhe/hostwatch/internal/api"
	"github.com/tonhe/hostwatch/internal/i18n"
	"github.com/tonhe/hostwatch/internal/registry"
	"github.com/tonhe/hostwatch/tui/keys"
	"github.com/tonhe/hostwatch/tui/styles"
)

// HostsChangedMsg reports the end of a host management operation. Changed
// is set when the host list may differ from what the dashboard shows.
type HostsChangedMsg struct {
	Changed bool
	Err     error
}

// hostDraft backs the add-host form. It lives behind a pointer so copies
// of the view share the bound values.
type hostDraft struct {
	kind     api.HostType
	name     string
	ip       string
	port     string
	username string
	password string
}

func (d *hostDraft) input() (api.HostInput, error) {
	in := api.HostInput{
		Name:     d.name,
		IP:       d.ip,
		Username: d.username,
		Password: d.password,
		HostType: d.kind,
	}
	if p := strings.TrimSpace(d.port); p != "" && d.kind != api.HostSimulated {
		n, err := strconv.Atoi(p)
		if err != nil {
			return in, fmt.Errorf("invalid port %q", p)
		}
		in.Port = n
	}
	return in, nil
}

// simulated hides the connection fields, which the registry fills itself.
func (d *hostDraft) simulated() bool {
	return d.kind == api.HostSimulated
}

type hostsMode int

const (
	hostsBrowse hostsMode = iota
	hostsForm
	hostsConfirm
)

// HostsView lists real and simulated hosts and runs add, delete, test and
// simulate operations against the registry.
type HostsView struct {
	theme   styles.Theme
	sty     *styles.Styles
	reg     *registry.Registry
	catalog *i18n.Catalog
	ctx     context.Context

	mode   hostsMode
	groups registry.Groups
	cursor int
	busy   bool
	form   *huh.Form
	draft  *hostDraft
	width  int
	height int
}

// NewHostsView creates a HostsView operating on reg. Operations run under
// ctx.
func NewHostsView(ctx context.Context, theme styles.Theme, reg *registry.Registry, catalog *i18n.Catalog) HostsView {
	if catalog == nil {
		catalog = i18n.New(i18n.DefaultLanguage)
	}
	return HostsView{
		theme:   theme,
		sty:     styles.NewStyles(theme),
		reg:     reg,
		catalog: catalog,
		ctx:     ctx,
	}
}

// SetTheme swaps the palette.
func (v *HostsView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// SetSize updates the available dimensions for the view.
func (v *HostsView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Capturing reports whether the view wants every key, including the ones
// the app normally handles itself.
func (v HostsView) Capturing() bool {
	return v.mode != hostsBrowse
}

// Load fetches the host list.
func (v HostsView) Load() tea.Cmd {
	return v.run(func(ctx context.Context) (bool, error) {
		_, err := v.reg.List(ctx)
		return false, err
	})
}

func (v HostsView) run(op func(ctx context.Context) (bool, error)) tea.Cmd {
	ctx := v.ctx
	return func() tea.Msg {
		changed, err := op(ctx)
		return HostsChangedMsg{Changed: changed, Err: err}
	}
}

func (v *HostsView) setGroups(g registry.Groups) {
	v.groups = g
	if n := g.Len(); v.cursor >= n {
		v.cursor = max(n-1, 0)
	}
}

// Selected returns the host under the cursor.
func (v HostsView) Selected() (api.Host, bool) {
	all := v.groups.All()
	if v.cursor < 0 || v.cursor >= len(all) {
		return api.Host{}, false
	}
	return all[v.cursor], true
}

// Update handles keys and operation results. The third return value reports
// whether the user wants to leave the view.
func (v HostsView) Update(msg tea.Msg) (HostsView, tea.Cmd, bool) {
	if _, ok := msg.(HostsChangedMsg); ok {
		v.busy = false
		v.setGroups(v.reg.Groups())
		return v, nil, false
	}

	switch v.mode {
	case hostsForm:
		return v.updateForm(msg)
	case hostsConfirm:
		return v.updateConfirm(msg)
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil, false
	}
	km := keys.DefaultKeyMap
	switch {
	case key.Matches(k, km.Escape):
		return v, nil, true
	case key.Matches(k, km.Up):
		v.cursor = max(v.cursor-1, 0)
	case key.Matches(k, km.Down):
		v.cursor = min(v.cursor+1, max(v.groups.Len()-1, 0))
	case v.busy:
		// one operation at a time
	case key.Matches(k, km.New):
		return v.openForm()
	case key.Matches(k, km.Delete):
		if _, ok := v.Selected(); ok {
			v.mode = hostsConfirm
		}
	case key.Matches(k, km.Test):
		if h, ok := v.Selected(); ok {
			v.busy = true
			return v, v.run(func(ctx context.Context) (bool, error) {
				_, err := v.reg.TestConnection(ctx, h.ID)
				return err == nil, err
			}), false
		}
	case key.Matches(k, km.Simulate):
		v.busy = true
		return v, v.run(func(ctx context.Context) (bool, error) {
			err := v.reg.AddSimulated(ctx, "")
			return err == nil, err
		}), false
	case key.Matches(k, km.Refresh):
		v.busy = true
		return v, v.Load(), false
	}
	return v, nil, false
}

func (v HostsView) updateConfirm(msg tea.Msg) (HostsView, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil, false
	}
	switch {
	case key.Matches(km, keys.DefaultKeyMap.Yes):
		v.mode = hostsBrowse
		h, ok := v.Selected()
		if !ok {
			return v, nil, false
		}
		v.busy = true
		return v, v.run(func(ctx context.Context) (bool, error) {
			err := v.reg.Delete(ctx, h.ID, registry.Yes)
			return err == nil, err
		}), false
	case key.Matches(km, keys.DefaultKeyMap.No):
		v.mode = hostsBrowse
	}
	return v, nil, false
}

func (v HostsView) openForm() (HostsView, tea.Cmd, bool) {
	d := &hostDraft{kind: api.HostReal, port: strconv.Itoa(registry.DefaultPort)}

	v.draft = d
	v.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[api.HostType]().
				Title("Host type").
				Options(
					huh.NewOption("Real (SSH)", api.HostReal),
					huh.NewOption("Simulated", api.HostSimulated),
				).
				Value(&d.kind),
			huh.NewInput().
				Title("Name").
				Placeholder("optional").
				Value(&d.name),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("IP address").
				Value(&d.ip).
				Validate(func(s string) error {
					if !registry.ValidIP(strings.TrimSpace(s)) {
						return errors.New(v.catalog.T(i18n.InvalidIP))
					}
					return nil
				}),
			huh.NewInput().
				Title("SSH port").
				Value(&d.port).
				Validate(func(s string) error {
					if s = strings.TrimSpace(s); s == "" {
						return nil
					}
					if n, err := strconv.Atoi(s); err != nil || n < 1 || n > 65535 {
						return errors.New("port must be 1-65535")
					}
					return nil
				}),
			huh.NewInput().
				Title("Username").
				Value(&d.username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New(v.catalog.T(i18n.RequiredFields))
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&d.password),
		).WithHideFunc(d.simulated),
	).
		WithTheme(huh.ThemeBase16()).
		WithShowHelp(true).
		WithWidth(min(max(v.width-4, 30), 60))

	v.mode = hostsForm
	return v, v.form.Init(), false
}

func (v HostsView) updateForm(msg tea.Msg) (HostsView, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, keys.DefaultKeyMap.Escape) {
		v.mode = hostsBrowse
		v.form = nil
		return v, nil, false
	}

	model, cmd := v.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		v.form = f
	}

	switch v.form.State {
	case huh.StateAborted:
		v.mode = hostsBrowse
		v.form = nil
		return v, nil, false
	case huh.StateCompleted:
		v.mode = hostsBrowse
		v.form = nil
		return v.submit()
	}
	return v, cmd, false
}

// submit creates the drafted host. Both host types go through Create so a
// simulated host gets its address and credentials from the registry.
func (v HostsView) submit() (HostsView, tea.Cmd, bool) {
	in, err := v.draft.input()
	if err != nil {
		return v, nil, false
	}
	v.busy = true
	return v, v.run(func(ctx context.Context) (bool, error) {
		_, err := v.reg.Create(ctx, in)
		return err == nil, err
	}), false
}

// View renders the host list, the add form, or the delete prompt.
func (v HostsView) View() string {
	if v.mode == hostsForm && v.form != nil {
		title := v.sty.ModalTitle.Render(" Add host ")
		box := v.sty.ModalBorder.Render(title + "\n\n" + v.form.View())
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, box)
	}

	var lines []string
	header := fmt.Sprintf("%-6s %-20s %-17s %-6s %-12s %s", "ID", "Name", "Address", "Port", "User", "Created")
	lines = append(lines, v.sty.TableHeader.Render(padRight(header, v.width)))

	idx := 0
	section := func(title string, hosts []api.Host) {
		lines = append(lines, v.sty.GroupHeader.Render(
			padRight(fmt.Sprintf("--- %s (%d) ---", title, len(hosts)), v.width)))
		for _, h := range hosts {
			created := "-"
			if !h.CreatedAt.IsZero() {
				created = humanize.Time(h.CreatedAt.Time)
			}
			row := fmt.Sprintf("%-6d %-20s %-17s %-6d %-12s %s",
				h.ID, truncate(h.Name, 20), truncate(h.IP, 17), h.Port, truncate(h.Username, 12), created)
			style := v.sty.TableRow
			if idx == v.cursor {
				style = v.sty.TableRowSel
			}
			lines = append(lines, style.Render(padRight(row, v.width)))
			idx++
		}
	}
	section("Real hosts", v.groups.Real)
	section("Simulated hosts", v.groups.Simulated)

	if v.groups.Len() == 0 {
		lines = append(lines, "", v.sty.CardDim.Render("  No hosts. Press [n] to add one or [s] for a simulated host."))
	}

	lines = append(lines, "", v.footer())
	return strings.Join(lines, "\n")
}

func (v HostsView) footer() string {
	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	dim := lipgloss.NewStyle().Foreground(v.theme.Base04)

	if v.mode == hostsConfirm {
		h, _ := v.Selected()
		return v.sty.NotifyWarning.Render(fmt.Sprintf("  %s (%s)", v.catalog.T(i18n.ConfirmDelete), h.Name)) +
			dim.Render("  ") + keyStyle.Render("[y]") + dim.Render(" delete  ") +
			keyStyle.Render("[n]") + dim.Render(" cancel")
	}
	if v.busy {
		return dim.Render("  Working...")
	}
	hint := func(k, d string) string { return keyStyle.Render("["+k+"]") + dim.Render(" "+d+"  ") }
	return "  " + hint("n", "add") + hint("x", "delete") + hint("t", "test") +
		hint("s", "simulate") + hint("r", "reload") + hint("esc", "back")
}

// padRight pads s with spaces on the right to the given width.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
