package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tonhe/hostwatch/internal/dashboard"
	hwerrors "github.com/tonhe/hostwatch/internal/errors"
)

// Output formats accepted by -o.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var statusOutput string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print host counts and usage once",
	Long: `Fetch the host list and the latest metrics once and print the summary
counts followed by one line per host.

Examples:
  hostwatch status
  hostwatch status -o json
  hostwatch status -o yaml --server http://10.0.0.5:5000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", formatText, "output format: text, json or yaml")
	rootCmd.AddCommand(statusCmd)
}

// statusReport is the machine-readable form of a dashboard view.
type statusReport struct {
	Server string           `json:"server" yaml:"server"`
	Counts dashboard.Counts `json:"counts" yaml:"counts"`
	Hosts  []hostStatus     `json:"hosts" yaml:"hosts"`
}

type hostStatus struct {
	ID          int64      `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	IP          string     `json:"ip" yaml:"ip"`
	Type        string     `json:"host_type" yaml:"host_type"`
	Online      bool       `json:"online" yaml:"online"`
	DataSource  string     `json:"data_source" yaml:"data_source"`
	CPU         float64    `json:"cpu_usage" yaml:"cpu_usage"`
	Memory      float64    `json:"memory_usage" yaml:"memory_usage"`
	Disk        float64    `json:"disk_usage" yaml:"disk_usage"`
	MemoryUsed  int64      `json:"memory_used_mb" yaml:"memory_used_mb"`
	MemoryTotal int64      `json:"memory_total_mb" yaml:"memory_total_mb"`
	Load        [3]float64 `json:"load_avg" yaml:"load_avg"`
	LastUpdate  string     `json:"last_update,omitempty" yaml:"last_update,omitempty"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

func statusCommand(ctx context.Context, out, errOut io.Writer) error {
	format, err := parseFormat(statusOutput)
	if err != nil {
		return err
	}
	a, err := newCLIApp(errOut)
	if err != nil {
		return err
	}
	p := a.poller()
	defer p.Close()

	if err := p.Refresh(ctx); err != nil {
		return reported(err)
	}
	return writeStatus(out, format, cfg.Server, p.Snapshot().View, time.Now())
}

func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	}
	return "", hwerrors.New(hwerrors.ErrValidation,
		fmt.Sprintf("unknown output format %q", s),
		"Use one of: text, json, yaml")
}

func newStatusReport(server string, v dashboard.View) statusReport {
	r := statusReport{Server: server, Counts: v.Counts, Hosts: make([]hostStatus, 0, len(v.Cards))}
	for _, c := range v.Cards {
		hs := hostStatus{
			ID:          c.Host.ID,
			Name:        c.Host.Name,
			IP:          c.Host.IP,
			Type:        string(c.Host.HostType),
			Online:      c.Online,
			DataSource:  c.DataSource,
			Error:       c.Error,
			CPU:         c.CPU.Value,
			Memory:      c.Memory.Value,
			Disk:        c.Disk.Value,
			MemoryUsed:  c.MemoryUsed,
			MemoryTotal: c.MemoryTotal,
			Load:        c.Load,
		}
		if !c.LastUpdate.IsZero() {
			hs.LastUpdate = c.LastUpdate.UTC().Format(time.RFC3339)
		}
		r.Hosts = append(r.Hosts, hs)
	}
	return r
}

func writeStatus(w io.Writer, format, server string, v dashboard.View, now time.Time) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newStatusReport(server, v))
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(newStatusReport(server, v))
	}
	writeStatusText(w, server, v, now)
	return nil
}

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#839496"))
	nameStyle    = lipgloss.NewStyle().Bold(true)
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#859900"))
	offlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc322f"))
	simStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c71c4"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#b58900"))
)

func levelStyle(l dashboard.Level) lipgloss.Style {
	switch l {
	case dashboard.Danger:
		return offlineStyle
	case dashboard.Warning:
		return warnStyle
	}
	return onlineStyle
}

func writeStatusText(w io.Writer, server string, v dashboard.View, now time.Time) {
	c := v.Counts
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("server"), server)
	fmt.Fprintf(w, "%s %d  %s %s  %s %s  %s %s\n\n",
		labelStyle.Render("hosts"), c.Total,
		labelStyle.Render("online"), onlineStyle.Render(fmt.Sprint(c.Online)),
		labelStyle.Render("offline"), offlineStyle.Render(fmt.Sprint(c.Offline)),
		labelStyle.Render("simulated"), simStyle.Render(fmt.Sprint(c.Simulated)),
	)
	if v.Empty() {
		fmt.Fprintln(w, "No hosts registered. Add one with 'hostwatch hosts add'.")
		return
	}

	nameWidth := 4
	for _, card := range v.Cards {
		if n := len(card.Host.Name); n > nameWidth {
			nameWidth = n
		}
	}
	for _, card := range v.Cards {
		fmt.Fprintln(w, statusLine(card, nameWidth, now))
	}
}

func statusLine(c dashboard.Card, nameWidth int, now time.Time) string {
	symbol := onlineStyle.Render("●")
	switch {
	case c.Simulated:
		symbol = simStyle.Render("◆")
	case !c.Online:
		symbol = offlineStyle.Render("✗")
	}
	head := fmt.Sprintf("%s %s  %-15s", symbol,
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, c.Host.Name)), c.Host.IP)

	if !c.Online {
		return head + "  " + offlineStyle.Render(c.Error)
	}

	gauge := func(label string, g dashboard.Gauge) string {
		return labelStyle.Render(label) + " " + levelStyle(g.Level).Render(fmt.Sprintf("%5.1f%%", g.Value))
	}
	parts := []string{
		head,
		gauge("cpu", c.CPU),
		gauge("mem", c.Memory),
		gauge("disk", c.Disk),
		labelStyle.Render("load") + fmt.Sprintf(" %.2f %.2f %.2f", c.Load[0], c.Load[1], c.Load[2]),
	}
	if c.MemoryTotal > 0 {
		parts = append(parts, fmt.Sprintf("%s/%s",
			humanize.IBytes(uint64(c.MemoryUsed)*humanize.MiByte),
			humanize.IBytes(uint64(c.MemoryTotal)*humanize.MiByte)))
	}
	if !c.LastUpdate.IsZero() {
		parts = append(parts, labelStyle.Render("updated "+humanize.RelTime(c.LastUpdate, now, "ago", "from now")))
	}
	if c.Badge != "" {
		parts = append(parts, simStyle.Render("["+c.Badge+"]"))
	}
	return strings.Join(parts, "  ")
}
