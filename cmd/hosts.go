package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tonhe/hostwatch/internal/api"
	hwerrors "github.com/tonhe/hostwatch/internal/errors"
	"github.com/tonhe/hostwatch/internal/registry"
	"github.com/tonhe/hostwatch/internal/sshprobe"
)

// Command-specific flags
var (
	hostsListOutput    string
	hostsAddName       string
	hostsAddIP         string
	hostsAddPort       int
	hostsAddUser       string
	hostsAddPassword   string
	hostsAddSimulated  bool
	hostsAddSSHAlias   string
	hostsAddProbe      bool
	hostsAddCredential string
	hostsRemoveYes     bool
	hostsSimulateCount int
	hostsSimulateName  string
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List, add and remove monitored hosts",
}

var hostsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered hosts grouped by type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hostsListCommand(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var hostsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a host with the server",
	Long: `Register a real (SSH) host or a simulated one.

Missing fields of a real host are asked for interactively when stdin is a
terminal. --from-ssh-config fills address, port and user from ~/.ssh/config.
--credential takes username, password and port from a saved credential
(see 'hostwatch creds'). --probe performs an SSH login from this machine
before registering.

Examples:
  hostwatch hosts add --name web-1 --ip 10.0.0.21 --user root
  hostwatch hosts add --from-ssh-config web --probe
  hostwatch hosts add --ip 10.0.0.22 --credential lab
  hostwatch hosts add --simulated --name lab-1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hostsAddCommand(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var hostsRemoveCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm", "delete"},
	Short:   "Delete a host and its monitoring data",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return hostsRemoveCommand(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
	},
}

var hostsTestCmd = &cobra.Command{
	Use:   "test ID",
	Short: "Ask the server to test its connection to a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return hostsTestCommand(cmd.Context(), cmd.ErrOrStderr(), args[0])
	},
}

var hostsCollectCmd = &cobra.Command{
	Use:   "collect ID",
	Short: "Ask the server to collect metrics for a host now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return hostsCollectCommand(cmd.Context(), cmd.ErrOrStderr(), args[0])
	},
}

var hostsSimulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Add simulated hosts",
	Long: `Ask the server to create simulated hosts that report generated metrics.

Examples:
  hostwatch hosts simulate
  hostwatch hosts simulate --name lab-1
  hostwatch hosts simulate --count 5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return hostsSimulateCommand(cmd.Context(), cmd.ErrOrStderr())
	},
}

func init() {
	hostsListCmd.Flags().StringVarP(&hostsListOutput, "output", "o", formatText, "output format: text, json or yaml")

	f := hostsAddCmd.Flags()
	f.StringVar(&hostsAddName, "name", "", "display name")
	f.StringVar(&hostsAddIP, "ip", "", "IPv4 address")
	f.IntVar(&hostsAddPort, "port", 0, "SSH port (default 22)")
	f.StringVar(&hostsAddUser, "user", "", "SSH username")
	f.StringVar(&hostsAddPassword, "password", "", "SSH password (prompted when omitted)")
	f.BoolVar(&hostsAddSimulated, "simulated", false, "add a simulated host instead of a real one")
	f.StringVar(&hostsAddSSHAlias, "from-ssh-config", "", "take address, port and user from this ~/.ssh/config alias")
	f.BoolVar(&hostsAddProbe, "probe", false, "log in over SSH from this machine before registering")
	f.StringVar(&hostsAddCredential, "credential", "", "use a login saved with 'hostwatch creds add'")
	hostsAddCmd.MarkFlagsMutuallyExclusive("simulated", "from-ssh-config")
	hostsAddCmd.MarkFlagsMutuallyExclusive("simulated", "credential")
	hostsAddCmd.MarkFlagsMutuallyExclusive("simulated", "probe")

	hostsRemoveCmd.Flags().BoolVarP(&hostsRemoveYes, "yes", "y", false, "don't ask for confirmation")

	hostsSimulateCmd.Flags().IntVar(&hostsSimulateCount, "count", 1, "number of simulated hosts to add")
	hostsSimulateCmd.Flags().StringVar(&hostsSimulateName, "name", "", "name for a single simulated host")

	hostsCmd.AddCommand(hostsListCmd, hostsAddCmd, hostsRemoveCmd, hostsTestCmd, hostsCollectCmd, hostsSimulateCmd)
	rootCmd.AddCommand(hostsCmd)
}

func parseHostID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, hwerrors.New(hwerrors.ErrValidation,
			fmt.Sprintf("invalid host id %q", s),
			"Run 'hostwatch hosts list' to see host ids")
	}
	return id, nil
}

func hostsListCommand(ctx context.Context, out, errOut io.Writer) error {
	format, err := parseFormat(hostsListOutput)
	if err != nil {
		return err
	}
	a, err := newCLIApp(errOut)
	if err != nil {
		return err
	}
	groups, err := a.registry().List(ctx)
	if err != nil {
		return reported(err)
	}
	return writeHosts(out, format, groups)
}

type hostsReport struct {
	Real      []api.Host `json:"real" yaml:"real"`
	Simulated []api.Host `json:"simulated" yaml:"simulated"`
}

func writeHosts(w io.Writer, format string, g registry.Groups) error {
	report := hostsReport{Real: g.Real, Simulated: g.Simulated}
	if report.Real == nil {
		report.Real = []api.Host{}
	}
	if report.Simulated == nil {
		report.Simulated = []api.Host{}
	}
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(report)
	}

	section := lipgloss.NewStyle().Bold(true)
	writeGroup := func(title string, hosts []api.Host) {
		fmt.Fprintf(w, "%s (%d)\n", section.Render(title), len(hosts))
		if len(hosts) == 0 {
			fmt.Fprintln(w, labelStyle.Render("  none"))
			return
		}
		for _, h := range hosts {
			added := ""
			if !h.CreatedAt.IsZero() {
				added = labelStyle.Render("added " + humanize.Time(h.CreatedAt.Time))
			}
			fmt.Fprintf(w, "  %4d  %-20s %-15s %5d  %-12s %s\n",
				h.ID, h.Name, h.IP, h.Port, h.Username, added)
		}
	}
	writeGroup("Real hosts", g.Real)
	fmt.Fprintln(w)
	writeGroup("Simulated hosts", g.Simulated)
	return nil
}

func hostsAddCommand(ctx context.Context, out, errOut io.Writer) error {
	in := api.HostInput{
		Name:     hostsAddName,
		IP:       hostsAddIP,
		Port:     hostsAddPort,
		Username: hostsAddUser,
		Password: hostsAddPassword,
		HostType: api.HostReal,
	}

	a, err := newCLIApp(errOut)
	if err != nil {
		return err
	}
	reg := a.registry()

	if hostsAddSimulated {
		in.HostType = api.HostSimulated
		if strings.TrimSpace(in.Name) == "" {
			in.Name = reg.DefaultSimulatedName()
		}
		if _, err := reg.Create(ctx, in); err != nil {
			return reported(err)
		}
		return nil
	}

	if hostsAddSSHAlias != "" {
		entry, err := sshprobe.Resolve(hostsAddSSHAlias)
		if err != nil {
			return err
		}
		applySSHEntry(&in, entry)
	}

	if hostsAddCredential != "" {
		store, err := openVault(ctx)
		if err != nil {
			return err
		}
		c, err := store.Get(hostsAddCredential)
		if err != nil {
			return err
		}
		c.Apply(&in)
	}

	if missingRealFields(in) && interactive() {
		if err := promptHostInput(ctx, &in); err != nil {
			if hwerrors.Is(err, hwerrors.ErrCancelled) {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
			return err
		}
	}

	if hostsAddProbe {
		prepared, err := reg.Prepare(in)
		if err != nil {
			return err
		}
		res, err := sshprobe.Probe(ctx, sshprobe.Target{
			Host:     prepared.IP,
			Port:     prepared.Port,
			User:     prepared.Username,
			Password: prepared.Password,
		}, cfg.RequestTimeout)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s  %s  %s  %s\n",
			onlineStyle.Render("✓"), res.Address, res.ServerVersion, res.HostKey,
			labelStyle.Render(res.Elapsed.Round(time.Millisecond).String()))
	}

	res, err := reg.Create(ctx, in)
	if err != nil {
		return reported(err)
	}
	fmt.Fprintf(out, "id %d\n", res.ID)
	return nil
}

// applySSHEntry fills fields not given as flags from an ssh config entry.
func applySSHEntry(in *api.HostInput, e sshprobe.Entry) {
	if in.Name == "" {
		in.Name = e.Alias
	}
	if in.IP == "" {
		in.IP = e.Hostname
	}
	if in.Port == 0 {
		in.Port = e.Port
	}
	if in.Username == "" {
		in.Username = e.User
	}
}

func missingRealFields(in api.HostInput) bool {
	return strings.TrimSpace(in.IP) == "" ||
		strings.TrimSpace(in.Username) == "" ||
		in.Password == ""
}

func hostsRemoveCommand(ctx context.Context, out, errOut io.Writer, arg string) error {
	id, err := parseHostID(arg)
	if err != nil {
		return err
	}
	confirm := registry.Yes
	if !hostsRemoveYes {
		if !interactive() {
			return hwerrors.New(hwerrors.ErrValidation,
				"refusing to delete without confirmation",
				"Pass --yes when running non-interactively")
		}
		confirm = huhConfirmer
	}

	a, err := newCLIApp(errOut)
	if err != nil {
		return err
	}
	if err := a.registry().Delete(ctx, id, confirm); err != nil {
		if hwerrors.Is(err, hwerrors.ErrCancelled) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		return reported(err)
	}
	return nil
}

func hostsTestCommand(ctx context.Context, errOut io.Writer, arg string) error {
	id, err := parseHostID(arg)
	if err != nil {
		return err
	}
	a, err := newCLIApp(errOut)
	if err != nil {
		return err
	}
	if _, err := a.registry().TestConnection(ctx, id); err != nil {
		return reported(err)
	}
	return nil
}

func hostsCollectCommand(ctx context.Context, errOut io.Writer, arg string) error {
	id, err := parseHostID(arg)
	if err != nil {
		return err
	}
	a, err := newCLIApp(errOut)
	if err != nil {
		return err
	}
	p := a.poller()
	defer p.Close()
	if err := p.CollectNow(ctx, id); err != nil {
		return reported(err)
	}
	return nil
}

func hostsSimulateCommand(ctx context.Context, errOut io.Writer) error {
	a, err := newCLIApp(errOut)
	if err != nil {
		return err
	}
	reg := a.registry()
	if hostsSimulateCount == 1 {
		err = reg.AddSimulated(ctx, hostsSimulateName)
	} else {
		err = reg.AddSimulatedBatch(ctx, hostsSimulateCount)
	}
	return reported(err)
}
