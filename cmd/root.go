// Package cmd implements the hostwatch command line. Running hostwatch with
// no subcommand starts the TUI; the subcommands are one-shot operations
// against the same metrics server.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tonhe/hostwatch/internal/config"
)

// Persistent flags
var (
	cfgFile   string
	debugFlag bool
)

// cfg is the merged configuration: file, then environment, then flags.
var cfg *config.Config

// overrides reads HOSTWATCH_* variables and the flags bound below.
var overrides = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "hostwatch",
	Short: "Terminal dashboard for host metrics",
	Long: `hostwatch shows CPU, memory and disk usage for the hosts registered with a
metrics server, refreshing every few seconds.

Run without arguments to open the dashboard. Subcommands manage hosts and
configuration from the shell.

Examples:
  hostwatch
  hostwatch --server http://10.0.0.5:5000 --interval 10s
  hostwatch status -o json
  hostwatch hosts add --name web-1 --ip 10.0.0.21 --user root`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd.Context())
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is <config dir>/config.toml)")
	pf.String("server", "", "metrics server URL")
	pf.String("theme", "", "color theme, see 'hostwatch themes'")
	pf.String("language", "", "notification language (en, zh)")
	pf.String("interval", "", "auto-refresh interval, e.g. 5s")
	pf.BoolVar(&debugFlag, "debug", false, "log debug output")

	_ = overrides.BindPFlag(config.KeyServer, pf.Lookup("server"))
	_ = overrides.BindPFlag(config.KeyTheme, pf.Lookup("theme"))
	_ = overrides.BindPFlag(config.KeyLanguage, pf.Lookup("language"))
	_ = overrides.BindPFlag(config.KeyPollInterval, pf.Lookup("interval"))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// configPath returns --config or the default location.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.GetConfigPath()
}

func loadConfig() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	loaded, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := config.ApplyOverrides(loaded, overrides); err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}
