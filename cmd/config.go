package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonhe/hostwatch/internal/config"
	hwerrors "github.com/tonhe/hostwatch/internal/errors"
	"github.com/tonhe/hostwatch/internal/i18n"
	"github.com/tonhe/hostwatch/tui/styles"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved settings",
	Long: `Show or change the settings saved in config.toml.

Setters edit the file only; environment variables and flags are not
written back.

Examples:
  hostwatch config path
  hostwatch config show
  hostwatch config server http://10.0.0.5:5000
  hostwatch config interval 10s`,

	// The setters must work on a file that fails validation.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		return cfg.WriteTOML(cmd.OutOrStdout())
	},
}

var configServerCmd = &cobra.Command{
	Use:   "server URL",
	Short: "Set the metrics server URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := strings.TrimRight(strings.TrimSpace(args[0]), "/")
		return updateConfig(cmd.OutOrStdout(), "server", url, func(c *config.Config) {
			c.Server = url
		})
	},
}

var configThemeCmd = &cobra.Command{
	Use:   "theme NAME",
	Short: "Set the default theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if styles.GetThemeByName(name) == nil {
			return hwerrors.New(hwerrors.ErrConfig,
				fmt.Sprintf("unknown theme %q", name),
				"Run 'hostwatch themes' to see available themes")
		}
		return updateConfig(cmd.OutOrStdout(), "theme", name, func(c *config.Config) {
			c.Theme = name
		})
	},
}

var configIntervalCmd = &cobra.Command{
	Use:   "interval DURATION",
	Short: "Set the auto-refresh interval",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := time.ParseDuration(args[0])
		if err != nil || d <= 0 {
			return hwerrors.New(hwerrors.ErrConfig,
				fmt.Sprintf("invalid interval %q", args[0]),
				"Use a positive duration like 5s or 1m")
		}
		return updateConfig(cmd.OutOrStdout(), "poll interval", d.String(), func(c *config.Config) {
			c.PollInterval = d
		})
	},
}

var configLanguageCmd = &cobra.Command{
	Use:   "language LANG",
	Short: "Set the notification language",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang := strings.ToLower(args[0])
		if !i18n.Supported(lang) {
			return hwerrors.New(hwerrors.ErrConfig,
				fmt.Sprintf("unsupported language %q", args[0]),
				"Available: "+strings.Join(i18n.Languages(), ", "))
		}
		return updateConfig(cmd.OutOrStdout(), "language", lang, func(c *config.Config) {
			c.Language = lang
		})
	},
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available color themes",
	Args:  cobra.NoArgs,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, slug := range styles.ListThemes() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", slug, styles.Themes[slug].Name)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd, configShowCmd, configServerCmd,
		configThemeCmd, configIntervalCmd, configLanguageCmd)
	rootCmd.AddCommand(configCmd, themesCmd)
}

// updateConfig loads the file without overrides, applies set, validates and
// saves it.
func updateConfig(out io.Writer, what, value string, set func(*config.Config)) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	c, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	set(c)
	if err := c.Validate(); err != nil {
		return err
	}
	if err := config.SaveConfig(c, path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Default %s set to %q.\n", what, value)
	return nil
}
