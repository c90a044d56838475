package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tonhe/hostwatch/internal/config"
	hwerrors "github.com/tonhe/hostwatch/internal/errors"
	"github.com/tonhe/hostwatch/internal/vault"
)

var (
	credsListOutput  string
	credsAddUser     string
	credsAddPassword string
	credsAddPort     int
)

var credsCmd = &cobra.Command{
	Use:   "creds",
	Short: "Manage saved SSH credentials",
	Long: `Saved credentials live in an encrypted vault in the data directory. The
passphrase is read from HOSTWATCH_VAULT_PASSPHRASE or asked for. A vault
created with an empty passphrase opens without asking.

Use a saved credential with 'hostwatch hosts add --credential NAME'.`,

	// The vault does not need the server configuration.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var credsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved credentials without passwords",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(credsListOutput)
		if err != nil {
			return err
		}
		store, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		return writeCreds(cmd.OutOrStdout(), format, store.List())
	},
}

var credsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Save an SSH login under NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := vault.Credential{
			Name:     args[0],
			Username: credsAddUser,
			Password: credsAddPassword,
			Port:     credsAddPort,
		}
		if (c.Username == "" || c.Password == "") && interactive() {
			if err := promptCredential(cmd.Context(), &c); err != nil {
				if hwerrors.Is(err, hwerrors.ErrCancelled) {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
				return err
			}
		}
		store, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		if err := store.Add(c); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Credential %q saved.\n", c.Name)
		return nil
	},
}

var credsRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm"},
	Short:   "Delete a saved credential",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openVault(cmd.Context())
		if err != nil {
			return err
		}
		if err := store.Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Credential %q removed.\n", args[0])
		return nil
	},
}

func init() {
	credsListCmd.Flags().StringVarP(&credsListOutput, "output", "o", formatText, "output format: text, json or yaml")

	f := credsAddCmd.Flags()
	f.StringVar(&credsAddUser, "user", "", "SSH username")
	f.StringVar(&credsAddPassword, "password", "", "SSH password (prompted when omitted)")
	f.IntVar(&credsAddPort, "port", 0, "SSH port to use with this login")

	credsCmd.AddCommand(credsListCmd, credsAddCmd, credsRemoveCmd)
	rootCmd.AddCommand(credsCmd)
}

// openVault opens the vault with an empty passphrase first, then the
// environment variable, then a prompt.
func openVault(ctx context.Context) (*vault.Store, error) {
	if err := config.EnsureDirs(); err != nil {
		return nil, err
	}
	path, err := config.GetVaultPath()
	if err != nil {
		return nil, err
	}

	if pass, ok := os.LookupEnv(vault.PassphraseEnv); ok {
		return vault.Open(path, []byte(pass))
	}
	store, err := vault.Open(path, nil)
	if !errors.Is(err, vault.ErrLocked) {
		return store, err
	}
	if !interactive() {
		return nil, err
	}

	var pass string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Vault passphrase").
			EchoMode(huh.EchoModePassword).
			Value(&pass),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, hwerrors.ErrCancelled
		}
		return nil, err
	}
	return vault.Open(path, []byte(pass))
}

func promptCredential(ctx context.Context, c *vault.Credential) error {
	port := ""
	if c.Port > 0 {
		port = strconv.Itoa(c.Port)
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Username").
			Value(&c.Username).
			Validate(required),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&c.Password).
			Validate(required),
		huh.NewInput().
			Title("SSH port").
			Placeholder("optional").
			Value(&port).
			Validate(validPort),
	))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return hwerrors.ErrCancelled
		}
		return hwerrors.Wrap(err, hwerrors.ErrValidation, "Couldn't get your input")
	}
	if p := strings.TrimSpace(port); p != "" {
		c.Port, _ = strconv.Atoi(p)
	}
	return nil
}

func writeCreds(w io.Writer, format string, list []vault.Summary) error {
	if list == nil {
		list = []vault.Summary{}
	}
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(w, "No saved credentials.")
		return nil
	}
	for _, s := range list {
		port := "-"
		if s.Port > 0 {
			port = strconv.Itoa(s.Port)
		}
		fmt.Fprintf(w, "%-20s %-16s %5s  %s\n",
			nameStyle.Render(s.Name), s.Username, port,
			labelStyle.Render("saved "+humanize.Time(s.AddedAt)))
	}
	return nil
}
