package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/tonhe/hostwatch/internal/api"
	hwerrors "github.com/tonhe/hostwatch/internal/errors"
	"github.com/tonhe/hostwatch/internal/registry"
)

// interactive reports whether stdin is a terminal we can prompt on.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// huhConfirmer asks with a confirm dialog. Aborting the form counts as no.
var huhConfirmer = registry.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, hwerrors.Wrap(err, hwerrors.ErrValidation, "Couldn't get your input")
	}
	return ok, nil
})

// promptHostInput asks for the fields of a real host that are still empty.
// Fields given on the command line are shown pre-filled.
func promptHostInput(ctx context.Context, in *api.HostInput) error {
	port := ""
	if in.Port > 0 {
		port = strconv.Itoa(in.Port)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("web-1").
				Value(&in.Name),
			huh.NewInput().
				Title("IP address").
				Placeholder("10.0.0.21").
				Value(&in.IP).
				Validate(func(s string) error {
					if !registry.ValidIP(strings.TrimSpace(s)) {
						return errors.New("enter a dotted-quad address")
					}
					return nil
				}),
			huh.NewInput().
				Title("SSH port").
				Placeholder(strconv.Itoa(registry.DefaultPort)).
				Value(&port).
				Validate(validPort),
			huh.NewInput().
				Title("Username").
				Value(&in.Username).
				Validate(required),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&in.Password).
				Validate(required),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return hwerrors.ErrCancelled
		}
		return hwerrors.Wrap(err, hwerrors.ErrValidation, "Couldn't get your input")
	}
	if port != "" {
		in.Port, _ = strconv.Atoi(strings.TrimSpace(port))
	}
	return nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func validPort(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("port must be 1-65535")
	}
	return nil
}
