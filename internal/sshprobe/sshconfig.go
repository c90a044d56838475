// Package sshprobe resolves ~/.ssh/config aliases and performs a local SSH
// pre-flight check before a real host is registered with the server.
package sshprobe

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"

	hwerrors "github.com/tonhe/hostwatch/internal/errors"
)

// Entry is the connection settings an alias resolves to.
type Entry struct {
	Alias    string
	Hostname string
	User     string
	Port     int
}

// DefaultConfigPath returns ~/.ssh/config.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ssh", "config")
}

// Resolve looks alias up in ~/.ssh/config.
func Resolve(alias string) (Entry, error) {
	return ResolveFile(DefaultConfigPath(), alias)
}

// ResolveFile looks alias up in the ssh config at path. HostName falls back
// to the alias and Port to 22, as ssh does.
func ResolveFile(path, alias string) (Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, hwerrors.Wrap(err, hwerrors.ErrValidation, "open ssh config")
	}
	defer f.Close()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		return Entry{}, hwerrors.Wrap(err, hwerrors.ErrValidation, "parse ssh config")
	}
	if !declared(cfg, alias) {
		return Entry{}, hwerrors.New(hwerrors.ErrValidation,
			fmt.Sprintf("host %q not found in %s", alias, path),
			"Check the Host entries in your ssh config")
	}

	entry := Entry{Alias: alias, Hostname: alias, Port: 22}
	if v, _ := cfg.Get(alias, "HostName"); v != "" {
		entry.Hostname = v
	}
	if v, _ := cfg.Get(alias, "User"); v != "" {
		entry.User = v
	}
	if v, _ := cfg.Get(alias, "Port"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Entry{}, hwerrors.Wrap(err, hwerrors.ErrValidation, "invalid Port for "+alias)
		}
		entry.Port = port
	}
	return entry, nil
}

// declared reports whether a non-wildcard Host pattern names alias.
func declared(cfg *ssh_config.Config, alias string) bool {
	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			p := pattern.String()
			if strings.ContainsAny(p, "*?") {
				continue
			}
			if p == alias {
				return true
			}
		}
	}
	return false
}
