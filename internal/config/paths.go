package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "hostwatch"

// File names inside the config and data directories.
const (
	configFile = "config.toml"
	logFile    = "hostwatch.log"
	vaultFile  = "credentials.enc"
)

// baseDir resolves one of the per-user roots. On Windows envWin is read,
// falling back to %USERPROFILE% joined with winRel. Elsewhere envXDG is read,
// falling back to $HOME joined with homeRel.
func baseDir(envWin string, winRel []string, envXDG string, homeRel []string) (string, error) {
	if runtime.GOOS == "windows" {
		if base := os.Getenv(envWin); base != "" {
			return base, nil
		}
		return filepath.Join(append([]string{os.Getenv("USERPROFILE")}, winRel...)...), nil
	}
	if base := os.Getenv(envXDG); base != "" {
		return base, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, homeRel...)...), nil
}

// GetConfigDir is $XDG_CONFIG_HOME/hostwatch, ~/.config/hostwatch, or
// %APPDATA%\hostwatch on Windows.
func GetConfigDir() (string, error) {
	base, err := baseDir("APPDATA", []string{"AppData", "Roaming"}, "XDG_CONFIG_HOME", []string{".config"})
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// GetDataDir is $XDG_DATA_HOME/hostwatch, ~/.local/share/hostwatch, or
// %LOCALAPPDATA%\hostwatch on Windows. It holds files the program writes
// itself: the dashboard log and the credential vault.
func GetDataDir() (string, error) {
	base, err := baseDir("LOCALAPPDATA", []string{"AppData", "Local"}, "XDG_DATA_HOME", []string{".local", "share"})
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

func inDir(dir func() (string, error), name string) (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, name), nil
}

// GetConfigPath is the default --config location.
func GetConfigPath() (string, error) {
	return inDir(GetConfigDir, configFile)
}

// GetLogPath is where the dashboard writes its JSON log. The CLI logs to
// stderr and never opens it.
func GetLogPath() (string, error) {
	return inDir(GetDataDir, logFile)
}

// GetVaultPath is the encrypted credential file used by 'hostwatch creds'
// and 'hosts add --credential'. It sits next to the log so removing the
// data directory forgets saved passwords too.
func GetVaultPath() (string, error) {
	return inDir(GetDataDir, vaultFile)
}

// EnsureDirs creates the config and data directories, readable only by the
// current user.
func EnsureDirs() error {
	for _, dir := range []func() (string, error){GetConfigDir, GetDataDir} {
		d, err := dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
