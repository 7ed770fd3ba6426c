package infra

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

const (
	appDirName = "hotkeyd"

	// SettingsFileName holds the active profile name.
	SettingsFileName = "settings.json"

	// HostConfigFileName is the YAML host configuration inside the app dir.
	HostConfigFileName = "hotkeyd.yaml"
)

// Paths holds the per-user locations hotkeyd reads and writes.
type Paths struct {
	AppDir      string // Host config and log files
	SettingsDir string // Keyboard manager settings.json and profile documents
	HostConfig  string // Full path to hotkeyd.yaml
}

// DetectPaths returns the default locations for the current platform.
func DetectPaths() *Paths {
	if runtime.GOOS == "windows" {
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(GetRealUserHome(), "AppData", "Local")
		}
		app := filepath.Join(base, appDirName)
		return &Paths{
			AppDir:      app,
			SettingsDir: filepath.Join(app, "Keyboard Manager"),
			HostConfig:  filepath.Join(app, HostConfigFileName),
		}
	}

	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(GetRealUserHome(), ".config")
	}
	app := filepath.Join(base, appDirName)
	return &Paths{
		AppDir:      app,
		SettingsDir: filepath.Join(app, "keyboard-manager"),
		HostConfig:  filepath.Join(app, HostConfigFileName),
	}
}

// GetRealUserHome returns the real user's home directory, even when running under sudo.
// Under sudo, os.UserHomeDir() returns root's home, so we use SUDO_USER to find the real user.
func GetRealUserHome() string {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		if u, err := user.Lookup(sudoUser); err == nil {
			return u.HomeDir
		}
	}
	home, _ := os.UserHomeDir()
	return home
}
