// Package config loads the hotkeyd host configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
)

const (
	// DefaultHoldMs matches the long-press delay used for the Windows key gesture.
	DefaultHoldMs = 900

	// DefaultLaunchQueueSize bounds pending launch-or-activate requests.
	DefaultLaunchQueueSize = 16

	// DefaultConfigDebounce coalesces bursts of settings file writes.
	DefaultConfigDebounce = 250 * time.Millisecond

	// KeyboardManagerModuleID is the id of the built-in run-program module.
	// Configured modules may not use it.
	KeyboardManagerModuleID = "Keyboard Manager"

	maxConfigFileBytes int64 = 1 << 20
)

// ErrReservedModuleID is returned by Validate when a module claims a built-in id.
var ErrReservedModuleID = errors.New("module id is reserved")

// Config is the hotkeyd host configuration.
type Config struct {
	LogLevel        string         `yaml:"log_level"`
	LogFile         string         `yaml:"log_file,omitempty"`
	SettingsDir     string         `yaml:"settings_dir,omitempty"`
	LaunchQueueSize int            `yaml:"launch_queue_size"`
	ConfigDebounce  time.Duration  `yaml:"config_debounce"`
	KeyboardManager bool           `yaml:"keyboard_manager"`
	Modules         []ModuleConfig `yaml:"modules,omitempty"`
}

// ModuleConfig declares a module whose hotkeys run commands.
type ModuleConfig struct {
	ID                  string          `yaml:"id"`
	Enabled             bool            `yaml:"enabled"`
	Hotkeys             []HotkeyCommand `yaml:"hotkeys,omitempty"`
	ExtendedHotkey      *HotkeyCommand  `yaml:"extended_hotkey,omitempty"`
	TrackHeldWinKey     bool            `yaml:"track_held_win_key"`
	LegacyHeldModifiers bool            `yaml:"legacy_held_modifiers"`
	HoldMs              int             `yaml:"hold_ms"`
	HoldCommand         string          `yaml:"hold_command,omitempty"`
}

// HotkeyCommand binds a textual hotkey such as "win+shift+s" to a command.
// Command uses the run-program target format: path<|||>args<|||>dir.
type HotkeyCommand struct {
	Keys    string `yaml:"keys"`
	Command string `yaml:"command"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:        "info",
		LaunchQueueSize: DefaultLaunchQueueSize,
		ConfigDebounce:  DefaultConfigDebounce,
		KeyboardManager: true,
	}
}

// Load reads path over the defaults. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("stat config: %w", err)
	}
	if info.Size() > maxConfigFileBytes {
		return cfg, fmt.Errorf("config file %s too large (%d bytes)", path, info.Size())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(path string, cfg Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LaunchQueueSize <= 0 {
		c.LaunchQueueSize = DefaultLaunchQueueSize
	}
	if c.ConfigDebounce <= 0 {
		c.ConfigDebounce = DefaultConfigDebounce
	}
	for i := range c.Modules {
		if c.Modules[i].HoldMs <= 0 {
			c.Modules[i].HoldMs = DefaultHoldMs
		}
	}
}

// Validate checks log level, module ids and every hotkey string.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	seen := make(map[string]bool, len(c.Modules))
	for i, m := range c.Modules {
		if strings.TrimSpace(m.ID) == "" {
			return fmt.Errorf("modules[%d]: id is required", i)
		}
		if IsReservedModuleID(m.ID) {
			return fmt.Errorf("modules[%d]: %w: %q", i, ErrReservedModuleID, m.ID)
		}
		if seen[m.ID] {
			return fmt.Errorf("modules[%d]: duplicate id %q", i, m.ID)
		}
		seen[m.ID] = true

		for j, hk := range m.Hotkeys {
			if _, err := chord.ParseHotkey(hk.Keys); err != nil {
				return fmt.Errorf("module %s hotkeys[%d]: %w", m.ID, j, err)
			}
		}
		if m.ExtendedHotkey != nil {
			if _, err := chord.ParseExtendedHotkey(m.ExtendedHotkey.Keys); err != nil {
				return fmt.Errorf("module %s extended_hotkey: %w", m.ID, err)
			}
		}
	}
	return nil
}

// IsReservedModuleID reports whether id names a built-in module.
func IsReservedModuleID(id string) bool {
	return strings.EqualFold(strings.TrimSpace(id), KeyboardManagerModuleID)
}

// HoldDuration returns the module's hold gesture delay.
func (m ModuleConfig) HoldDuration() time.Duration {
	if m.HoldMs <= 0 {
		return DefaultHoldMs * time.Millisecond
	}
	return time.Duration(m.HoldMs) * time.Millisecond
}
