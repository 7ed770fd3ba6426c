package module

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/config"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/runprogram"
)

// ConfiguredModule is a module declared in the host configuration. Its
// hotkeys launch or activate the configured commands.
type ConfiguredModule struct {
	id      domain.ModuleID
	enabled bool

	hotkeys  []domain.HotkeyKey
	commands []domain.RunProgramSpec

	extended        domain.ExtendedHotkey
	hasExtended     bool
	extendedCommand domain.RunProgramSpec

	trackHeld   bool
	legacyHeld  bool
	hold        time.Duration
	holdCommand domain.RunProgramSpec

	launcher runprogram.Launcher
	logger   *zap.Logger
}

// NewConfiguredModule builds a module from its configuration.
func NewConfiguredModule(cfg config.ModuleConfig, launcher runprogram.Launcher, logger *zap.Logger) (*ConfiguredModule, error) {
	m := &ConfiguredModule{
		id:         domain.ModuleID(cfg.ID),
		enabled:    cfg.Enabled,
		trackHeld:  cfg.TrackHeldWinKey,
		legacyHeld: cfg.LegacyHeldModifiers,
		hold:       cfg.HoldDuration(),
		launcher:   launcher,
		logger:     logger.With(zap.String("module", cfg.ID)),
	}

	for i, hc := range cfg.Hotkeys {
		hk, err := chord.ParseHotkey(hc.Keys)
		if err != nil {
			return nil, fmt.Errorf("module %s hotkeys[%d]: %w", cfg.ID, i, err)
		}
		m.hotkeys = append(m.hotkeys, hk)
		m.commands = append(m.commands, commandSpec(hc.Command))
	}

	if cfg.ExtendedHotkey != nil {
		ext, err := chord.ParseExtendedHotkey(cfg.ExtendedHotkey.Keys)
		if err != nil {
			return nil, fmt.Errorf("module %s extended_hotkey: %w", cfg.ID, err)
		}
		m.extended = ext
		m.hasExtended = true
		m.extendedCommand = commandSpec(cfg.ExtendedHotkey.Command)
	}

	m.holdCommand = commandSpec(cfg.HoldCommand)
	return m, nil
}

func commandSpec(command string) domain.RunProgramSpec {
	path, args, dir := chord.SplitTarget(command)
	return domain.RunProgramSpec{Path: path, Args: args, Dir: dir}
}

func (m *ConfiguredModule) ID() domain.ModuleID { return m.id }

func (m *ConfiguredModule) Hotkeys() []domain.HotkeyKey { return m.hotkeys }

func (m *ConfiguredModule) ExtendedHotkey() (domain.ExtendedHotkey, bool) {
	return m.extended, m.hasExtended
}

func (m *ConfiguredModule) IsEnabled() bool { return m.enabled }

func (m *ConfiguredModule) HoldDuration() time.Duration { return m.hold }

func (m *ConfiguredModule) TracksHeldWinKey() bool { return m.trackHeld }

// TracksLegacyHeldModifiers opts into the left Ctrl and left Shift hold gestures.
func (m *ConfiguredModule) TracksLegacyHeldModifiers() bool { return m.legacyHeld }

// OnHotkey launches the command bound to hotkey index. Hotkeys without a
// command pass through.
func (m *ConfiguredModule) OnHotkey(index int) bool {
	if index < 0 || index >= len(m.commands) {
		return false
	}
	spec := m.commands[index]
	if spec.Path == "" {
		return false
	}
	m.logger.Debug("hotkey invoked", zap.Int("index", index))
	m.launcher.Launch(spec)
	return true
}

// OnExtendedHotkey launches the extended command, or the hold command when
// no extended command is set.
func (m *ConfiguredModule) OnExtendedHotkey() {
	spec := m.extendedCommand
	if spec.Path == "" {
		spec = m.holdCommand
	}
	if spec.Path == "" {
		return
	}
	m.logger.Debug("extended hotkey invoked")
	m.launcher.Launch(spec)
}

// Ensure ConfiguredModule implements domain.Module.
var (
	_ domain.Module           = (*ConfiguredModule)(nil)
	_ domain.LegacyHoldModule = (*ConfiguredModule)(nil)
)
