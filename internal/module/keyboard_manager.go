package module

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/config"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/runprogram"
)

// KeyboardManagerID is the module id owning the run-program chords.
const KeyboardManagerID = domain.ModuleID(config.KeyboardManagerModuleID)

// KeyboardManagerModule registers every run-program chord as a hotkey that
// swallows the keystroke. Launching happens in the run-program matcher; the
// hotkey only stops the chord from reaching the foreground application.
type KeyboardManagerModule struct {
	mu      sync.RWMutex
	specs   []domain.RunProgramSpec
	hotkeys []domain.HotkeyKey
	enabled bool

	config domain.ConfigReader
	logger *zap.Logger
}

// NewKeyboardManagerModule creates the module. Call Reload before binding.
func NewKeyboardManagerModule(config domain.ConfigReader, logger *zap.Logger) *KeyboardManagerModule {
	return &KeyboardManagerModule{
		enabled: true,
		config:  config,
		logger:  logger.With(zap.String("module", string(KeyboardManagerID))),
	}
}

// Reload re-reads the active profile. Without an active profile the
// module declares no hotkeys.
func (m *KeyboardManagerModule) Reload() error {
	profile, specs, skipped, err := runprogram.LoadSpecs(m.config)
	if err != nil && !errors.Is(err, domain.ErrNoActiveProfile) {
		return err
	}

	hotkeys := make([]domain.HotkeyKey, 0, len(specs))
	seen := make(map[domain.HotkeyKey]bool, len(specs))
	for _, spec := range specs {
		hk := spec.HotkeyKey()
		if seen[hk] {
			continue
		}
		seen[hk] = true
		hotkeys = append(hotkeys, hk)
	}

	m.mu.Lock()
	m.specs = specs
	m.hotkeys = hotkeys
	m.mu.Unlock()

	m.logger.Debug("run-program chords reloaded",
		zap.String("profile", profile),
		zap.Int("hotkeys", len(hotkeys)),
		zap.Int("skipped", len(skipped)))
	return nil
}

// Specs returns the parsed run-program specs of the last Reload.
func (m *KeyboardManagerModule) Specs() []domain.RunProgramSpec {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.RunProgramSpec, len(m.specs))
	copy(out, m.specs)
	return out
}

// SetEnabled turns the module on or off. Takes effect on the next bind.
func (m *KeyboardManagerModule) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

func (m *KeyboardManagerModule) ID() domain.ModuleID { return KeyboardManagerID }

func (m *KeyboardManagerModule) Hotkeys() []domain.HotkeyKey {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.HotkeyKey, len(m.hotkeys))
	copy(out, m.hotkeys)
	return out
}

func (m *KeyboardManagerModule) ExtendedHotkey() (domain.ExtendedHotkey, bool) {
	return domain.ExtendedHotkey{}, false
}

func (m *KeyboardManagerModule) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

func (m *KeyboardManagerModule) HoldDuration() time.Duration { return 0 }

func (m *KeyboardManagerModule) TracksHeldWinKey() bool { return false }

// OnHotkey swallows the chord.
func (m *KeyboardManagerModule) OnHotkey(int) bool { return true }

func (m *KeyboardManagerModule) OnExtendedHotkey() {}

// Ensure KeyboardManagerModule implements domain.Module.
var _ domain.Module = (*KeyboardManagerModule)(nil)
