//go:build windows

package infra

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.design/x/hotkey"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

type registeredHotkey struct {
	hk   *hotkey.Hotkey
	done chan struct{}
}

// HotkeyRegistrar registers each module's extended hotkey with the OS.
// On Windows the MOD_* bits map one to one onto hotkey.Modifier.
type HotkeyRegistrar struct {
	mu     sync.Mutex
	active map[domain.ModuleID]*registeredHotkey
	logger *zap.Logger
}

// NewHotkeyRegistrar creates an empty registrar.
func NewHotkeyRegistrar(logger *zap.Logger) *HotkeyRegistrar {
	return &HotkeyRegistrar{
		active: make(map[domain.ModuleID]*registeredHotkey),
		logger: logger,
	}
}

// Register replaces any hotkey id had and calls fire on every keydown.
func (r *HotkeyRegistrar) Register(id domain.ModuleID, ext domain.ExtendedHotkey, fire func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregisterLocked(id)

	hk := hotkey.New(modifiers(ext.ModifiersMask), hotkey.Key(ext.VK))
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register hotkey for %s: %w", id, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-hk.Keydown():
				fire()
			}
		}
	}()

	r.active[id] = &registeredHotkey{hk: hk, done: done}
	r.logger.Debug("extended hotkey registered",
		zap.String("module", string(id)),
		zap.Uint16("modifiers", ext.ModifiersMask),
		zap.Uint16("vk", ext.VK))
	return nil
}

// Unregister drops id's hotkey. Unknown ids are ignored.
func (r *HotkeyRegistrar) Unregister(id domain.ModuleID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unregisterLocked(id)
}

func (r *HotkeyRegistrar) unregisterLocked(id domain.ModuleID) error {
	reg, ok := r.active[id]
	if !ok {
		return nil
	}
	delete(r.active, id)
	close(reg.done)
	if err := reg.hk.Unregister(); err != nil {
		return fmt.Errorf("unregister hotkey for %s: %w", id, err)
	}
	return nil
}

func modifiers(mask uint16) []hotkey.Modifier {
	var mods []hotkey.Modifier
	if mask&chord.ModAlt != 0 {
		mods = append(mods, hotkey.ModAlt)
	}
	if mask&chord.ModControl != 0 {
		mods = append(mods, hotkey.ModCtrl)
	}
	if mask&chord.ModShift != 0 {
		mods = append(mods, hotkey.ModShift)
	}
	if mask&chord.ModWin != 0 {
		mods = append(mods, hotkey.ModWin)
	}
	return mods
}

// Ensure HotkeyRegistrar implements domain.ExtendedHotkeyRegistrar.
var _ domain.ExtendedHotkeyRegistrar = (*HotkeyRegistrar)(nil)
