package usecase

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// HotkeyEngine is the registration surface of the dispatch engine.
// Implementation: hook.DispatchEngine.
type HotkeyEngine interface {
	SetHotkeyAction(module domain.ModuleID, hk domain.HotkeyKey, action domain.Action)
	AddPressedKeyAction(module domain.ModuleID, vk domain.VirtualKey, d time.Duration, action domain.Action)
	SetExtendedHotkey(module domain.ModuleID, hk domain.ExtendedHotkey, fire func()) error
	ClearModuleHotkeys(module domain.ModuleID)
	NotifyConfigurationChanged()
}

// ModuleHotkeyBinder translates module descriptors into engine registrations.
type ModuleHotkeyBinder struct {
	engine HotkeyEngine
	logger *zap.Logger

	mu      sync.Mutex
	modules map[domain.ModuleID]domain.Module
}

// NewModuleHotkeyBinder creates a binder over engine.
func NewModuleHotkeyBinder(engine HotkeyEngine, logger *zap.Logger) *ModuleHotkeyBinder {
	return &ModuleHotkeyBinder{
		engine:  engine,
		logger:  logger,
		modules: make(map[domain.ModuleID]domain.Module),
	}
}

// RegisterModule records module and binds its hotkeys.
func (b *ModuleHotkeyBinder) RegisterModule(module domain.Module) {
	b.mu.Lock()
	b.modules[module.ID()] = module
	b.mu.Unlock()

	b.Bind(module)
}

// UnregisterModule drops every registration owned by id.
func (b *ModuleHotkeyBinder) UnregisterModule(id domain.ModuleID) {
	b.mu.Lock()
	delete(b.modules, id)
	b.mu.Unlock()

	b.engine.ClearModuleHotkeys(id)
	b.engine.NotifyConfigurationChanged()
	b.logger.Info("module unregistered", zap.String("module", string(id)))
}

// Bind clears then re-registers module's hotkeys. Binding the same module
// twice leaves the same registrations. A disabled module ends up with none.
func (b *ModuleHotkeyBinder) Bind(module domain.Module) {
	id := module.ID()
	b.engine.ClearModuleHotkeys(id)
	defer b.engine.NotifyConfigurationChanged()

	if !module.IsEnabled() {
		b.logger.Debug("module disabled, no hotkeys bound", zap.String("module", string(id)))
		return
	}

	hotkeys := module.Hotkeys()
	for i, hk := range hotkeys {
		index := i
		b.engine.SetHotkeyAction(id, hk, func() bool {
			return module.OnHotkey(index)
		})
	}

	extended, hasExtended := module.ExtendedHotkey()
	if hasExtended {
		if err := b.engine.SetExtendedHotkey(id, extended, module.OnExtendedHotkey); err != nil {
			b.logger.Warn("failed to register extended hotkey",
				zap.String("module", string(id)),
				zap.Error(err))
		}
	}

	holdKeys := heldKeys(module)
	if len(holdKeys) > 0 {
		hold := func() bool {
			module.OnExtendedHotkey()
			return false
		}
		for _, vk := range holdKeys {
			b.engine.AddPressedKeyAction(id, vk, module.HoldDuration(), hold)
		}
	}

	b.logger.Info("module hotkeys bound",
		zap.String("module", string(id)),
		zap.Int("hotkeys", len(hotkeys)),
		zap.Bool("extended", hasExtended),
		zap.Int("hold_keys", len(holdKeys)))
}

func heldKeys(module domain.Module) []domain.VirtualKey {
	if !module.TracksHeldWinKey() {
		return nil
	}
	keys := []domain.VirtualKey{chord.VKLWin, chord.VKRWin}
	if legacy, ok := module.(domain.LegacyHoldModule); ok && legacy.TracksLegacyHeldModifiers() {
		keys = append(keys, chord.VKLControl, chord.VKLShift)
	}
	return keys
}

// Rebind binds a registered module again, e.g. after its settings changed.
// Returns false if id is not registered.
func (b *ModuleHotkeyBinder) Rebind(id domain.ModuleID) bool {
	b.mu.Lock()
	module, ok := b.modules[id]
	b.mu.Unlock()

	if !ok {
		return false
	}
	b.Bind(module)
	return true
}

// NotifyConfigurationChanged invalidates the run-program cache.
func (b *ModuleHotkeyBinder) NotifyConfigurationChanged() {
	b.engine.NotifyConfigurationChanged()
}

// Modules returns the registered module ids, sorted.
func (b *ModuleHotkeyBinder) Modules() []domain.ModuleID {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]domain.ModuleID, 0, len(b.modules))
	for id := range b.modules {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
