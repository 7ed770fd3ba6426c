package hook

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// ClockScheduler arms timers with time.AfterFunc.
type ClockScheduler struct{}

// AfterFunc implements domain.Scheduler.
func (ClockScheduler) AfterFunc(d time.Duration, f func()) domain.Timer {
	return time.AfterFunc(d, f)
}

// Ensure ClockScheduler implements domain.Scheduler.
var _ domain.Scheduler = ClockScheduler{}

// EngineDeps are the OS collaborators of a DispatchEngine.
type EngineDeps struct {
	Hook      domain.KeyboardHook
	Keyboard  domain.KeyboardState
	Injector  domain.InputInjector
	Registrar domain.ExtendedHotkeyRegistrar
	Scheduler domain.Scheduler
	Matcher   ProgramMatcher
}

// DispatchEngine owns the registries, the held-key tracker and the hook
// installation. There is one per process.
type DispatchEngine struct {
	hotkeys    *HotkeyRegistry
	pressed    *PressedKeyRegistry
	extended   *ExtendedHotkeyTable
	held       *HeldKeyTracker
	dispatcher *Dispatcher

	hook      domain.KeyboardHook
	registrar domain.ExtendedHotkeyRegistrar
	matcher   ProgramMatcher

	mu      sync.Mutex
	started bool

	logger *zap.Logger
}

// NewDispatchEngine builds an engine. A nil Scheduler defaults to ClockScheduler.
func NewDispatchEngine(deps EngineDeps, logger *zap.Logger) *DispatchEngine {
	scheduler := deps.Scheduler
	if scheduler == nil {
		scheduler = ClockScheduler{}
	}

	hotkeys := NewHotkeyRegistry()
	pressed := NewPressedKeyRegistry(scheduler, logger)
	held := NewHeldKeyTracker(pressed)

	return &DispatchEngine{
		hotkeys:    hotkeys,
		pressed:    pressed,
		extended:   NewExtendedHotkeyTable(logger),
		held:       held,
		dispatcher: NewDispatcher(hotkeys, held, deps.Matcher, deps.Keyboard, deps.Injector, logger),
		hook:       deps.Hook,
		registrar:  deps.Registrar,
		matcher:    deps.Matcher,
		logger:     logger,
	}
}

// Start installs the keyboard hook. Calling it again is a no-op.
func (e *DispatchEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return nil
	}
	if e.hook == nil {
		return fmt.Errorf("start dispatch engine: %w", domain.ErrUnsupportedPlatform)
	}
	if err := e.hook.Install(e.dispatcher.HandleKeyEvent); err != nil {
		return fmt.Errorf("install keyboard hook: %w", err)
	}
	e.started = true
	e.logger.Info("keyboard hook installed")
	return nil
}

// Stop removes the keyboard hook and cancels pending hold timers.
func (e *DispatchEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return nil
	}
	e.held.Reset()
	if err := e.hook.Uninstall(); err != nil {
		return fmt.Errorf("uninstall keyboard hook: %w", err)
	}
	e.started = false
	e.logger.Info("keyboard hook removed")
	return nil
}

// Running reports whether the hook is installed.
func (e *DispatchEngine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// HandleKeyEvent runs the dispatcher directly. The installed hook calls the same path.
func (e *DispatchEngine) HandleKeyEvent(ev domain.KeyEvent) domain.Decision {
	return e.dispatcher.HandleKeyEvent(ev)
}

// SetHotkeyAction registers a chord for module.
func (e *DispatchEngine) SetHotkeyAction(module domain.ModuleID, hk domain.HotkeyKey, action domain.Action) {
	if shadowed := e.hotkeys.Insert(module, hk, action); shadowed {
		owner, _ := e.hotkeys.Owner(hk)
		e.logger.Debug("hotkey already claimed, registration shadowed",
			zap.String("module", string(module)),
			zap.String("owner", string(owner)),
			zap.String("hotkey", chord.FormatHotkey(hk)))
	}
}

// AddPressedKeyAction registers a hold gesture for module.
func (e *DispatchEngine) AddPressedKeyAction(module domain.ModuleID, vk domain.VirtualKey, d time.Duration, action domain.Action) {
	id := e.pressed.Insert(module, vk, d, action)
	e.logger.Debug("hold gesture registered",
		zap.String("module", string(module)),
		zap.Uint32("vk", uint32(vk)),
		zap.Duration("duration", d),
		zap.Uint32("timer_id", id))
}

// SetExtendedHotkey binds module's single raw hotkey and registers it with the OS.
// A registrar failure is returned but the table entry is kept, so Trigger still works.
func (e *DispatchEngine) SetExtendedHotkey(module domain.ModuleID, hk domain.ExtendedHotkey, fire func()) error {
	e.extended.Set(module, hk, fire)
	if e.registrar == nil {
		return nil
	}
	if err := e.registrar.Register(module, hk, func() { e.extended.Trigger(hk) }); err != nil {
		return fmt.Errorf("register extended hotkey for %s: %w", module, err)
	}
	return nil
}

// ClearModuleHotkeys drops every registration owned by module.
func (e *DispatchEngine) ClearModuleHotkeys(module domain.ModuleID) {
	hotkeys := e.hotkeys.RemoveAll(module)
	pressed := e.pressed.RemoveAll(module)
	extended := e.extended.Remove(module)
	if extended && e.registrar != nil {
		if err := e.registrar.Unregister(module); err != nil {
			e.logger.Warn("failed to unregister extended hotkey",
				zap.String("module", string(module)),
				zap.Error(err))
		}
	}
	e.logger.Debug("module hotkeys cleared",
		zap.String("module", string(module)),
		zap.Int("hotkeys", hotkeys),
		zap.Int("hold_gestures", pressed),
		zap.Bool("extended", extended))
}

// NotifyConfigurationChanged drops the run-program cache so the next
// qualifying keydown reloads it.
func (e *DispatchEngine) NotifyConfigurationChanged() {
	if e.matcher != nil {
		e.matcher.Invalidate()
	}
}

// Hotkeys exposes the chord registry.
func (e *DispatchEngine) Hotkeys() *HotkeyRegistry { return e.hotkeys }

// Pressed exposes the hold-gesture registry.
func (e *DispatchEngine) Pressed() *PressedKeyRegistry { return e.pressed }

// Extended exposes the extended hotkey table.
func (e *DispatchEngine) Extended() *ExtendedHotkeyTable { return e.extended }
