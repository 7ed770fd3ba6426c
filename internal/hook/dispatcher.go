package hook

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// ProgramMatcher is the run-program side of the dispatcher.
// Implementation: runprogram.Matcher.
type ProgramMatcher interface {
	Match(observed domain.ObservedKeyState) domain.MatchResult
	Invalidate()
}

// Dispatcher turns one hook event into a swallow or pass-through decision.
// It keeps no state of its own; held-key state lives in the tracker.
type Dispatcher struct {
	hotkeys  *HotkeyRegistry
	held     *HeldKeyTracker
	matcher  ProgramMatcher
	keyboard domain.KeyboardState
	injector domain.InputInjector
	logger   *zap.Logger
}

// NewDispatcher wires a dispatcher. matcher may be nil.
func NewDispatcher(
	hotkeys *HotkeyRegistry,
	held *HeldKeyTracker,
	matcher ProgramMatcher,
	keyboard domain.KeyboardState,
	injector domain.InputInjector,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		hotkeys:  hotkeys,
		held:     held,
		matcher:  matcher,
		keyboard: keyboard,
		injector: injector,
		logger:   logger,
	}
}

// HandleKeyEvent decides what happens to ev. It never panics.
func (d *Dispatcher) HandleKeyEvent(ev domain.KeyEvent) (decision domain.Decision) {
	if ev.ExtraInfo == domain.SelfInjectedTag {
		return domain.PassThrough
	}

	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("hotkey dispatch panicked",
				zap.Uint32("vk", uint32(ev.VK)),
				zap.Any("panic", rec))
			decision = domain.PassThrough
		}
	}()

	d.held.OnKeyEvent(ev)

	if !ev.Kind.IsDown() {
		return domain.PassThrough
	}

	observed := d.keyboard.Observe(ev.VK)
	if d.matcher != nil {
		d.matcher.Match(observed)
	}

	action, ok := d.hotkeys.Lookup(observed.HotkeyKey())
	if !ok {
		return domain.PassThrough
	}
	if !action() {
		return domain.PassThrough
	}

	if err := d.injector.InjectKeyUp(chord.VKSuppress); err != nil {
		d.logger.Warn("failed to inject suppress key", zap.Error(err))
	}
	d.logger.Debug("hotkey handled", zap.Uint32("vk", uint32(ev.VK)))
	return domain.Swallow
}
