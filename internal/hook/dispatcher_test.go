package hook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

type dispatcherFixture struct {
	dispatcher *Dispatcher
	hotkeys    *HotkeyRegistry
	pressed    *PressedKeyRegistry
	scheduler  *fakeScheduler
	keyboard   *fakeKeyboard
	injector   *fakeInjector
	matcher    *fakeMatcher
}

func newDispatcherFixture() *dispatcherFixture {
	f := &dispatcherFixture{
		hotkeys:  NewHotkeyRegistry(),
		keyboard: &fakeKeyboard{},
		injector: &fakeInjector{},
		matcher:  &fakeMatcher{},
	}
	f.pressed, f.scheduler = newTestPressed()
	f.dispatcher = NewDispatcher(f.hotkeys, NewHeldKeyTracker(f.pressed), f.matcher, f.keyboard, f.injector, zap.NewNop())
	return f
}

// TestDispatcher_HandledHotkeySwallows verifies a handled action swallows the
// event and injects one suppress key-up.
func TestDispatcher_HandledHotkeySwallows(t *testing.T) {
	f := newDispatcherFixture()
	action, calls := counter()
	f.hotkeys.Insert("m1", domain.HotkeyKey{Win: true, Key: 'A'}, action)
	f.keyboard.state = domain.ObservedKeyState{Win: true, LWin: true}

	got := f.dispatcher.HandleKeyEvent(down('A'))

	assert.Equal(t, domain.Swallow, got)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, []domain.VirtualKey{chord.VKSuppress}, f.injector.injected)
}

// TestDispatcher_PassThrough covers the cases that forward the event unchanged.
func TestDispatcher_PassThrough(t *testing.T) {
	tests := []struct {
		name     string
		register bool
		handled  bool
		state    domain.ObservedKeyState
		event    domain.KeyEvent
	}{
		{
			name:  "no registration",
			state: domain.ObservedKeyState{Win: true, LWin: true},
			event: down('A'),
		},
		{
			name:     "action not handled",
			register: true,
			handled:  false,
			state:    domain.ObservedKeyState{Win: true, LWin: true},
			event:    down('A'),
		},
		{
			name:     "keyup never looks up",
			register: true,
			handled:  true,
			state:    domain.ObservedKeyState{Win: true, LWin: true},
			event:    up('A'),
		},
		{
			name:     "different modifiers",
			register: true,
			handled:  true,
			state:    domain.ObservedKeyState{Win: true, LWin: true, Shift: true, LShift: true},
			event:    down('A'),
		},
		{
			name:     "self injected",
			register: true,
			handled:  true,
			state:    domain.ObservedKeyState{Win: true, LWin: true},
			event:    domain.KeyEvent{Kind: domain.KeyDown, VK: 'A', ExtraInfo: domain.SelfInjectedTag},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDispatcherFixture()
			if tt.register {
				handled := tt.handled
				f.hotkeys.Insert("m1", domain.HotkeyKey{Win: true, Key: 'A'}, func() bool { return handled })
			}
			f.keyboard.state = tt.state

			got := f.dispatcher.HandleKeyEvent(tt.event)

			assert.Equal(t, domain.PassThrough, got)
			assert.Empty(t, f.injector.injected)
		})
	}
}

// TestDispatcher_SysKeyDownLooksUp verifies Alt chords arriving as syskeydown are dispatched.
func TestDispatcher_SysKeyDownLooksUp(t *testing.T) {
	f := newDispatcherFixture()
	action, calls := counter()
	f.hotkeys.Insert("m1", domain.HotkeyKey{Alt: true, Key: ' '}, action)
	f.keyboard.state = domain.ObservedKeyState{Alt: true, LAlt: true}

	got := f.dispatcher.HandleKeyEvent(domain.KeyEvent{Kind: domain.SysKeyDown, VK: ' '})

	assert.Equal(t, domain.Swallow, got)
	assert.Equal(t, 1, *calls)
}

// TestDispatcher_MatcherSeesKeydownsOnly verifies the run-program matcher is consulted on keydown.
func TestDispatcher_MatcherSeesKeydownsOnly(t *testing.T) {
	f := newDispatcherFixture()
	f.keyboard.state = domain.ObservedKeyState{Win: true, LWin: true}

	f.dispatcher.HandleKeyEvent(down('A'))
	f.dispatcher.HandleKeyEvent(up('A'))
	f.dispatcher.HandleKeyEvent(domain.KeyEvent{Kind: domain.KeyDown, VK: 'A', ExtraInfo: domain.SelfInjectedTag})

	if assert.Len(t, f.matcher.matches, 1) {
		assert.Equal(t, domain.VirtualKey('A'), f.matcher.matches[0].Key)
		assert.True(t, f.matcher.matches[0].LWin)
	}
}

// TestDispatcher_PanickingAction verifies a panic becomes pass-through.
func TestDispatcher_PanickingAction(t *testing.T) {
	f := newDispatcherFixture()
	f.hotkeys.Insert("m1", domain.HotkeyKey{Ctrl: true, Key: 'P'}, func() bool { panic("boom") })
	f.keyboard.state = domain.ObservedKeyState{Ctrl: true, LCtrl: true}

	var got domain.Decision
	assert.NotPanics(t, func() { got = f.dispatcher.HandleKeyEvent(down('P')) })
	assert.Equal(t, domain.PassThrough, got)
}

// TestDispatcher_FeedsHeldTracker verifies hold timers are armed through the dispatcher.
func TestDispatcher_FeedsHeldTracker(t *testing.T) {
	f := newDispatcherFixture()
	action, calls := counter()
	f.pressed.Insert("m1", chord.VKLWin, 300*time.Millisecond, action)

	f.dispatcher.HandleKeyEvent(down(chord.VKLWin))
	f.scheduler.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, *calls)

	// Self-injected events do not touch hold state.
	f.dispatcher.HandleKeyEvent(domain.KeyEvent{Kind: domain.KeyUp, VK: chord.VKLWin, ExtraInfo: domain.SelfInjectedTag})
	f.dispatcher.HandleKeyEvent(down(chord.VKLWin))
	f.scheduler.Advance(300 * time.Millisecond)
	assert.Equal(t, 1, *calls)
}
