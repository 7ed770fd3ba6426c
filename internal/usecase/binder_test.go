package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/hook"
)

// mockModule implements domain.Module for testing
type mockModule struct {
	id          domain.ModuleID
	hotkeys     []domain.HotkeyKey
	extended    *domain.ExtendedHotkey
	enabled     bool
	hold        time.Duration
	trackWin    bool
	legacy      bool
	hotkeyCalls []int
	extCalls    int
}

func (m *mockModule) ID() domain.ModuleID { return m.id }
func (m *mockModule) Hotkeys() []domain.HotkeyKey { return m.hotkeys }
func (m *mockModule) IsEnabled() bool { return m.enabled }
func (m *mockModule) HoldDuration() time.Duration { return m.hold }
func (m *mockModule) TracksHeldWinKey() bool { return m.trackWin }
func (m *mockModule) TracksLegacyHeldModifiers() bool { return m.legacy }
func (m *mockModule) OnExtendedHotkey() { m.extCalls++ }

func (m *mockModule) ExtendedHotkey() (domain.ExtendedHotkey, bool) {
	if m.extended == nil {
		return domain.ExtendedHotkey{}, false
	}
	return *m.extended, true
}

func (m *mockModule) OnHotkey(index int) bool {
	m.hotkeyCalls = append(m.hotkeyCalls, index)
	return true
}

// countingMatcher counts invalidations.
type countingMatcher struct {
	invalidated int
}

func (c *countingMatcher) Match(domain.ObservedKeyState) domain.MatchResult { return domain.MatchResult{} }
func (c *countingMatcher) Invalidate() { c.invalidated++ }

// manualScheduler fires nothing on its own; tests drive timers directly.
type manualScheduler struct {
	fns []func()
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) domain.Timer {
	s.fns = append(s.fns, f)
	return noopTimer{}
}

func newTestBinder() (*ModuleHotkeyBinder, *hook.DispatchEngine, *countingMatcher, *manualScheduler) {
	matcher := &countingMatcher{}
	scheduler := &manualScheduler{}
	engine := hook.NewDispatchEngine(hook.EngineDeps{
		Matcher:   matcher,
		Scheduler: scheduler,
	}, zap.NewNop())
	return NewModuleHotkeyBinder(engine, zap.NewNop()), engine, matcher, scheduler
}

func guideModule() *mockModule {
	return &mockModule{
		id:      "ShortcutGuide",
		enabled: true,
		hotkeys: []domain.HotkeyKey{
			{Win: true, Shift: true, Key: 0xBF},
			{Win: true, Ctrl: true, Key: 'G'},
		},
		extended: &domain.ExtendedHotkey{ModifiersMask: chord.ModWin | chord.ModShift, VK: 0xBF},
		hold:     900 * time.Millisecond,
		trackWin: true,
	}
}

// TestBind_RegistersEverything verifies every declared hotkey kind is registered.
func TestBind_RegistersEverything(t *testing.T) {
	b, engine, matcher, _ := newTestBinder()
	m := guideModule()

	b.RegisterModule(m)

	assert.Equal(t, 2, engine.Hotkeys().Len())
	assert.Equal(t, 2, engine.Pressed().Len())
	assert.True(t, engine.Pressed().Has(chord.VKLWin))
	assert.True(t, engine.Pressed().Has(chord.VKRWin))
	assert.Equal(t, 1, engine.Extended().Len())
	assert.Equal(t, 1, matcher.invalidated)
	assert.Equal(t, []domain.ModuleID{"ShortcutGuide"}, b.Modules())

	action, ok := engine.Hotkeys().Lookup(domain.HotkeyKey{Win: true, Ctrl: true, Key: 'G'})
	require.True(t, ok)
	assert.True(t, action())
	assert.Equal(t, []int{1}, m.hotkeyCalls)

	assert.True(t, engine.Extended().Trigger(*m.extended))
	assert.Equal(t, 1, m.extCalls)
}

// TestBind_Idempotent verifies binding twice leaves the same registrations.
func TestBind_Idempotent(t *testing.T) {
	b, engine, _, _ := newTestBinder()
	m := guideModule()

	b.Bind(m)
	hotkeys, pressed, extended := engine.Hotkeys().Len(), engine.Pressed().Len(), engine.Extended().Len()
	b.Bind(m)

	assert.Equal(t, hotkeys, engine.Hotkeys().Len())
	assert.Equal(t, pressed, engine.Pressed().Len())
	assert.Equal(t, extended, engine.Extended().Len())
	assert.ElementsMatch(t, m.hotkeys, engine.Hotkeys().ModuleHotkeys(m.id))
}

// TestBind_LegacyHoldModifiers verifies the legacy mode adds left Ctrl and left Shift.
func TestBind_LegacyHoldModifiers(t *testing.T) {
	b, engine, _, _ := newTestBinder()
	m := guideModule()
	m.legacy = true

	b.Bind(m)

	assert.Equal(t, 4, engine.Pressed().Len())
	assert.True(t, engine.Pressed().Has(chord.VKLControl))
	assert.True(t, engine.Pressed().Has(chord.VKLShift))
}

// TestBind_HoldActionRunsExtended verifies the hold gesture calls OnExtendedHotkey and passes through.
func TestBind_HoldActionRunsExtended(t *testing.T) {
	b, engine, _, scheduler := newTestBinder()
	m := guideModule()
	b.Bind(m)

	engine.Pressed().Arm(chord.VKLWin)
	require.Len(t, scheduler.fns, 1)
	scheduler.fns[0]()

	assert.Equal(t, 1, m.extCalls)
}

// TestBind_DisabledModule verifies a disabled module keeps no registrations.
func TestBind_DisabledModule(t *testing.T) {
	b, engine, _, _ := newTestBinder()
	m := guideModule()
	b.Bind(m)

	m.enabled = false
	b.Bind(m)

	assert.Equal(t, 0, engine.Hotkeys().Len())
	assert.True(t, engine.Pressed().Empty())
	assert.Equal(t, 0, engine.Extended().Len())
}

// TestUnregisterModule_Isolation verifies unregistering one module keeps the other's identical chord.
func TestUnregisterModule_Isolation(t *testing.T) {
	b, engine, _, _ := newTestBinder()
	shared := domain.HotkeyKey{Win: true, Key: 'V'}
	m1 := &mockModule{id: "m1", enabled: true, hotkeys: []domain.HotkeyKey{shared}}
	m2 := &mockModule{id: "m2", enabled: true, hotkeys: []domain.HotkeyKey{shared}}

	b.RegisterModule(m1)
	b.RegisterModule(m2)
	b.UnregisterModule("m1")

	action, ok := engine.Hotkeys().Lookup(shared)
	require.True(t, ok)
	action()
	assert.Empty(t, m1.hotkeyCalls)
	assert.Equal(t, []int{0}, m2.hotkeyCalls)
	assert.Equal(t, []domain.ModuleID{"m2"}, b.Modules())
}

// TestRebind verifies Rebind re-reads the module descriptor.
func TestRebind(t *testing.T) {
	b, engine, matcher, _ := newTestBinder()
	m := &mockModule{id: "m1", enabled: true, hotkeys: []domain.HotkeyKey{{Alt: true, Key: 'Q'}}}
	b.RegisterModule(m)

	m.hotkeys = append(m.hotkeys, domain.HotkeyKey{Alt: true, Key: 'W'})
	assert.True(t, b.Rebind("m1"))
	assert.False(t, b.Rebind("ghost"))

	assert.Equal(t, 2, engine.Hotkeys().Len())
	assert.Equal(t, 2, matcher.invalidated)

	b.NotifyConfigurationChanged()
	assert.Equal(t, 3, matcher.invalidated)
}
