package hook

import (
	"sync"
	"time"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// fakeScheduler records timers and fires them on Advance.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) domain.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward and runs every due timer.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (s *fakeScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeKeyboard returns a fixed modifier state.
type fakeKeyboard struct {
	state domain.ObservedKeyState
}

func (k *fakeKeyboard) Observe(vk domain.VirtualKey) domain.ObservedKeyState {
	s := k.state
	s.Key = vk
	return s
}

// fakeInjector counts injected key-ups.
type fakeInjector struct {
	mu       sync.Mutex
	injected []domain.VirtualKey
}

func (i *fakeInjector) InjectKeyUp(vk domain.VirtualKey) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.injected = append(i.injected, vk)
	return nil
}

// fakeMatcher counts calls.
type fakeMatcher struct {
	matches     []domain.ObservedKeyState
	invalidated int
}

func (m *fakeMatcher) Match(observed domain.ObservedKeyState) domain.MatchResult {
	m.matches = append(m.matches, observed)
	return domain.MatchResult{}
}

func (m *fakeMatcher) Invalidate() { m.invalidated++ }

// fakeHook captures the installed handler.
type fakeHook struct {
	handler    func(domain.KeyEvent) domain.Decision
	installs   int
	uninstalls int
	installErr error
}

func (h *fakeHook) Install(handler func(domain.KeyEvent) domain.Decision) error {
	if h.installErr != nil {
		return h.installErr
	}
	h.installs++
	h.handler = handler
	return nil
}

func (h *fakeHook) Uninstall() error {
	h.uninstalls++
	h.handler = nil
	return nil
}

// fakeRegistrar records OS registrations.
type fakeRegistrar struct {
	registered map[domain.ModuleID]func()
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{registered: make(map[domain.ModuleID]func())}
}

func (r *fakeRegistrar) Register(id domain.ModuleID, _ domain.ExtendedHotkey, fire func()) error {
	r.registered[id] = fire
	return nil
}

func (r *fakeRegistrar) Unregister(id domain.ModuleID) error {
	delete(r.registered, id)
	return nil
}

func counter() (domain.Action, *int) {
	n := 0
	return func() bool { n++; return true }, &n
}

func down(vk domain.VirtualKey) domain.KeyEvent {
	return domain.KeyEvent{Kind: domain.KeyDown, VK: vk}
}

func up(vk domain.VirtualKey) domain.KeyEvent {
	return domain.KeyEvent{Kind: domain.KeyUp, VK: vk}
}
