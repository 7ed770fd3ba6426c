package fixtures

import (
	"sync"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// FakeKeyboard reports whatever modifiers the test holds down.
type FakeKeyboard struct {
	mu    sync.Mutex
	state domain.ObservedKeyState
}

// Hold sets the held modifier state.
func (k *FakeKeyboard) Hold(state domain.ObservedKeyState) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.state = state
}

// Release clears every modifier.
func (k *FakeKeyboard) Release() {
	k.Hold(domain.ObservedKeyState{})
}

func (k *FakeKeyboard) Observe(vk domain.VirtualKey) domain.ObservedKeyState {
	k.mu.Lock()
	defer k.mu.Unlock()
	s := k.state
	s.Key = vk
	return s
}

// FakeInjector records injected key-ups.
type FakeInjector struct {
	mu       sync.Mutex
	injected []domain.VirtualKey
}

func (i *FakeInjector) InjectKeyUp(vk domain.VirtualKey) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.injected = append(i.injected, vk)
	return nil
}

// Injected returns the injected key-ups.
func (i *FakeInjector) Injected() []domain.VirtualKey {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]domain.VirtualKey(nil), i.injected...)
}

var (
	_ domain.KeyboardState = (*FakeKeyboard)(nil)
	_ domain.InputInjector = (*FakeInjector)(nil)
)
