//go:build !windows

package infra

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// LowLevelHook is unavailable outside Windows.
type LowLevelHook struct{}

// NewLowLevelHook creates a hook that cannot be installed.
func NewLowLevelHook(*zap.Logger) *LowLevelHook {
	return &LowLevelHook{}
}

func (*LowLevelHook) Install(func(domain.KeyEvent) domain.Decision) error {
	return domain.ErrUnsupportedPlatform
}

func (*LowLevelHook) Uninstall() error { return nil }

// AsyncKeyState reports no modifiers outside Windows.
type AsyncKeyState struct{}

// NewAsyncKeyState creates a sampler.
func NewAsyncKeyState() *AsyncKeyState {
	return &AsyncKeyState{}
}

func (AsyncKeyState) Observe(vk domain.VirtualKey) domain.ObservedKeyState {
	return domain.ObservedKeyState{Key: vk}
}

// SendInputInjector is unavailable outside Windows.
type SendInputInjector struct{}

// NewSendInputInjector creates an injector.
func NewSendInputInjector() *SendInputInjector {
	return &SendInputInjector{}
}

func (SendInputInjector) InjectKeyUp(domain.VirtualKey) error {
	return domain.ErrUnsupportedPlatform
}

var (
	_ domain.KeyboardHook  = (*LowLevelHook)(nil)
	_ domain.KeyboardState = AsyncKeyState{}
	_ domain.InputInjector = SendInputInjector{}
)
