//go:build !windows

package infra

import (
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// HotkeyRegistrar records extended hotkeys without registering them; the
// raw modifier-mask form only exists on Windows.
type HotkeyRegistrar struct {
	logger *zap.Logger
}

// NewHotkeyRegistrar creates a registrar.
func NewHotkeyRegistrar(logger *zap.Logger) *HotkeyRegistrar {
	return &HotkeyRegistrar{logger: logger}
}

func (r *HotkeyRegistrar) Register(id domain.ModuleID, ext domain.ExtendedHotkey, _ func()) error {
	r.logger.Debug("extended hotkeys unsupported on this platform",
		zap.String("module", string(id)),
		zap.Uint16("modifiers", ext.ModifiersMask),
		zap.Uint16("vk", ext.VK))
	return nil
}

func (r *HotkeyRegistrar) Unregister(domain.ModuleID) error { return nil }

var _ domain.ExtendedHotkeyRegistrar = (*HotkeyRegistrar)(nil)
