// Package chord parses persisted chord specifications and textual hotkeys.
package chord

import "github.com/eliteGoblin/focusd/hotkeyd/internal/domain"

// Windows virtual-key codes used by the chord parser and the hook.
const (
	VKShift    domain.VirtualKey = 0x10
	VKControl  domain.VirtualKey = 0x11
	VKMenu     domain.VirtualKey = 0x12
	VKDelete   domain.VirtualKey = 0x2E
	VKLWin     domain.VirtualKey = 0x5B
	VKRWin     domain.VirtualKey = 0x5C
	VKLShift   domain.VirtualKey = 0xA0
	VKRShift   domain.VirtualKey = 0xA1
	VKLControl domain.VirtualKey = 0xA2
	VKRControl domain.VirtualKey = 0xA3
	VKLMenu    domain.VirtualKey = 0xA4
	VKRMenu    domain.VirtualKey = 0xA5

	// VKDisabled marks "no key" in hold tracking and in editor buffers.
	VKDisabled domain.VirtualKey = 0x100

	// VKWinBoth is a pseudo code for "either Windows key"; there is no OS code for it.
	VKWinBoth domain.VirtualKey = 0x104

	// VKSuppress is the key-up injected after a handled hotkey so the OS does not
	// treat the modifier release as a bare Win press (Start menu).
	VKSuppress domain.VirtualKey = 0xFF
)

// Raw OS hotkey modifier mask bits (MOD_* values).
const (
	ModAlt     uint16 = 0x0001
	ModControl uint16 = 0x0002
	ModShift   uint16 = 0x0004
	ModWin     uint16 = 0x0008
)

// IsModifier reports whether vk is a Win, Ctrl, Alt or Shift code (any side).
func IsModifier(vk domain.VirtualKey) bool {
	switch vk {
	case VKWinBoth, VKLWin, VKRWin,
		VKControl, VKLControl, VKRControl,
		VKMenu, VKLMenu, VKRMenu,
		VKShift, VKLShift, VKRShift:
		return true
	}
	return false
}
