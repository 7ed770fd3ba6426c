// Package module implements the feature modules hosted by hotkeyd.
// Each module declares hotkeys; the binder registers them with the engine.
package module

import (
	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// Descriptor is a printable summary of a module's declared hotkeys.
type Descriptor struct {
	ID               string
	Enabled          bool
	Hotkeys          []string
	ExtendedHotkey   string
	TracksHeldWinKey bool
	HoldMs           int64
}

// Describe converts a module to a Descriptor.
func Describe(m domain.Module) Descriptor {
	d := Descriptor{
		ID:               string(m.ID()),
		Enabled:          m.IsEnabled(),
		TracksHeldWinKey: m.TracksHeldWinKey(),
		HoldMs:           m.HoldDuration().Milliseconds(),
	}
	for _, hk := range m.Hotkeys() {
		d.Hotkeys = append(d.Hotkeys, chord.FormatHotkey(hk))
	}
	if ext, ok := m.ExtendedHotkey(); ok {
		d.ExtendedHotkey = FormatExtended(ext)
	}
	return d
}

// FormatExtended renders a raw modifier-mask hotkey.
func FormatExtended(hk domain.ExtendedHotkey) string {
	return chord.FormatHotkey(domain.HotkeyKey{
		Win:   hk.ModifiersMask&chord.ModWin != 0,
		Ctrl:  hk.ModifiersMask&chord.ModControl != 0,
		Shift: hk.ModifiersMask&chord.ModShift != 0,
		Alt:   hk.ModifiersMask&chord.ModAlt != 0,
		Key:   uint8(hk.VK),
	})
}
