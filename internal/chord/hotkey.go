package chord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// Hotkey text errors
var (
	ErrEmptyHotkey     = errors.New("empty hotkey")
	ErrUnknownModifier = errors.New("unknown modifier")
	ErrUnknownKey      = errors.New("unknown key")
)

var namedKeys = map[string]domain.VirtualKey{
	"backspace":   0x08,
	"tab":         0x09,
	"enter":       0x0D,
	"return":      0x0D,
	"pause":       0x13,
	"capslock":    0x14,
	"escape":      0x1B,
	"esc":         0x1B,
	"space":       0x20,
	"pageup":      0x21,
	"pagedown":    0x22,
	"end":         0x23,
	"home":        0x24,
	"left":        0x25,
	"up":          0x26,
	"right":       0x27,
	"down":        0x28,
	"printscreen": 0x2C,
	"insert":      0x2D,
	"delete":      0x2E,
	"del":         0x2E,
	"comma":       0xBC,
	"period":      0xBE,
	"minus":       0xBD,
	"plus":        0xBB,
	";":           0xBA,
	"=":           0xBB,
	",":           0xBC,
	"-":           0xBD,
	".":           0xBE,
	"/":           0xBF,
	"`":           0xC0,
	"[":           0xDB,
	"\\":          0xDC,
	"]":           0xDD,
	"'":           0xDE,
}

// ParseHotkey parses "ctrl+shift+s" style text into a HotkeyKey.
// The last part is the key: a letter, digit, F1-F24, a named key, or a
// numeric code ("0x41" or "65").
func ParseHotkey(text string) (domain.HotkeyKey, error) {
	var hk domain.HotkeyKey

	mods, key, err := splitHotkey(text)
	if err != nil {
		return hk, err
	}
	for _, m := range mods {
		switch m {
		case "win", "super", "meta":
			hk.Win = true
		case "ctrl", "control":
			hk.Ctrl = true
		case "shift":
			hk.Shift = true
		case "alt", "menu":
			hk.Alt = true
		default:
			return hk, fmt.Errorf("%w %q in %q", ErrUnknownModifier, m, text)
		}
	}
	vk, err := ParseKeyName(key)
	if err != nil {
		return hk, fmt.Errorf("hotkey %q: %w", text, err)
	}
	hk.Key = uint8(vk)
	return hk, nil
}

// ParseExtendedHotkey parses "win+shift+f1" style text into a raw modifier mask hotkey.
func ParseExtendedHotkey(text string) (domain.ExtendedHotkey, error) {
	hk, err := ParseHotkey(text)
	if err != nil {
		return domain.ExtendedHotkey{}, err
	}
	return ToExtended(hk), nil
}

// ToExtended converts a logical hotkey to the raw MOD_* mask form.
func ToExtended(hk domain.HotkeyKey) domain.ExtendedHotkey {
	var mask uint16
	if hk.Alt {
		mask |= ModAlt
	}
	if hk.Ctrl {
		mask |= ModControl
	}
	if hk.Shift {
		mask |= ModShift
	}
	if hk.Win {
		mask |= ModWin
	}
	return domain.ExtendedHotkey{ModifiersMask: mask, VK: uint16(hk.Key)}
}

// ParseKeyName maps a key name to a virtual key code.
func ParseKeyName(name string) (domain.VirtualKey, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return 0, ErrEmptyHotkey
	}
	if len(s) == 1 {
		c := s[0]
		if c >= 'a' && c <= 'z' {
			return domain.VirtualKey(c - 'a' + 'A'), nil
		}
		if c >= '0' && c <= '9' {
			return domain.VirtualKey(c), nil
		}
	}
	if vk, ok := namedKeys[s]; ok {
		return vk, nil
	}
	if strings.HasPrefix(s, "f") {
		if n, err := strconv.Atoi(s[1:]); err == nil && n >= 1 && n <= 24 {
			return domain.VirtualKey(0x70 + n - 1), nil
		}
	}
	if code, err := strconv.ParseUint(s, 0, 8); err == nil && code > 0 {
		return domain.VirtualKey(code), nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownKey, name)
}

// FormatHotkey renders a HotkeyKey as "Win+Ctrl+Shift+Alt+0x41".
func FormatHotkey(hk domain.HotkeyKey) string {
	var parts []string
	if hk.Win {
		parts = append(parts, "Win")
	}
	if hk.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if hk.Shift {
		parts = append(parts, "Shift")
	}
	if hk.Alt {
		parts = append(parts, "Alt")
	}
	parts = append(parts, formatKey(domain.VirtualKey(hk.Key)))
	return strings.Join(parts, "+")
}

// FormatSpec renders the chord part of a RunProgramSpec, e.g. "LWin+A".
func FormatSpec(spec domain.RunProgramSpec) string {
	var parts []string
	add := func(side domain.ModifierSide, name string) {
		switch side {
		case domain.SideLeft:
			parts = append(parts, "L"+name)
		case domain.SideRight:
			parts = append(parts, "R"+name)
		case domain.SideBoth:
			parts = append(parts, name)
		}
	}
	add(spec.Win, "Win")
	add(spec.Ctrl, "Ctrl")
	add(spec.Shift, "Shift")
	add(spec.Alt, "Alt")
	parts = append(parts, formatKey(spec.ActionKey))
	return strings.Join(parts, "+")
}

func formatKey(vk domain.VirtualKey) string {
	switch {
	case vk >= 'A' && vk <= 'Z', vk >= '0' && vk <= '9':
		return string(rune(vk))
	case vk >= 0x70 && vk <= 0x87:
		return fmt.Sprintf("F%d", vk-0x70+1)
	}
	return fmt.Sprintf("0x%02X", uint32(vk))
}

func splitHotkey(text string) (mods []string, key string, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, "", ErrEmptyHotkey
	}
	parts := strings.Split(trimmed, "+")
	for _, p := range parts[:len(parts)-1] {
		mods = append(mods, strings.ToLower(strings.TrimSpace(p)))
	}
	return mods, parts[len(parts)-1], nil
}
