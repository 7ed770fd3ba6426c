// Package domain contains core hotkey entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import "time"

// ModuleID identifies a feature module that owns hotkey registrations.
type ModuleID string

// VirtualKey is a Windows virtual-key code as delivered by the input hook.
type VirtualKey uint32

// HotkeyKey identifies a chord by its logical (side-agnostic) modifiers and one key code.
// Lookups on HotkeyKey are exact matches on all five fields.
type HotkeyKey struct {
	Win   bool
	Ctrl  bool
	Shift bool
	Alt   bool
	Key   uint8
}

// Action is a zero-argument hotkey callback. It returns true when the
// keystroke was handled and must be swallowed.
type Action func() bool

// ModifierSide records which physical key satisfies a modifier in a chord spec.
type ModifierSide int

const (
	SideDisabled ModifierSide = iota
	SideLeft
	SideRight
	SideBoth
)

func (s ModifierSide) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideBoth:
		return "both"
	default:
		return "disabled"
	}
}

// RunProgramSpec is a config-derived chord that launches or activates a program.
type RunProgramSpec struct {
	Win       ModifierSide
	Ctrl      ModifierSide
	Shift     ModifierSide
	Alt       ModifierSide
	ActionKey VirtualKey

	Path string
	Args string
	Dir  string

	// ChordKeys is reserved for two-key chord sequences and is not matched yet.
	ChordKeys []VirtualKey
}

// HotkeyKey returns the logical chord a spec corresponds to.
// A modifier counts as pressed whenever its side is not disabled.
func (s RunProgramSpec) HotkeyKey() HotkeyKey {
	return HotkeyKey{
		Win:   s.Win != SideDisabled,
		Ctrl:  s.Ctrl != SideDisabled,
		Shift: s.Shift != SideDisabled,
		Alt:   s.Alt != SideDisabled,
		Key:   uint8(s.ActionKey),
	}
}

// RunProgramEntry is one raw `{originalKeys, targetApp}` item from a profile document.
type RunProgramEntry struct {
	OriginalKeys string `json:"originalKeys"`
	TargetApp    string `json:"targetApp"`
}

// ObservedKeyState is a snapshot of the pressed modifiers for a single key event.
type ObservedKeyState struct {
	Win   bool
	Ctrl  bool
	Shift bool
	Alt   bool

	LWin   bool
	RWin   bool
	LCtrl  bool
	RCtrl  bool
	LShift bool
	RShift bool
	LAlt   bool
	RAlt   bool

	Key VirtualKey
}

// AnyModifier reports whether at least one logical modifier is down.
func (o ObservedKeyState) AnyModifier() bool {
	return o.Win || o.Ctrl || o.Shift || o.Alt
}

// HotkeyKey builds the canonical registry key from the logical modifiers.
func (o ObservedKeyState) HotkeyKey() HotkeyKey {
	return HotkeyKey{
		Win:   o.Win,
		Ctrl:  o.Ctrl,
		Shift: o.Shift,
		Alt:   o.Alt,
		Key:   uint8(o.Key),
	}
}

// KeyEventKind mirrors the window message that carried a low-level key event.
type KeyEventKind int

const (
	KeyDown KeyEventKind = iota
	KeyUp
	SysKeyDown
	SysKeyUp
)

// IsDown reports whether the event is a keydown or syskeydown.
func (k KeyEventKind) IsDown() bool {
	return k == KeyDown || k == SysKeyDown
}

// IsUp reports whether the event is a keyup or syskeyup.
func (k KeyEventKind) IsUp() bool {
	return k == KeyUp || k == SysKeyUp
}

// KeyEvent is one event delivered by the OS keyboard hook.
type KeyEvent struct {
	Kind      KeyEventKind
	VK        VirtualKey
	ExtraInfo uintptr
}

// Decision is the hook's verdict on a key event.
type Decision int

const (
	PassThrough Decision = iota
	Swallow
)

func (d Decision) String() string {
	if d == Swallow {
		return "swallow"
	}
	return "pass-through"
}

// ExtendedHotkey is a raw OS hotkey: a MOD_* modifier mask plus a key code.
type ExtendedHotkey struct {
	ModifiersMask uint16
	VK            uint16
}

// ProcessInfo is a running process as reported by process enumeration.
type ProcessInfo struct {
	PID       int
	ImageName string
}

// WindowHandle is an opaque top-level window handle (HWND on Windows).
type WindowHandle uintptr

// LaunchResult captures what launch-or-activate did for one spec.
type LaunchResult struct {
	Path       string
	SpawnedPID int
	Activated  bool
	ActivePID  int
	ExecutedAt time.Time
	DurationMs int64
}

// SelfInjectedTag marks synthetic input sent by this process. The hook passes
// tagged events through without looking at them.
const SelfInjectedTag uintptr = 0x484B4459

// MatchResult summarizes one run-program match pass.
type MatchResult struct {
	// Matched counts specs whose chord matched the observed state.
	Matched int

	// Refreshed is true when a sentinel spec invalidated the cache.
	Refreshed bool
}
