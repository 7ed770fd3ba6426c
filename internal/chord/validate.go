package chord

import (
	"fmt"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// ErrorType classifies why a run-program entry cannot be applied.
type ErrorType int

const (
	NoError ErrorType = iota
	RunProgramAtleast2Keys
	RunProgramStartWithModifier
	RunProgramCannotHaveRepeatedModifier
	RunProgramOneActionKey
	RunProgramNotMoreThanOneActionKey
	RunProgramDisableAsActionKey
	WinL
	CtrlAltDel
	SameRunProgramPreviouslyMapped
	MissingTargetApp
	MalformedEntry
)

var errorTypeText = map[ErrorType]string{
	NoError:                              "no error",
	RunProgramAtleast2Keys:               "shortcut must have at least 2 keys",
	RunProgramStartWithModifier:          "shortcut must start with a modifier key",
	RunProgramCannotHaveRepeatedModifier: "shortcut cannot repeat a modifier",
	RunProgramOneActionKey:               "shortcut must have an action key",
	RunProgramNotMoreThanOneActionKey:    "shortcut cannot have more than one action key",
	RunProgramDisableAsActionKey:         "disabled key cannot be the action key",
	WinL:                                 "Win+L cannot be remapped",
	CtrlAltDel:                           "Ctrl+Alt+Del cannot be remapped",
	SameRunProgramPreviouslyMapped:       "shortcut is already mapped",
	MissingTargetApp:                     "target app is empty",
	MalformedEntry:                       "entry cannot be parsed",
}

func (t ErrorType) String() string {
	if s, ok := errorTypeText[t]; ok {
		return s
	}
	return fmt.Sprintf("error type %d", int(t))
}

// Issue is one rejected entry in a validated buffer.
type Issue struct {
	Index int
	Entry domain.RunProgramEntry
	Type  ErrorType
}

func (i Issue) String() string {
	return fmt.Sprintf("entry %d (%s): %s", i.Index, i.Entry.OriginalKeys, i.Type)
}

// ValidationResult is the outcome of validating a run-program buffer.
type ValidationResult struct {
	Issues []Issue
}

// OK reports whether every entry is valid.
func (r ValidationResult) OK() bool {
	return len(r.Issues) == 0
}

// Validate checks a buffer of run-program entries the way the settings editor
// does before saving. Invalid entries are reported, not removed.
func Validate(entries []domain.RunProgramEntry) ValidationResult {
	var result ValidationResult
	seen := make(map[chordIdentity]int, len(entries))

	for i, entry := range entries {
		t := validateEntry(entry)
		if t == NoError {
			key := identityOf(entry)
			if _, dup := seen[key]; dup {
				t = SameRunProgramPreviouslyMapped
			} else {
				seen[key] = i
			}
		}
		if t != NoError {
			result.Issues = append(result.Issues, Issue{Index: i, Entry: entry, Type: t})
		}
	}
	return result
}

// ValidateEntry checks a single entry in isolation.
func ValidateEntry(entry domain.RunProgramEntry) ErrorType {
	return validateEntry(entry)
}

func validateEntry(entry domain.RunProgramEntry) ErrorType {
	keys, err := ParseKeyCodes(entry.OriginalKeys)
	if err != nil {
		return MalformedEntry
	}
	if len(keys) < 2 {
		return RunProgramAtleast2Keys
	}
	if !IsModifier(keys[0]) {
		return RunProgramStartWithModifier
	}

	var actionKeys int
	modifierSeen := make(map[string]bool, 4)
	for _, vk := range keys {
		if vk == VKDisabled {
			return RunProgramDisableAsActionKey
		}
		if IsModifier(vk) {
			group := modifierGroup(vk)
			if modifierSeen[group] {
				return RunProgramCannotHaveRepeatedModifier
			}
			modifierSeen[group] = true
			continue
		}
		actionKeys++
	}
	switch {
	case actionKeys == 0:
		return RunProgramOneActionKey
	case actionKeys > 1:
		return RunProgramNotMoreThanOneActionKey
	}

	spec, err := ParseRunProgramSpec(entry.OriginalKeys, entry.TargetApp)
	if err != nil {
		return MissingTargetApp
	}
	if isWinL(spec) {
		return WinL
	}
	if isCtrlAltDel(spec) {
		return CtrlAltDel
	}
	return NoError
}

func modifierGroup(vk domain.VirtualKey) string {
	switch vk {
	case VKWinBoth, VKLWin, VKRWin:
		return "win"
	case VKControl, VKLControl, VKRControl:
		return "ctrl"
	case VKMenu, VKLMenu, VKRMenu:
		return "alt"
	default:
		return "shift"
	}
}

func isWinL(spec domain.RunProgramSpec) bool {
	return spec.Win != domain.SideDisabled &&
		spec.Ctrl == domain.SideDisabled &&
		spec.Shift == domain.SideDisabled &&
		spec.Alt == domain.SideDisabled &&
		spec.ActionKey == 'L'
}

func isCtrlAltDel(spec domain.RunProgramSpec) bool {
	return spec.Ctrl != domain.SideDisabled &&
		spec.Alt != domain.SideDisabled &&
		spec.Win == domain.SideDisabled &&
		spec.Shift == domain.SideDisabled &&
		spec.ActionKey == VKDelete
}

// chordIdentity is what two entries must share to trigger the same launch:
// the side of every modifier plus the action key. Code order does not matter.
type chordIdentity struct {
	win, ctrl, shift, alt domain.ModifierSide
	key                   domain.VirtualKey
}

func identityOf(entry domain.RunProgramEntry) chordIdentity {
	spec, _ := ParseRunProgramSpec(entry.OriginalKeys, entry.TargetApp)
	return chordIdentity{
		win:   spec.Win,
		ctrl:  spec.Ctrl,
		shift: spec.Shift,
		alt:   spec.Alt,
		key:   spec.ActionKey,
	}
}
