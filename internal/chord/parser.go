package chord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

const (
	// TargetDelimiter separates path, args and working directory in a targetApp value.
	TargetDelimiter = "<|||>"

	// legacyTargetDelimiter is accepted when TargetDelimiter is absent.
	// '|' cannot appear in a Windows path.
	legacyTargetDelimiter = "|"

	keySeparator = ";"
)

// Parse errors
var (
	ErrEmptyChord     = errors.New("empty chord")
	ErrInvalidKeyCode = errors.New("invalid virtual key code")
	ErrNoActionKey    = errors.New("chord has no action key")
	ErrEmptyTarget    = errors.New("empty target app")
)

// ParseError reports a malformed chord or target spec entry.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseKeyCodes splits a semicolon-separated list of virtual key codes.
// Codes above 0xFF are rejected except the VKDisabled and VKWinBoth pseudo codes.
func ParseKeyCodes(originalKeys string) ([]domain.VirtualKey, error) {
	trimmed := strings.TrimSpace(originalKeys)
	if trimmed == "" {
		return nil, &ParseError{Field: "originalKeys", Value: originalKeys, Err: ErrEmptyChord}
	}

	parts := strings.Split(trimmed, keySeparator)
	keys := make([]domain.VirtualKey, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			// Trailing separators are tolerated
			continue
		}
		code, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, &ParseError{Field: "originalKeys", Value: originalKeys, Err: fmt.Errorf("%w: %q", ErrInvalidKeyCode, part)}
		}
		vk := domain.VirtualKey(code)
		if vk > 0xFF && vk != VKDisabled && vk != VKWinBoth {
			return nil, &ParseError{Field: "originalKeys", Value: originalKeys, Err: fmt.Errorf("%w: %q out of range", ErrInvalidKeyCode, part)}
		}
		keys = append(keys, vk)
	}
	if len(keys) == 0 {
		return nil, &ParseError{Field: "originalKeys", Value: originalKeys, Err: ErrEmptyChord}
	}
	return keys, nil
}

// ParseRunProgramSpec parses a persisted chord and its target app into a RunProgramSpec.
//
// Each modifier code sets that modifier's side: L/R codes pick Left/Right, the generic
// codes (and VKWinBoth) pick Both. A later code for the same modifier replaces the
// earlier one. Any other code becomes the action key; the last one wins.
func ParseRunProgramSpec(originalKeys, targetApp string) (domain.RunProgramSpec, error) {
	var spec domain.RunProgramSpec

	keys, err := ParseKeyCodes(originalKeys)
	if err != nil {
		return spec, err
	}
	for _, vk := range keys {
		setKey(&spec, vk)
	}
	if spec.ActionKey == 0 {
		return spec, &ParseError{Field: "originalKeys", Value: originalKeys, Err: ErrNoActionKey}
	}

	path, args, dir := SplitTarget(targetApp)
	if path == "" {
		return spec, &ParseError{Field: "targetApp", Value: targetApp, Err: ErrEmptyTarget}
	}
	spec.Path = path
	spec.Args = args
	spec.Dir = dir

	return spec, nil
}

// SplitTarget splits a targetApp value into path, args and working directory.
// Missing parts are returned empty.
func SplitTarget(targetApp string) (path, args, dir string) {
	delimiter := TargetDelimiter
	if !strings.Contains(targetApp, TargetDelimiter) {
		delimiter = legacyTargetDelimiter
	}

	parts := strings.SplitN(targetApp, delimiter, 3)
	path = cleanPath(parts[0])
	if len(parts) >= 2 {
		args = strings.TrimSpace(parts[1])
	}
	if len(parts) >= 3 {
		dir = cleanPath(parts[2])
	}
	return path, args, dir
}

// JoinTarget is the inverse of SplitTarget.
func JoinTarget(path, args, dir string) string {
	if args == "" && dir == "" {
		return path
	}
	return strings.Join([]string{path, args, dir}, TargetDelimiter)
}

// cleanPath drops surrounding whitespace and quotes from a path.
func cleanPath(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, `"'`)
}

func setKey(spec *domain.RunProgramSpec, vk domain.VirtualKey) {
	switch vk {
	case VKWinBoth:
		spec.Win = domain.SideBoth
	case VKLWin:
		spec.Win = domain.SideLeft
	case VKRWin:
		spec.Win = domain.SideRight
	case VKControl:
		spec.Ctrl = domain.SideBoth
	case VKLControl:
		spec.Ctrl = domain.SideLeft
	case VKRControl:
		spec.Ctrl = domain.SideRight
	case VKMenu:
		spec.Alt = domain.SideBoth
	case VKLMenu:
		spec.Alt = domain.SideLeft
	case VKRMenu:
		spec.Alt = domain.SideRight
	case VKShift:
		spec.Shift = domain.SideBoth
	case VKLShift:
		spec.Shift = domain.SideLeft
	case VKRShift:
		spec.Shift = domain.SideRight
	default:
		spec.ActionKey = vk
	}
}
