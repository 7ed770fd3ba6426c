package hook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// TestExtendedHotkeyTable_SingleSlot verifies a module holds one extended hotkey at a time.
func TestExtendedHotkeyTable_SingleSlot(t *testing.T) {
	table := NewExtendedHotkeyTable(zap.NewNop())
	a := domain.ExtendedHotkey{ModifiersMask: chord.ModWin, VK: 'A'}
	b := domain.ExtendedHotkey{ModifiersMask: chord.ModWin, VK: 'B'}
	var fired []string

	table.Set("m1", a, func() { fired = append(fired, "a") })
	table.Set("m1", b, func() { fired = append(fired, "b") })

	assert.Equal(t, 1, table.Len())
	assert.False(t, table.Trigger(a))
	assert.True(t, table.Trigger(b))
	assert.Equal(t, []string{"b"}, fired)

	got, ok := table.Get("m1")
	assert.True(t, ok)
	assert.Equal(t, b, got)
}

// TestExtendedHotkeyTable_EarliestWins verifies collisions resolve to the earliest module.
func TestExtendedHotkeyTable_EarliestWins(t *testing.T) {
	table := NewExtendedHotkeyTable(zap.NewNop())
	hk := domain.ExtendedHotkey{ModifiersMask: chord.ModControl | chord.ModShift, VK: 'E'}
	var fired []string

	table.Set("first", hk, func() { fired = append(fired, "first") })
	table.Set("second", hk, func() { fired = append(fired, "second") })
	table.Trigger(hk)

	assert.Equal(t, []string{"first"}, fired)

	assert.True(t, table.Remove("first"))
	assert.False(t, table.Remove("first"))
	table.Trigger(hk)
	assert.Equal(t, []string{"first", "second"}, fired)
}

// TestExtendedHotkeyTable_PanicContained verifies a panicking callback does not escape.
func TestExtendedHotkeyTable_PanicContained(t *testing.T) {
	table := NewExtendedHotkeyTable(zap.NewNop())
	hk := domain.ExtendedHotkey{VK: 0x70}
	table.Set("m1", hk, func() { panic("boom") })

	assert.NotPanics(t, func() { table.Trigger(hk) })
}
