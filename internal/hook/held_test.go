package hook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// TestHeldKeyTracker_Transitions walks the Idle/Tracking state machine.
func TestHeldKeyTracker_Transitions(t *testing.T) {
	pressed, _ := newTestPressed()
	action, _ := counter()
	pressed.Insert("m1", chord.VKLWin, 500*time.Millisecond, action)
	pressed.Insert("m1", chord.VKRWin, 500*time.Millisecond, action)
	tracker := NewHeldKeyTracker(pressed)

	// Idle + unregistered key stays idle.
	tracker.OnKeyEvent(down('A'))
	_, active := tracker.Tracking()
	assert.False(t, active)

	tracker.OnKeyEvent(up('A'))

	// Idle + registered key starts tracking.
	tracker.OnKeyEvent(down(chord.VKLWin))
	vk, active := tracker.Tracking()
	require.True(t, active)
	assert.Equal(t, chord.VKLWin, vk)
	assert.True(t, pressed.Armed(chord.VKLWin))

	// Key repeat changes nothing.
	tracker.OnKeyEvent(down(chord.VKLWin))
	vk, _ = tracker.Tracking()
	assert.Equal(t, chord.VKLWin, vk)

	// Switching keys disarms the old key and arms the new one.
	tracker.OnKeyEvent(down(chord.VKRWin))
	vk, active = tracker.Tracking()
	require.True(t, active)
	assert.Equal(t, chord.VKRWin, vk)
	assert.False(t, pressed.Armed(chord.VKLWin))
	assert.True(t, pressed.Armed(chord.VKRWin))

	// Keyup of the tracked key returns to idle.
	tracker.OnKeyEvent(up(chord.VKRWin))
	_, active = tracker.Tracking()
	assert.False(t, active)
	assert.False(t, pressed.Armed(chord.VKRWin))
}

// TestHeldKeyTracker_InterruptedHold verifies pressing another key within the
// hold window means the hold action never fires.
func TestHeldKeyTracker_InterruptedHold(t *testing.T) {
	pressed, s := newTestPressed()
	action, calls := counter()
	pressed.Insert("m1", chord.VKLWin, 500*time.Millisecond, action)
	tracker := NewHeldKeyTracker(pressed)

	tracker.OnKeyEvent(down(chord.VKLWin))
	s.Advance(200 * time.Millisecond)
	tracker.OnKeyEvent(down('B'))
	s.Advance(200 * time.Millisecond)
	tracker.OnKeyEvent(up('B'))
	tracker.OnKeyEvent(up(chord.VKLWin))
	s.Advance(time.Second)

	assert.Equal(t, 0, *calls)
}

// TestHeldKeyTracker_FiresOnceWhileHeld verifies the hold action fires once per press.
func TestHeldKeyTracker_FiresOnceWhileHeld(t *testing.T) {
	pressed, s := newTestPressed()
	action, calls := counter()
	pressed.Insert("m1", chord.VKLWin, 500*time.Millisecond, action)
	tracker := NewHeldKeyTracker(pressed)

	tracker.OnKeyEvent(down(chord.VKLWin))
	for i := 0; i < 10; i++ {
		s.Advance(100 * time.Millisecond)
		tracker.OnKeyEvent(down(chord.VKLWin))
	}
	assert.Equal(t, 1, *calls)

	tracker.OnKeyEvent(up(chord.VKLWin))
	tracker.OnKeyEvent(down(chord.VKLWin))
	s.Advance(500 * time.Millisecond)
	assert.Equal(t, 2, *calls)
}

// TestHeldKeyTracker_NoRegistrations verifies no timer is armed when nothing is registered.
func TestHeldKeyTracker_NoRegistrations(t *testing.T) {
	pressed, s := newTestPressed()
	tracker := NewHeldKeyTracker(pressed)

	tracker.OnKeyEvent(down(chord.VKLWin))
	tracker.OnKeyEvent(domain.KeyEvent{Kind: domain.SysKeyDown, VK: chord.VKLMenu})

	_, active := tracker.Tracking()
	assert.False(t, active)
	assert.Equal(t, 0, s.pending())
}

// TestHeldKeyTracker_Reset verifies Reset cancels pending timers.
func TestHeldKeyTracker_Reset(t *testing.T) {
	pressed, s := newTestPressed()
	action, calls := counter()
	pressed.Insert("m1", chord.VKLWin, 500*time.Millisecond, action)
	tracker := NewHeldKeyTracker(pressed)

	tracker.OnKeyEvent(down(chord.VKLWin))
	tracker.Reset()
	s.Advance(time.Second)

	assert.Equal(t, 0, *calls)
	_, active := tracker.Tracking()
	assert.False(t, active)
}
