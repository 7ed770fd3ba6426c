package hook

import (
	"sync"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// HeldKeyTracker follows the single key currently being timed and arms or
// disarms its hold timers as keys go down and up.
//
// States are Idle and Tracking(vk). A key-repeat of the tracked key changes
// nothing; a different key cancels the tracked key's timers first.
type HeldKeyTracker struct {
	mu       sync.Mutex
	pressed  *PressedKeyRegistry
	tracking domain.VirtualKey
	active   bool
}

// NewHeldKeyTracker creates a tracker in the Idle state.
func NewHeldKeyTracker(pressed *PressedKeyRegistry) *HeldKeyTracker {
	return &HeldKeyTracker{pressed: pressed}
}

// OnKeyEvent feeds one hook event into the state machine.
func (t *HeldKeyTracker) OnKeyEvent(ev domain.KeyEvent) {
	if !ev.Kind.IsDown() && !ev.Kind.IsUp() {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active && t.pressed.Empty() {
		return
	}

	if ev.Kind.IsDown() {
		t.keyDown(ev.VK)
		return
	}
	t.keyUp(ev.VK)
}

func (t *HeldKeyTracker) keyDown(vk domain.VirtualKey) {
	if t.active {
		if t.tracking == vk {
			return
		}
		t.pressed.Disarm(t.tracking)
		t.tracking = vk
		t.pressed.Arm(vk)
		return
	}
	if t.pressed.Arm(vk) > 0 {
		t.tracking = vk
		t.active = true
	}
}

func (t *HeldKeyTracker) keyUp(vk domain.VirtualKey) {
	t.pressed.Disarm(vk)
	if t.active && t.tracking == vk {
		t.active = false
		t.tracking = 0
	}
}

// Tracking returns the key being timed, if any.
func (t *HeldKeyTracker) Tracking() (domain.VirtualKey, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tracking, t.active
}

// Reset cancels the tracked key's timers and returns to Idle.
func (t *HeldKeyTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active {
		t.pressed.Disarm(t.tracking)
	}
	t.active = false
	t.tracking = 0
}
