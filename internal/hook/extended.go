package hook

import (
	"sync"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

type extendedSlot struct {
	seq    uint64
	hotkey domain.ExtendedHotkey
	fire   func()
}

// ExtendedHotkeyTable holds at most one raw modifier-mask hotkey per module.
// Setting a module's slot again replaces the previous hotkey.
type ExtendedHotkeyTable struct {
	mu      sync.Mutex
	slots   map[domain.ModuleID]extendedSlot
	nextSeq uint64
	logger  *zap.Logger
}

// NewExtendedHotkeyTable creates an empty table.
func NewExtendedHotkeyTable(logger *zap.Logger) *ExtendedHotkeyTable {
	return &ExtendedHotkeyTable{
		slots:  make(map[domain.ModuleID]extendedSlot),
		logger: logger,
	}
}

// Set stores the module's extended hotkey.
func (t *ExtendedHotkeyTable) Set(module domain.ModuleID, hk domain.ExtendedHotkey, fire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextSeq++
	t.slots[module] = extendedSlot{seq: t.nextSeq, hotkey: hk, fire: fire}
}

// Remove clears the module's slot. Returns false if it was empty.
func (t *ExtendedHotkeyTable) Remove(module domain.ModuleID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.slots[module]; !ok {
		return false
	}
	delete(t.slots, module)
	return true
}

// Get returns the module's extended hotkey.
func (t *ExtendedHotkeyTable) Get(module domain.ModuleID) (domain.ExtendedHotkey, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	slot, ok := t.slots[module]
	return slot.hotkey, ok
}

// Trigger runs the callback bound to hk. When several modules share hk the
// earliest one set wins. Returns false when nothing is bound.
func (t *ExtendedHotkeyTable) Trigger(hk domain.ExtendedHotkey) bool {
	t.mu.Lock()
	var (
		owner domain.ModuleID
		best  extendedSlot
		found bool
	)
	for id, slot := range t.slots {
		if slot.hotkey != hk {
			continue
		}
		if !found || slot.seq < best.seq {
			owner, best, found = id, slot, true
		}
	}
	t.mu.Unlock()

	if !found {
		return false
	}

	defer func() {
		if rec := recover(); rec != nil {
			t.logger.Error("extended hotkey action panicked",
				zap.String("module", string(owner)),
				zap.Any("panic", rec))
		}
	}()
	best.fire()
	return true
}

// Len returns the number of occupied slots.
func (t *ExtendedHotkeyTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots)
}
