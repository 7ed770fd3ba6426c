// Package hook implements the centralized keyboard hook: the hotkey and held-key
// registries, the held-key state machine and the per-event dispatcher.
package hook

import (
	"sync"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

type hotkeyRegistration struct {
	seq    uint64
	module domain.ModuleID
	action domain.Action
}

// HotkeyRegistry maps chords to the modules' actions.
//
// Several modules may register the same chord. Lookup resolves to the
// earliest registration still present (first-registered-wins).
type HotkeyRegistry struct {
	mu      sync.Mutex
	entries map[domain.HotkeyKey][]hotkeyRegistration
	nextSeq uint64
}

// NewHotkeyRegistry creates an empty registry.
func NewHotkeyRegistry() *HotkeyRegistry {
	return &HotkeyRegistry{
		entries: make(map[domain.HotkeyKey][]hotkeyRegistration),
	}
}

// Insert adds a registration. It returns true when the chord was already
// claimed, in which case the new registration is shadowed.
func (r *HotkeyRegistry) Insert(module domain.ModuleID, hotkey domain.HotkeyKey, action domain.Action) (shadowed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	existing := r.entries[hotkey]
	// Sequence numbers only grow, so appending keeps registration order.
	r.entries[hotkey] = append(existing, hotkeyRegistration{
		seq:    r.nextSeq,
		module: module,
		action: action,
	})
	return len(existing) > 0
}

// Lookup returns the action registered for exactly this chord.
// The action is copied out; the caller invokes it after the lock is released.
func (r *HotkeyRegistry) Lookup(hotkey domain.HotkeyKey) (domain.Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	regs := r.entries[hotkey]
	if len(regs) == 0 {
		return nil, false
	}
	return regs[0].action, true
}

// Owner returns the module whose action Lookup would return.
func (r *HotkeyRegistry) Owner(hotkey domain.HotkeyKey) (domain.ModuleID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	regs := r.entries[hotkey]
	if len(regs) == 0 {
		return "", false
	}
	return regs[0].module, true
}

// RemoveAll drops every registration owned by module. Other modules'
// registrations for the same chords are kept in order.
func (r *HotkeyRegistry) RemoveAll(module domain.ModuleID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for hotkey, regs := range r.entries {
		kept := regs[:0]
		for _, reg := range regs {
			if reg.module == module {
				removed++
				continue
			}
			kept = append(kept, reg)
		}
		if len(kept) == 0 {
			delete(r.entries, hotkey)
			continue
		}
		// Clear the tail so dropped actions can be collected.
		for i := len(kept); i < len(regs); i++ {
			regs[i] = hotkeyRegistration{}
		}
		r.entries[hotkey] = kept
	}
	return removed
}

// Len returns the number of registrations.
func (r *HotkeyRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, regs := range r.entries {
		n += len(regs)
	}
	return n
}

// ModuleHotkeys returns the chords registered by module, in no particular order.
func (r *HotkeyRegistry) ModuleHotkeys(module domain.ModuleID) []domain.HotkeyKey {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.HotkeyKey
	for hotkey, regs := range r.entries {
		for _, reg := range regs {
			if reg.module == module {
				out = append(out, hotkey)
			}
		}
	}
	return out
}
