package hook

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// TimerID derives the timer identifier of a module's hold gesture on vk.
// The high half is a hash of the module id, the low half the key code.
func TimerID(module domain.ModuleID, vk domain.VirtualKey) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(module))
	return (h.Sum32()&0xFFFF)<<16 | uint32(vk)&0xFFFF
}

type pressedRegistration struct {
	module   domain.ModuleID
	vk       domain.VirtualKey
	duration time.Duration
	action   domain.Action
	timerID  uint32

	timer domain.Timer
	// token identifies the current arming; zero when disarmed.
	token uint64
}

// PressedKeyRegistry holds "key held for a duration" registrations and their timers.
type PressedKeyRegistry struct {
	mu        sync.Mutex
	entries   map[domain.VirtualKey][]*pressedRegistration
	nextToken uint64

	// count mirrors the number of registrations so the hook can skip
	// all hold tracking without taking the lock.
	count atomic.Int64

	scheduler domain.Scheduler
	logger    *zap.Logger
}

// NewPressedKeyRegistry creates an empty registry that arms timers on scheduler.
func NewPressedKeyRegistry(scheduler domain.Scheduler, logger *zap.Logger) *PressedKeyRegistry {
	return &PressedKeyRegistry{
		entries:   make(map[domain.VirtualKey][]*pressedRegistration),
		scheduler: scheduler,
		logger:    logger,
	}
}

// Insert registers a hold gesture and returns its timer identifier.
func (r *PressedKeyRegistry) Insert(module domain.ModuleID, vk domain.VirtualKey, duration time.Duration, action domain.Action) uint32 {
	id := TimerID(module, vk)

	r.mu.Lock()
	r.entries[vk] = append(r.entries[vk], &pressedRegistration{
		module:   module,
		vk:       vk,
		duration: duration,
		action:   action,
		timerID:  id,
	})
	r.mu.Unlock()

	r.count.Add(1)
	return id
}

// RemoveAll cancels and removes every registration owned by module.
func (r *PressedKeyRegistry) RemoveAll(module domain.ModuleID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for vk, regs := range r.entries {
		kept := make([]*pressedRegistration, 0, len(regs))
		for _, reg := range regs {
			if reg.module != module {
				kept = append(kept, reg)
				continue
			}
			r.disarmLocked(reg)
			removed++
		}
		if len(kept) == 0 {
			delete(r.entries, vk)
		} else {
			r.entries[vk] = kept
		}
	}
	r.count.Add(-int64(removed))
	return removed
}

// Empty reports whether no hold gesture is registered. It never blocks.
func (r *PressedKeyRegistry) Empty() bool {
	return r.count.Load() == 0
}

// Len returns the number of registrations.
func (r *PressedKeyRegistry) Len() int {
	return int(r.count.Load())
}

// Has reports whether vk has at least one registration.
func (r *PressedKeyRegistry) Has(vk domain.VirtualKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries[vk]) > 0
}

// Arm starts one timer per registration on vk. Registrations that are
// already armed are left alone. Returns the number of timers started.
func (r *PressedKeyRegistry) Arm(vk domain.VirtualKey) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	armed := 0
	for _, reg := range r.entries[vk] {
		if reg.token != 0 {
			continue
		}
		r.nextToken++
		token := r.nextToken
		timerID := reg.timerID
		reg.token = token
		reg.timer = r.scheduler.AfterFunc(reg.duration, func() {
			r.expire(timerID, token)
		})
		armed++
	}
	return armed
}

// Disarm cancels every armed timer on vk. Returns the number cancelled.
func (r *PressedKeyRegistry) Disarm(vk domain.VirtualKey) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	disarmed := 0
	for _, reg := range r.entries[vk] {
		if r.disarmLocked(reg) {
			disarmed++
		}
	}
	return disarmed
}

// Armed reports whether any timer on vk is pending.
func (r *PressedKeyRegistry) Armed(vk domain.VirtualKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.entries[vk] {
		if reg.token != 0 {
			return true
		}
	}
	return false
}

func (r *PressedKeyRegistry) disarmLocked(reg *pressedRegistration) bool {
	if reg.token == 0 {
		return false
	}
	if reg.timer != nil {
		reg.timer.Stop()
	}
	reg.timer = nil
	reg.token = 0
	return true
}

type pressedSnapshot struct {
	module domain.ModuleID
	vk     domain.VirtualKey
	action domain.Action
}

// expire runs when a timer fires. A stale token means the timer was
// disarmed after the scheduler had already started the callback.
// Only the registration armed with token fires: timer ids keep 16 bits of
// the module hash, so two modules can share one on the same key.
func (r *PressedKeyRegistry) expire(timerID uint32, token uint64) {
	r.mu.Lock()
	var (
		fired pressedSnapshot
		live  bool
	)
	for _, regs := range r.entries {
		for _, reg := range regs {
			if reg.timerID != timerID || reg.token != token {
				continue
			}
			reg.token = 0
			reg.timer = nil
			fired = pressedSnapshot{module: reg.module, vk: reg.vk, action: reg.action}
			live = true
		}
	}
	r.mu.Unlock()

	if live {
		r.invoke(fired)
	}
}

func (r *PressedKeyRegistry) invoke(s pressedSnapshot) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("hold action panicked",
				zap.String("module", string(s.module)),
				zap.Uint32("vk", uint32(s.vk)),
				zap.Any("panic", rec))
		}
	}()

	r.logger.Debug("hold gesture fired",
		zap.String("module", string(s.module)),
		zap.Uint32("vk", uint32(s.vk)))
	s.action()
}
