package domain

import (
	"errors"
	"time"
)

var (
	// ErrUnsupportedPlatform is returned by OS-level components on platforms
	// without a low-level keyboard hook.
	ErrUnsupportedPlatform = errors.New("operation not supported on this platform")

	// ErrNoActiveProfile is returned when the settings name no active profile.
	ErrNoActiveProfile = errors.New("no active keyboard profile")

	// ErrProcessNotFound is returned when a PID has no top-level window or no longer exists.
	ErrProcessNotFound = errors.New("process not found")
)

// ConfigReader provides access to the persisted keyboard configuration.
// Implementation: JSON settings directory read with gjson.
type ConfigReader interface {
	// GetActiveProfileName returns the name of the active profile.
	// Returns ErrNoActiveProfile when none is configured.
	GetActiveProfileName() (string, error)

	// ReadProfileDocument returns the raw profile document.
	ReadProfileDocument(name string) ([]byte, error)
}

// ProcessManager handles OS process operations.
// Implementation: uses gopsutil for enumeration, os/exec for spawning.
type ProcessManager interface {
	// ListRunningProcesses returns every process whose image name can be read.
	ListRunningProcesses() ([]ProcessInfo, error)

	// Spawn starts path with args in dir without waiting for it to exit.
	Spawn(path, args, dir string) (pid int, err error)

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// WindowManager finds and activates top-level windows.
type WindowManager interface {
	// FindTopLevelWindow returns the main top-level window owned by pid.
	FindTopLevelWindow(pid int) (WindowHandle, bool)

	// IsOwnWindow reports whether h belongs to this process.
	IsOwnWindow(h WindowHandle) bool

	// BringToForeground runs the foreground arbitration sequence for h.
	BringToForeground(h WindowHandle) error
}

// KeyboardState samples the global modifier state.
type KeyboardState interface {
	// Observe returns the modifiers currently held, with Key set to vk.
	Observe(vk VirtualKey) ObservedKeyState
}

// InputInjector sends synthetic input tagged so the hook ignores it.
type InputInjector interface {
	// InjectKeyUp sends a single self-tagged key-up for vk.
	InjectKeyUp(vk VirtualKey) error
}

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop cancels the callback; returns false if it already fired or was stopped.
	Stop() bool
}

// Scheduler arms one-shot timers. Callbacks run on a goroutine owned by the scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Module is the descriptor of a loaded feature module.
type Module interface {
	// ID returns the stable module identifier.
	ID() ModuleID

	// Hotkeys returns the module's static hotkeys. OnHotkey receives the index.
	Hotkeys() []HotkeyKey

	// ExtendedHotkey returns the module's single raw OS hotkey, if any.
	ExtendedHotkey() (ExtendedHotkey, bool)

	IsEnabled() bool

	// HoldDuration is how long the Windows key must be held before OnExtendedHotkey fires.
	HoldDuration() time.Duration

	// TracksHeldWinKey opts the module into the "Windows key held" gesture.
	TracksHeldWinKey() bool

	// OnHotkey runs the action for static hotkey index. Returns true if handled.
	OnHotkey(index int) bool

	// OnExtendedHotkey runs the module's extended action.
	OnExtendedHotkey()
}

// LegacyHoldModule is implemented by modules that also want left-Ctrl and
// left-Shift hold gestures next to the Windows keys.
type LegacyHoldModule interface {
	TracksLegacyHeldModifiers() bool
}

// ExtendedHotkeyRegistrar registers raw modifier-mask hotkeys with the OS.
// fire runs on a registrar-owned goroutine each time the hotkey is pressed.
type ExtendedHotkeyRegistrar interface {
	Register(id ModuleID, hk ExtendedHotkey, fire func()) error
	Unregister(id ModuleID) error
}

// KeyboardHook is the single system-wide low-level keyboard interception point.
type KeyboardHook interface {
	// Install starts delivering events to handler. handler runs on the
	// hook thread and must return quickly.
	Install(handler func(KeyEvent) Decision) error

	// Uninstall removes the hook and stops its thread.
	Uninstall() error
}
