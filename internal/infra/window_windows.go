//go:build windows

package infra

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

var (
	user32DLL = windows.NewLazySystemDLL("user32.dll")

	procAllowSetForegroundWindow = user32DLL.NewProc("AllowSetForegroundWindow")
	procGetWindow                = user32DLL.NewProc("GetWindow")
	procIsIconic                 = user32DLL.NewProc("IsIconic")
	procShowWindow               = user32DLL.NewProc("ShowWindow")
	procSetWindowPos             = user32DLL.NewProc("SetWindowPos")
	procSetForegroundWindow      = user32DLL.NewProc("SetForegroundWindow")
	procSetActiveWindow          = user32DLL.NewProc("SetActiveWindow")
)

const (
	gwOwner   = 4
	swShow    = 5
	swRestore = 9

	swpNoSize = 0x0001
	swpNoMove = 0x0002

	asfwAny = 0xFFFFFFFF
)

var (
	hwndTopmost   = ^uintptr(0) // (HWND)-1
	hwndNoTopmost = ^uintptr(1) // (HWND)-2
)

// WindowManagerImpl implements domain.WindowManager with user32.
type WindowManagerImpl struct {
	privilegeOnce sync.Once
	privilegeErr  error
}

// NewWindowManager creates a window manager.
func NewWindowManager() *WindowManagerImpl {
	return &WindowManagerImpl{}
}

// FindTopLevelWindow returns the first visible unowned top-level window of pid.
func (wm *WindowManagerImpl) FindTopLevelWindow(pid int) (domain.WindowHandle, bool) {
	var found windows.HWND
	cb := windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		var owner uint32
		if _, err := windows.GetWindowThreadProcessId(hwnd, &owner); err != nil {
			return 1
		}
		if int(owner) != pid || !windows.IsWindowVisible(hwnd) {
			return 1
		}
		if o, _, _ := procGetWindow.Call(uintptr(hwnd), gwOwner); o != 0 {
			return 1
		}
		found = hwnd
		return 0
	})
	// EnumWindows reports an error when the callback stops early.
	_ = windows.EnumWindows(cb, unsafe.Pointer(nil))

	return domain.WindowHandle(found), found != 0
}

// IsOwnWindow reports whether h belongs to this process.
func (wm *WindowManagerImpl) IsOwnWindow(h domain.WindowHandle) bool {
	var owner uint32
	if _, err := windows.GetWindowThreadProcessId(windows.HWND(h), &owner); err != nil {
		return false
	}
	return int(owner) == os.Getpid()
}

// BringToForeground restores h and makes it the foreground window. The OS
// only honours SetForegroundWindow for processes it considers allowed, so
// the sequence enables SeDebugPrivilege, opens the foreground lock and
// pulses the window topmost before asking.
func (wm *WindowManagerImpl) BringToForeground(h domain.WindowHandle) error {
	hwnd := uintptr(h)
	if hwnd == 0 {
		return domain.ErrProcessNotFound
	}

	wm.privilegeOnce.Do(func() {
		wm.privilegeErr = enablePrivilege("SeDebugPrivilege")
	})

	procAllowSetForegroundWindow.Call(asfwAny)

	if iconic, _, _ := procIsIconic.Call(hwnd); iconic != 0 {
		procShowWindow.Call(hwnd, swRestore)
	} else {
		procShowWindow.Call(hwnd, swShow)
	}

	procSetWindowPos.Call(hwnd, hwndTopmost, 0, 0, 0, 0, swpNoMove|swpNoSize)
	procSetWindowPos.Call(hwnd, hwndNoTopmost, 0, 0, 0, 0, swpNoMove|swpNoSize)

	if ok, _, err := procSetForegroundWindow.Call(hwnd); ok == 0 {
		if wm.privilegeErr != nil {
			return fmt.Errorf("set foreground window: %v (privilege: %w)", err, wm.privilegeErr)
		}
		return fmt.Errorf("set foreground window: %w", err)
	}
	procSetActiveWindow.Call(hwnd)
	return nil
}

// enablePrivilege turns on a named privilege in the process token.
func enablePrivilege(name string) error {
	var token windows.Token
	if err := windows.OpenProcessToken(windows.CurrentProcess(),
		windows.TOKEN_ADJUST_PRIVILEGES|windows.TOKEN_QUERY, &token); err != nil {
		return fmt.Errorf("open process token: %w", err)
	}
	defer token.Close()

	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	var luid windows.LUID
	if err := windows.LookupPrivilegeValue(nil, namePtr, &luid); err != nil {
		return fmt.Errorf("lookup %s: %w", name, err)
	}

	tp := windows.Tokenprivileges{PrivilegeCount: 1}
	tp.Privileges[0] = windows.LUIDAndAttributes{Luid: luid, Attributes: windows.SE_PRIVILEGE_ENABLED}
	if err := windows.AdjustTokenPrivileges(token, false, &tp, 0, nil, nil); err != nil {
		return fmt.Errorf("adjust token privileges: %w", err)
	}
	return nil
}

// Ensure WindowManagerImpl implements domain.WindowManager.
var _ domain.WindowManager = (*WindowManagerImpl)(nil)
