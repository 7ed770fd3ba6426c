//go:build windows

package infra

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

var (
	procSetWindowsHookExW   = user32DLL.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32DLL.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32DLL.NewProc("CallNextHookEx")
	procGetMessageW         = user32DLL.NewProc("GetMessageW")
	procPeekMessageW        = user32DLL.NewProc("PeekMessageW")
	procPostThreadMessageW  = user32DLL.NewProc("PostThreadMessageW")
	procGetAsyncKeyState    = user32DLL.NewProc("GetAsyncKeyState")
	procSendInput           = user32DLL.NewProc("SendInput")
)

const (
	whKeyboardLL = 13

	wmQuit       = 0x0012
	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105
	pmNoRemove   = 0x0000

	inputKeyboard  = 1
	keyEventFKeyUp = 0x0002

	hookStopTimeout = 2 * time.Second
)

// kbdllHookStruct mirrors KBDLLHOOKSTRUCT.
type kbdllHookStruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

// point mirrors the Win32 POINT struct.
type point struct {
	x int32
	y int32
}

// winMsg mirrors the Win32 MSG struct. The layout must match on 32 and 64 bit.
type winMsg struct {
	hWnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

// keybdInput mirrors KEYBDINPUT.
type keybdInput struct {
	vk        uint16
	scan      uint16
	flags     uint32
	time      uint32
	extraInfo uintptr
}

// keyboardInput mirrors INPUT with the keyboard union member. The padding
// brings it up to the size of the mouse member.
type keyboardInput struct {
	typ     uint32
	ki      keybdInput
	padding uint64
}

// The OS calls hookProc without context, so the active handler lives here.
// Only one LowLevelHook can be installed per process.
var (
	activeHandler atomic.Pointer[func(domain.KeyEvent) domain.Decision]
	hookCallback  uintptr
	callbackOnce  sync.Once
)

// LowLevelHook installs WH_KEYBOARD_LL on a dedicated locked OS thread that
// pumps messages until Uninstall.
type LowLevelHook struct {
	mu       sync.Mutex
	threadID uint32
	doneCh   chan struct{}
	logger   *zap.Logger
}

// NewLowLevelHook creates an uninstalled hook.
func NewLowLevelHook(logger *zap.Logger) *LowLevelHook {
	return &LowLevelHook{logger: logger}
}

type hookReady struct {
	threadID uint32
	err      error
}

// Install starts the hook thread and returns once the hook is in place.
func (h *LowLevelHook) Install(handler func(domain.KeyEvent) domain.Decision) error {
	if handler == nil {
		return errors.New("keyboard handler is required")
	}
	if err := user32DLL.Load(); err != nil {
		return fmt.Errorf("user32.dll is unavailable: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.doneCh != nil {
		return errors.New("keyboard hook already installed")
	}

	callbackOnce.Do(func() {
		hookCallback = windows.NewCallback(hookProc)
	})
	activeHandler.Store(&handler)

	readyCh := make(chan hookReady, 1)
	doneCh := make(chan struct{})
	go h.runLoop(readyCh, doneCh)

	ready := <-readyCh
	if ready.err != nil {
		activeHandler.Store(nil)
		return fmt.Errorf("install keyboard hook: %w", ready.err)
	}
	h.threadID = ready.threadID
	h.doneCh = doneCh
	return nil
}

// Uninstall stops the hook thread, which removes the hook on its way out.
func (h *LowLevelHook) Uninstall() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.doneCh == nil {
		return nil
	}

	doneCh := h.doneCh
	threadID := h.threadID
	h.doneCh = nil
	h.threadID = 0
	activeHandler.Store(nil)

	if res, _, err := procPostThreadMessageW.Call(uintptr(threadID), wmQuit, 0, 0); res == 0 {
		return fmt.Errorf("post quit to hook thread: %w", err)
	}

	select {
	case <-doneCh:
		return nil
	case <-time.After(hookStopTimeout):
		return fmt.Errorf("keyboard hook thread %d did not stop", threadID)
	}
}

func (h *LowLevelHook) runLoop(readyCh chan<- hookReady, doneCh chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(doneCh)

	threadID := windows.GetCurrentThreadId()

	// Forces creation of the thread message queue so WM_QUIT can be posted.
	var qmsg winMsg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&qmsg)), 0, 0, 0, pmNoRemove)

	var module windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
		readyCh <- hookReady{err: fmt.Errorf("get module handle: %w", err)}
		return
	}

	hhook, _, err := procSetWindowsHookExW.Call(whKeyboardLL, hookCallback, uintptr(module), 0)
	if hhook == 0 {
		readyCh <- hookReady{err: err}
		return
	}
	defer func() {
		if res, _, err := procUnhookWindowsHookEx.Call(hhook); res == 0 {
			h.logger.Error("failed to remove keyboard hook", zap.Error(err))
		}
	}()

	readyCh <- hookReady{threadID: threadID}
	h.logger.Info("keyboard hook installed", zap.Uint32("thread_id", threadID))

	for {
		var msg winMsg
		ret, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		switch int32(ret) {
		case -1:
			h.logger.Error("hook message loop failed", zap.Error(err))
			return
		case 0:
			h.logger.Info("keyboard hook removed")
			return
		}
	}
}

func hookProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) >= 0 {
		if handler := activeHandler.Load(); handler != nil {
			kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
			if kind, ok := eventKind(wParam); ok {
				ev := domain.KeyEvent{
					Kind:      kind,
					VK:        domain.VirtualKey(kb.vkCode),
					ExtraInfo: kb.dwExtraInfo,
				}
				if (*handler)(ev) == domain.Swallow {
					return 1
				}
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

func eventKind(wParam uintptr) (domain.KeyEventKind, bool) {
	switch wParam {
	case wmKeyDown:
		return domain.KeyDown, true
	case wmKeyUp:
		return domain.KeyUp, true
	case wmSysKeyDown:
		return domain.SysKeyDown, true
	case wmSysKeyUp:
		return domain.SysKeyUp, true
	}
	return 0, false
}

// AsyncKeyState samples modifiers with GetAsyncKeyState.
type AsyncKeyState struct{}

// NewAsyncKeyState creates a sampler.
func NewAsyncKeyState() *AsyncKeyState {
	return &AsyncKeyState{}
}

// Observe returns the modifiers held right now, with Key set to vk.
func (AsyncKeyState) Observe(vk domain.VirtualKey) domain.ObservedKeyState {
	s := domain.ObservedKeyState{
		LWin:   keyDown(chord.VKLWin),
		RWin:   keyDown(chord.VKRWin),
		LCtrl:  keyDown(chord.VKLControl),
		RCtrl:  keyDown(chord.VKRControl),
		LShift: keyDown(chord.VKLShift),
		RShift: keyDown(chord.VKRShift),
		LAlt:   keyDown(chord.VKLMenu),
		RAlt:   keyDown(chord.VKRMenu),
		Ctrl:   keyDown(chord.VKControl),
		Shift:  keyDown(chord.VKShift),
		Alt:    keyDown(chord.VKMenu),
		Key:    vk,
	}
	s.Win = s.LWin || s.RWin
	return s
}

func keyDown(vk domain.VirtualKey) bool {
	r, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return int16(r) < 0
}

// SendInputInjector sends key-ups tagged with domain.SelfInjectedTag.
type SendInputInjector struct{}

// NewSendInputInjector creates an injector.
func NewSendInputInjector() *SendInputInjector {
	return &SendInputInjector{}
}

// InjectKeyUp sends a single tagged key-up for vk.
func (SendInputInjector) InjectKeyUp(vk domain.VirtualKey) error {
	in := keyboardInput{
		typ: inputKeyboard,
		ki: keybdInput{
			vk:        uint16(vk),
			flags:     keyEventFKeyUp,
			extraInfo: domain.SelfInjectedTag,
		},
	}
	n, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if n != 1 {
		return fmt.Errorf("send input: %w", err)
	}
	return nil
}

// Ensure the Windows keyboard types implement their domain interfaces.
var (
	_ domain.KeyboardHook  = (*LowLevelHook)(nil)
	_ domain.KeyboardState = AsyncKeyState{}
	_ domain.InputInjector = SendInputInjector{}
)
