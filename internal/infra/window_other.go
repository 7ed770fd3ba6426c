//go:build !windows

package infra

import "github.com/eliteGoblin/focusd/hotkeyd/internal/domain"

// WindowManagerImpl has no window activation outside Windows. A running
// program is never activated; only programs that are not running get started.
type WindowManagerImpl struct{}

// NewWindowManager creates a window manager.
func NewWindowManager() *WindowManagerImpl {
	return &WindowManagerImpl{}
}

func (wm *WindowManagerImpl) FindTopLevelWindow(int) (domain.WindowHandle, bool) {
	return 0, false
}

func (wm *WindowManagerImpl) IsOwnWindow(domain.WindowHandle) bool { return false }

func (wm *WindowManagerImpl) BringToForeground(domain.WindowHandle) error {
	return domain.ErrUnsupportedPlatform
}

// Ensure WindowManagerImpl implements domain.WindowManager.
var _ domain.WindowManager = (*WindowManagerImpl)(nil)
