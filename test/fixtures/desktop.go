package fixtures

import (
	"os"
	"sync"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/usecase"
)

// SpawnCall is one recorded Spawn.
type SpawnCall struct {
	Path string
	Args string
	Dir  string
}

// FakeDesktop is an in-memory process table with top-level windows. It
// implements domain.ProcessManager and domain.WindowManager.
type FakeDesktop struct {
	mu        sync.Mutex
	nextPID   int
	processes []domain.ProcessInfo
	windows   map[int]domain.WindowHandle
	spawned   []SpawnCall
	activated []domain.WindowHandle
}

// NewFakeDesktop creates an empty desktop.
func NewFakeDesktop() *FakeDesktop {
	return &FakeDesktop{
		nextPID: 1000,
		windows: make(map[int]domain.WindowHandle),
	}
}

// Start adds a running process, with a window if withWindow is set.
func (d *FakeDesktop) Start(imageName string, withWindow bool) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.startLocked(imageName, withWindow)
}

func (d *FakeDesktop) startLocked(imageName string, withWindow bool) int {
	d.nextPID++
	pid := d.nextPID
	d.processes = append(d.processes, domain.ProcessInfo{PID: pid, ImageName: imageName})
	if withWindow {
		d.windows[pid] = domain.WindowHandle(pid * 16)
	}
	return pid
}

// Spawned returns the recorded Spawn calls.
func (d *FakeDesktop) Spawned() []SpawnCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]SpawnCall(nil), d.spawned...)
}

// Activated returns the windows brought to the foreground.
func (d *FakeDesktop) Activated() []domain.WindowHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.WindowHandle(nil), d.activated...)
}

func (d *FakeDesktop) ListRunningProcesses() ([]domain.ProcessInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.ProcessInfo(nil), d.processes...), nil
}

// Spawn records path and adds it as a windowed process.
func (d *FakeDesktop) Spawn(path, args, dir string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spawned = append(d.spawned, SpawnCall{Path: path, Args: args, Dir: dir})
	return d.startLocked(usecase.FileName(path), true), nil
}

func (d *FakeDesktop) GetCurrentPID() int { return os.Getpid() }

func (d *FakeDesktop) FindTopLevelWindow(pid int) (domain.WindowHandle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.windows[pid]
	return h, ok
}

func (d *FakeDesktop) IsOwnWindow(domain.WindowHandle) bool { return false }

func (d *FakeDesktop) BringToForeground(h domain.WindowHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.activated = append(d.activated, h)
	return nil
}

var (
	_ domain.ProcessManager = (*FakeDesktop)(nil)
	_ domain.WindowManager  = (*FakeDesktop)(nil)
)
