// Package usecase contains application business logic.
package usecase

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// ProgramLauncherImpl brings a running program forward or starts it.
type ProgramLauncherImpl struct {
	processManager domain.ProcessManager
	windowManager  domain.WindowManager
	logger         *zap.Logger
}

// NewProgramLauncher creates a launch-or-activate use case.
func NewProgramLauncher(
	pm domain.ProcessManager,
	wm domain.WindowManager,
	logger *zap.Logger,
) *ProgramLauncherImpl {
	return &ProgramLauncherImpl{
		processManager: pm,
		windowManager:  wm,
		logger:         logger,
	}
}

// LaunchOrActivate activates the first running process whose image name
// matches the spec's file name and owns a top-level window that is not
// ours. With no matching process it spawns spec.Path.
func (l *ProgramLauncherImpl) LaunchOrActivate(spec domain.RunProgramSpec) (result domain.LaunchResult, err error) {
	start := time.Now()
	result = domain.LaunchResult{
		Path:       spec.Path,
		ExecutedAt: start,
	}
	defer func() {
		result.DurationMs = time.Since(start).Milliseconds()
	}()

	name := FileName(spec.Path)
	procs, err := l.processManager.ListRunningProcesses()
	if err != nil {
		return result, fmt.Errorf("list running processes: %w", err)
	}

	var running []int
	for _, p := range procs {
		if strings.EqualFold(p.ImageName, name) {
			running = append(running, p.PID)
		}
	}

	if len(running) == 0 {
		pid, err := l.processManager.Spawn(spec.Path, spec.Args, spec.Dir)
		if err != nil {
			return result, fmt.Errorf("spawn %s: %w", spec.Path, err)
		}
		result.SpawnedPID = pid
		l.logger.Info("started program",
			zap.String("path", spec.Path),
			zap.String("args", spec.Args),
			zap.String("dir", spec.Dir),
			zap.Int("pid", pid))
		return result, nil
	}

	for _, pid := range running {
		hwnd, ok := l.windowManager.FindTopLevelWindow(pid)
		if !ok || l.windowManager.IsOwnWindow(hwnd) {
			continue
		}
		if err := l.windowManager.BringToForeground(hwnd); err != nil {
			return result, fmt.Errorf("activate %s (pid %d): %w", name, pid, err)
		}
		result.Activated = true
		result.ActivePID = pid
		l.logger.Info("activated program",
			zap.String("name", name),
			zap.Int("pid", pid))
		return result, nil
	}

	l.logger.Debug("program running without an activatable window",
		zap.String("name", name),
		zap.Ints("pids", running))
	return result, nil
}

// FileName returns the last element of a Windows or POSIX path.
func FileName(path string) string {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		return path[i+1:]
	}
	return path
}
