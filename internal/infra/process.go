// Package infra implements infrastructure concerns (process, window, keyboard, settings).
package infra

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// ProcessManagerImpl implements domain.ProcessManager using gopsutil.
type ProcessManagerImpl struct {
	logger *zap.Logger
}

// NewProcessManager creates a new process manager.
func NewProcessManager(logger *zap.Logger) *ProcessManagerImpl {
	return &ProcessManagerImpl{logger: logger}
}

// ListRunningProcesses returns every process whose image name can be read.
func (pm *ProcessManagerImpl) ListRunningProcesses() ([]domain.ProcessInfo, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	infos := make([]domain.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			continue // Process may have exited or be protected
		}
		infos = append(infos, domain.ProcessInfo{PID: int(p.Pid), ImageName: name})
	}
	return infos, nil
}

// Spawn starts path with args in dir and returns without waiting for it.
// The child is reaped on a background goroutine.
func (pm *ProcessManagerImpl) Spawn(path, args, dir string) (int, error) {
	cmd := buildCommand(path, args)
	cmd.Dir = dir

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid
	go func() {
		err := cmd.Wait()
		pm.logger.Debug("spawned program exited",
			zap.String("path", path),
			zap.Int("pid", pid),
			zap.Error(err))
	}()
	return pid, nil
}

// GetCurrentPID returns the current process PID.
func (pm *ProcessManagerImpl) GetCurrentPID() int {
	return os.Getpid()
}

// Ensure ProcessManagerImpl implements domain.ProcessManager.
var _ domain.ProcessManager = (*ProcessManagerImpl)(nil)
