package runprogram

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// DefaultQueueSize bounds the pending launch queue.
const DefaultQueueSize = 16

// ProgramLauncher performs launch-or-activate for one spec.
// Implementation: usecase.ProgramLauncherImpl.
type ProgramLauncher interface {
	LaunchOrActivate(spec domain.RunProgramSpec) (domain.LaunchResult, error)
}

// AsyncLauncher moves launch-or-activate off the hook thread. Launch never
// blocks: when the queue is full the request is dropped and logged.
type AsyncLauncher struct {
	queue    chan domain.RunProgramSpec
	launcher ProgramLauncher
	dropped  atomic.Int64
	logger   *zap.Logger
}

// NewAsyncLauncher creates a launcher with a queue of size entries.
func NewAsyncLauncher(launcher ProgramLauncher, size int, logger *zap.Logger) *AsyncLauncher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &AsyncLauncher{
		queue:    make(chan domain.RunProgramSpec, size),
		launcher: launcher,
		logger:   logger,
	}
}

// Launch queues spec for the worker.
func (a *AsyncLauncher) Launch(spec domain.RunProgramSpec) {
	select {
	case a.queue <- spec:
	default:
		a.dropped.Add(1)
		a.logger.Warn("launch queue full, dropping request",
			zap.String("path", spec.Path),
			zap.String("chord", chord.FormatSpec(spec)))
	}
}

// Dropped returns how many requests were dropped so far.
func (a *AsyncLauncher) Dropped() int64 {
	return a.dropped.Load()
}

// Run processes queued requests until ctx is done.
func (a *AsyncLauncher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case spec := <-a.queue:
			a.run(spec)
		}
	}
}

func (a *AsyncLauncher) run(spec domain.RunProgramSpec) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("launch panicked",
				zap.String("path", spec.Path),
				zap.Any("panic", rec))
		}
	}()

	result, err := a.launcher.LaunchOrActivate(spec)
	if err != nil {
		a.logger.Warn("launch or activate failed",
			zap.String("path", spec.Path),
			zap.Error(err))
		return
	}
	a.logger.Debug("launch or activate done",
		zap.String("path", result.Path),
		zap.Int("spawned_pid", result.SpawnedPID),
		zap.Bool("activated", result.Activated),
		zap.Int64("duration_ms", result.DurationMs))
}

// SyncLauncher runs launch-or-activate on the caller's goroutine.
func SyncLauncher(launcher ProgramLauncher, logger *zap.Logger) Launcher {
	a := &AsyncLauncher{launcher: launcher, logger: logger}
	return LauncherFunc(a.run)
}

// Ensure AsyncLauncher implements Launcher.
var _ Launcher = (*AsyncLauncher)(nil)
