package runprogram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// mockProgramLauncher records calls.
type mockProgramLauncher struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (m *mockProgramLauncher) LaunchOrActivate(spec domain.RunProgramSpec) (domain.LaunchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, spec.Path)
	return domain.LaunchResult{Path: spec.Path}, m.err
}

func (m *mockProgramLauncher) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

// TestAsyncLauncher_RunsQueued verifies queued specs reach the launcher in order.
func TestAsyncLauncher_RunsQueued(t *testing.T) {
	pl := &mockProgramLauncher{}
	a := NewAsyncLauncher(pl, 4, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	a.Launch(domain.RunProgramSpec{Path: "a.exe"})
	a.Launch(domain.RunProgramSpec{Path: "b.exe"})

	assert.Eventually(t, func() bool { return len(pl.calls()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a.exe", "b.exe"}, pl.calls())
}

// TestAsyncLauncher_DropsWhenFull verifies Launch never blocks.
func TestAsyncLauncher_DropsWhenFull(t *testing.T) {
	pl := &mockProgramLauncher{}
	a := NewAsyncLauncher(pl, 2, zap.NewNop())

	// No worker running: the third request has nowhere to go.
	a.Launch(domain.RunProgramSpec{Path: "a.exe"})
	a.Launch(domain.RunProgramSpec{Path: "b.exe"})
	a.Launch(domain.RunProgramSpec{Path: "c.exe"})

	assert.Equal(t, int64(1), a.Dropped())
}

// TestAsyncLauncher_ErrorsAndPanicsContained verifies the worker survives failures.
func TestAsyncLauncher_ErrorsAndPanicsContained(t *testing.T) {
	pl := &mockProgramLauncher{err: errors.New("spawn failed")}
	a := NewAsyncLauncher(pl, 0, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	a.Launch(domain.RunProgramSpec{Path: "a.exe"})
	assert.Eventually(t, func() bool { return len(pl.calls()) == 1 }, time.Second, 5*time.Millisecond)

	boom := LauncherFunc(func(domain.RunProgramSpec) { panic("boom") })
	assert.Panics(t, func() { boom.Launch(domain.RunProgramSpec{}) })

	inline := SyncLauncher(panicLauncher{}, zap.NewNop())
	assert.NotPanics(t, func() { inline.Launch(domain.RunProgramSpec{Path: "x.exe"}) })
}

// TestAsyncLauncher_StopsOnCancel verifies Run returns when the context ends.
func TestAsyncLauncher_StopsOnCancel(t *testing.T) {
	a := NewAsyncLauncher(&mockProgramLauncher{}, 1, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type panicLauncher struct{}

func (panicLauncher) LaunchOrActivate(domain.RunProgramSpec) (domain.LaunchResult, error) {
	panic("boom")
}
