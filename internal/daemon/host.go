// Package daemon implements the hotkeyd host process.
package daemon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/config"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/hook"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/infra"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/module"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/runprogram"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/usecase"
)

// HostConfig holds host daemon configuration.
type HostConfig struct {
	SettingsDir     string        // Keyboard manager settings directory
	LaunchQueueSize int           // Pending launch-or-activate requests
	ConfigDebounce  time.Duration // Settings watcher coalescing window
	KeyboardManager bool          // Host the run-program chords module
	Modules         []config.ModuleConfig
}

// DefaultHostConfig returns default host configuration.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		SettingsDir:     infra.DetectPaths().SettingsDir,
		LaunchQueueSize: config.DefaultLaunchQueueSize,
		ConfigDebounce:  config.DefaultConfigDebounce,
		KeyboardManager: true,
	}
}

// HostConfigFrom maps the YAML host configuration onto HostConfig.
func HostConfigFrom(cfg config.Config) HostConfig {
	hc := DefaultHostConfig()
	if cfg.SettingsDir != "" {
		hc.SettingsDir = cfg.SettingsDir
	}
	if cfg.LaunchQueueSize > 0 {
		hc.LaunchQueueSize = cfg.LaunchQueueSize
	}
	if cfg.ConfigDebounce > 0 {
		hc.ConfigDebounce = cfg.ConfigDebounce
	}
	hc.KeyboardManager = cfg.KeyboardManager
	hc.Modules = cfg.Modules
	return hc
}

// HostDeps are the OS collaborators of a Host.
type HostDeps struct {
	Hook      domain.KeyboardHook
	Keyboard  domain.KeyboardState
	Injector  domain.InputInjector
	Registrar domain.ExtendedHotkeyRegistrar
	Scheduler domain.Scheduler
	Processes domain.ProcessManager
	Windows   domain.WindowManager
	Settings  domain.ConfigReader
}

// DefaultHostDeps builds the platform implementations.
func DefaultHostDeps(settingsDir string, logger *zap.Logger) HostDeps {
	return HostDeps{
		Hook:      infra.NewLowLevelHook(logger.Named("hook")),
		Keyboard:  infra.NewAsyncKeyState(),
		Injector:  infra.NewSendInputInjector(),
		Registrar: infra.NewHotkeyRegistrar(logger.Named("registrar")),
		Processes: infra.NewProcessManager(logger.Named("process")),
		Windows:   infra.NewWindowManager(),
		Settings:  infra.NewSettingsStore(settingsDir),
	}
}

// Host owns the dispatch engine and the hosted modules.
// It binds every module, installs the keyboard hook and rebinds the
// keyboard manager module when its settings change on disk.
type Host struct {
	config HostConfig

	engine   *hook.DispatchEngine
	binder   *usecase.ModuleHotkeyBinder
	matcher  *runprogram.Matcher
	launcher *runprogram.AsyncLauncher
	modules  *module.Registry
	keyboard *module.KeyboardManagerModule

	logger *zap.Logger
}

// NewHost wires the engine, matcher, launcher and modules. Module
// configuration errors are returned before anything is installed.
func NewHost(cfg HostConfig, deps HostDeps, logger *zap.Logger) (*Host, error) {
	programs := usecase.NewProgramLauncher(deps.Processes, deps.Windows, logger.Named("launcher"))
	launcher := runprogram.NewAsyncLauncher(programs, cfg.LaunchQueueSize, logger.Named("launcher"))
	matcher := runprogram.NewMatcher(deps.Settings, launcher, logger.Named("runprogram"))

	engine := hook.NewDispatchEngine(hook.EngineDeps{
		Hook:      deps.Hook,
		Keyboard:  deps.Keyboard,
		Injector:  deps.Injector,
		Registrar: deps.Registrar,
		Scheduler: deps.Scheduler,
		Matcher:   matcher,
	}, logger.Named("engine"))

	h := &Host{
		config:   cfg,
		engine:   engine,
		binder:   usecase.NewModuleHotkeyBinder(engine, logger.Named("binder")),
		matcher:  matcher,
		launcher: launcher,
		modules:  module.NewRegistry(),
		logger:   logger,
	}

	if cfg.KeyboardManager {
		h.keyboard = module.NewKeyboardManagerModule(deps.Settings, logger)
		h.modules.Register(h.keyboard)
	}
	for _, mc := range cfg.Modules {
		if config.IsReservedModuleID(mc.ID) {
			return nil, fmt.Errorf("module %q: %w", mc.ID, config.ErrReservedModuleID)
		}
		m, err := module.NewConfiguredModule(mc, launcher, logger)
		if err != nil {
			return nil, err
		}
		h.modules.Register(m)
	}
	return h, nil
}

// Engine exposes the dispatch engine.
func (h *Host) Engine() *hook.DispatchEngine { return h.engine }

// Binder exposes the module binder.
func (h *Host) Binder() *usecase.ModuleHotkeyBinder { return h.binder }

// Modules exposes the hosted module registry.
func (h *Host) Modules() *module.Registry { return h.modules }

// Bind loads the keyboard manager settings and binds every hosted module.
func (h *Host) Bind() {
	if h.keyboard != nil {
		if err := h.keyboard.Reload(); err != nil {
			h.logger.Warn("failed to load keyboard manager settings", zap.Error(err))
		}
	}
	for _, m := range h.modules.GetAll() {
		h.binder.RegisterModule(m)
	}
	h.matcher.EnsureLoaded()
}

// ReloadSettings re-reads the keyboard manager settings and rebinds its chords.
// The matcher is reloaded here so the hook thread does not read the files.
func (h *Host) ReloadSettings() {
	if h.keyboard == nil {
		h.binder.NotifyConfigurationChanged()
	} else {
		if err := h.keyboard.Reload(); err != nil {
			h.logger.Warn("failed to reload keyboard manager settings", zap.Error(err))
		}
		h.binder.Rebind(h.keyboard.ID())
	}
	h.matcher.EnsureLoaded()
}

// Run binds modules, installs the hook and serves until ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	h.Bind()

	if err := h.engine.Start(); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	defer func() {
		if err := h.engine.Stop(); err != nil {
			h.logger.Error("failed to stop engine", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.launcher.Run(ctx)
	}()

	if h.config.SettingsDir != "" {
		watcher := infra.NewSettingsWatcher(h.config.SettingsDir, h.config.ConfigDebounce, h.ReloadSettings, h.logger.Named("settings"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watcher.Run(ctx); err != nil {
				h.logger.Warn("settings watcher stopped", zap.Error(err))
			}
		}()
	}

	h.logger.Info("hotkeyd running",
		zap.Strings("modules", moduleNames(h.modules.List())),
		zap.String("settings_dir", h.config.SettingsDir))

	<-ctx.Done()
	h.logger.Info("hotkeyd stopping")
	wg.Wait()
	return nil
}

func moduleNames(ids []domain.ModuleID) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return names
}

// Ensure the wiring types satisfy their consumers.
var (
	_ hook.ProgramMatcher        = (*runprogram.Matcher)(nil)
	_ usecase.HotkeyEngine       = (*hook.DispatchEngine)(nil)
	_ runprogram.ProgramLauncher = (*usecase.ProgramLauncherImpl)(nil)
)
