//go:build integration

package integration

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/hook"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/module"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/runprogram"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/usecase"
	"github.com/eliteGoblin/focusd/hotkeyd/test/fixtures"
)

// holdModule opts into the Windows key hold gesture and counts firings.
type holdModule struct {
	fired chan struct{}
}

func (m *holdModule) ID() domain.ModuleID { return "Peek" }
func (m *holdModule) Hotkeys() []domain.HotkeyKey { return nil }
func (m *holdModule) ExtendedHotkey() (domain.ExtendedHotkey, bool) { return domain.ExtendedHotkey{}, false }
func (m *holdModule) IsEnabled() bool { return true }
func (m *holdModule) HoldDuration() time.Duration { return 50 * time.Millisecond }
func (m *holdModule) TracksHeldWinKey() bool { return true }
func (m *holdModule) OnHotkey(int) bool { return false }
func (m *holdModule) OnExtendedHotkey() { m.fired <- struct{}{} }

func keyDown(vk domain.VirtualKey) domain.KeyEvent {
	return domain.KeyEvent{Kind: domain.KeyDown, VK: vk}
}

func keyUp(vk domain.VirtualKey) domain.KeyEvent {
	return domain.KeyEvent{Kind: domain.KeyUp, VK: vk}
}

var (
	leftWin  = domain.ObservedKeyState{Win: true, LWin: true}
	rightWin = domain.ObservedKeyState{Win: true, RWin: true}
	ctrlAlt  = domain.ObservedKeyState{Ctrl: true, LCtrl: true, Alt: true, LAlt: true}
)

var _ = Describe("Hotkey dispatch", func() {
	var (
		tmpDir   string
		settings *fixtures.FakeSettingsDir
		desktop  *fixtures.FakeDesktop
		keyboard *fixtures.FakeKeyboard
		injector *fixtures.FakeInjector
		matcher  *runprogram.Matcher
		engine   *hook.DispatchEngine
		binder   *usecase.ModuleHotkeyBinder
		keyMgr   *module.KeyboardManagerModule
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "hotkeyd-integration-*")
		Expect(err).NotTo(HaveOccurred())

		settings = fixtures.NewFakeSettingsDir(tmpDir, "Default")
		Expect(settings.Create(
			domain.RunProgramEntry{OriginalKeys: "91;65", TargetApp: `C:\Tools\a.exe|--flag|C:\Tools`},
			domain.RunProgramEntry{OriginalKeys: "17;18;82", TargetApp: runprogram.SentinelRefresh},
			domain.RunProgramEntry{OriginalKeys: "91", TargetApp: `C:\broken.exe`},
		)).To(Succeed())

		logger := zap.NewNop()
		desktop = fixtures.NewFakeDesktop()
		keyboard = &fixtures.FakeKeyboard{}
		injector = &fixtures.FakeInjector{}

		launcher := usecase.NewProgramLauncher(desktop, desktop, logger)
		matcher = runprogram.NewMatcher(settings.Store(), runprogram.SyncLauncher(launcher, logger), logger)
		engine = hook.NewDispatchEngine(hook.EngineDeps{
			Keyboard: keyboard,
			Injector: injector,
			Matcher:  matcher,
		}, logger)
		binder = usecase.NewModuleHotkeyBinder(engine, logger)

		keyMgr = module.NewKeyboardManagerModule(settings.Store(), logger)
		Expect(keyMgr.Reload()).To(Succeed())
		binder.RegisterModule(keyMgr)
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("run-program chords", func() {
		Context("when the program is not running", func() {
			It("should spawn it exactly once with args and dir", func() {
				keyboard.Hold(leftWin)

				Expect(engine.HandleKeyEvent(keyDown('A'))).To(Equal(domain.Swallow))

				Expect(desktop.Spawned()).To(Equal([]fixtures.SpawnCall{
					{Path: `C:\Tools\a.exe`, Args: "--flag", Dir: `C:\Tools`},
				}))
				Expect(desktop.Activated()).To(BeEmpty())
				Expect(injector.Injected()).To(Equal([]domain.VirtualKey{chord.VKSuppress}))
			})
		})

		Context("when the program is already running", func() {
			It("should activate it without spawning", func() {
				desktop.Start("A.EXE", true)
				keyboard.Hold(leftWin)

				Expect(engine.HandleKeyEvent(keyDown('A'))).To(Equal(domain.Swallow))

				Expect(desktop.Spawned()).To(BeEmpty())
				Expect(desktop.Activated()).To(HaveLen(1))
			})
		})

		Context("when the right Windows key is held", func() {
			It("should not launch a left-Win shortcut", func() {
				keyboard.Hold(rightWin)

				engine.HandleKeyEvent(keyDown('A'))

				Expect(desktop.Spawned()).To(BeEmpty())
			})
		})

		Context("when no modifier is held", func() {
			It("should pass the key through untouched", func() {
				Expect(engine.HandleKeyEvent(keyDown('A'))).To(Equal(domain.PassThrough))
				Expect(desktop.Spawned()).To(BeEmpty())
				Expect(injector.Injected()).To(BeEmpty())
			})
		})

		Context("when the event was injected by hotkeyd", func() {
			It("should pass it through", func() {
				keyboard.Hold(leftWin)
				ev := keyDown('A')
				ev.ExtraInfo = domain.SelfInjectedTag

				Expect(engine.HandleKeyEvent(ev)).To(Equal(domain.PassThrough))
				Expect(desktop.Spawned()).To(BeEmpty())
			})
		})

		It("should skip malformed entries and keep the valid ones", func() {
			matcher.EnsureLoaded()
			Expect(matcher.Specs()).To(HaveLen(2))

			matcher.Invalidate()
			matcher.EnsureLoaded()
			Expect(matcher.Specs()).To(HaveLen(2))
		})
	})

	Describe("RefreshConfig sentinel", func() {
		It("should reload the profile without starting anything", func() {
			keyboard.Hold(leftWin)
			engine.HandleKeyEvent(keyDown('A'))
			Expect(matcher.Loaded()).To(BeTrue())

			Expect(settings.Replace(
				domain.RunProgramEntry{OriginalKeys: "91;66", TargetApp: `C:\Tools\b.exe`},
				domain.RunProgramEntry{OriginalKeys: "17;18;82", TargetApp: runprogram.SentinelRefresh},
			)).To(Succeed())

			keyboard.Hold(ctrlAlt)
			engine.HandleKeyEvent(keyDown('R'))
			Expect(matcher.Loaded()).To(BeFalse())
			Expect(desktop.Spawned()).To(HaveLen(1))

			keyboard.Hold(leftWin)
			engine.HandleKeyEvent(keyDown('B'))
			Expect(desktop.Spawned()).To(HaveLen(2))
			Expect(desktop.Spawned()[1].Path).To(Equal(`C:\Tools\b.exe`))
		})
	})

	Describe("module binding", func() {
		It("should be idempotent", func() {
			before := engine.Hotkeys().Len()
			binder.Bind(keyMgr)
			binder.Bind(keyMgr)
			Expect(engine.Hotkeys().Len()).To(Equal(before))
		})

		It("should leave other modules' identical chords callable after unbinding", func() {
			hk := domain.HotkeyKey{Win: true, Key: 'A'}
			calls := 0
			engine.SetHotkeyAction("Other", hk, func() bool { calls++; return true })

			binder.UnregisterModule(keyMgr.ID())

			action, ok := engine.Hotkeys().Lookup(hk)
			Expect(ok).To(BeTrue())
			Expect(action()).To(BeTrue())
			Expect(calls).To(Equal(1))
		})
	})

	Describe("Windows key hold gesture", func() {
		var peek *holdModule

		BeforeEach(func() {
			peek = &holdModule{fired: make(chan struct{}, 4)}
			binder.RegisterModule(peek)
		})

		It("should fire after the hold duration", func() {
			engine.HandleKeyEvent(keyDown(chord.VKLWin))
			Eventually(peek.fired, time.Second).Should(Receive())
			engine.HandleKeyEvent(keyUp(chord.VKLWin))
		})

		It("should not fire when another key follows within the hold duration", func() {
			engine.HandleKeyEvent(keyDown(chord.VKLWin))
			engine.HandleKeyEvent(keyDown('E'))
			engine.HandleKeyEvent(keyUp('E'))
			engine.HandleKeyEvent(keyUp(chord.VKLWin))

			Consistently(peek.fired, 200*time.Millisecond).ShouldNot(Receive())
		})
	})
})
