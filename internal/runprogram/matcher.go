package runprogram

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// SentinelRefresh is the targetApp of a spec that reloads the configuration
// instead of starting a program.
const SentinelRefresh = "RefreshConfig"

// Launcher starts or activates the program of a matched spec.
type Launcher interface {
	Launch(spec domain.RunProgramSpec)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(spec domain.RunProgramSpec)

// Launch calls f(spec).
func (f LauncherFunc) Launch(spec domain.RunProgramSpec) { f(spec) }

// Matcher caches the active profile's run-program specs and launches the
// ones matching a keydown.
//
// The cache is either fully loaded or empty. The specs slice is replaced
// wholesale on reload and never mutated in place, so Match can iterate a
// captured slice without holding the lock.
type Matcher struct {
	mu     sync.RWMutex
	specs  []domain.RunProgramSpec
	loaded bool

	config   domain.ConfigReader
	launcher Launcher
	logger   *zap.Logger
}

// NewMatcher creates a matcher with an empty cache.
func NewMatcher(config domain.ConfigReader, launcher Launcher, logger *zap.Logger) *Matcher {
	return &Matcher{
		config:   config,
		launcher: launcher,
		logger:   logger,
	}
}

// EnsureLoaded reads and parses the active profile unless already loaded.
// Malformed entries are logged and skipped. A missing profile or an
// unreadable document leaves the cache empty but loaded; the next
// Invalidate triggers a retry.
func (m *Matcher) EnsureLoaded() {
	m.mu.RLock()
	loaded := m.loaded
	m.mu.RUnlock()
	if loaded {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return
	}
	m.specs = m.load()
	m.loaded = true
}

func (m *Matcher) load() []domain.RunProgramSpec {
	profile, specs, skipped, err := LoadSpecs(m.config)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveProfile) {
			m.logger.Debug("no active keyboard profile")
		} else {
			m.logger.Warn("failed to load run-program shortcuts",
				zap.String("profile", profile),
				zap.Error(err))
		}
		return nil
	}

	for _, s := range skipped {
		m.logger.Warn("skipping malformed run-program entry",
			zap.String("profile", profile),
			zap.Int("index", s.Index),
			zap.String("original_keys", s.Entry.OriginalKeys),
			zap.String("target_app", s.Entry.TargetApp),
			zap.Error(s.Err))
	}
	m.logger.Info("run-program shortcuts loaded",
		zap.String("profile", profile),
		zap.Int("specs", len(specs)),
		zap.Int("skipped", len(skipped)))
	return specs
}

// Invalidate empties the cache; the next EnsureLoaded reloads it.
func (m *Matcher) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.specs = nil
	m.loaded = false
}

// Loaded reports whether the cache is populated.
func (m *Matcher) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Specs returns a copy of the cached specs.
func (m *Matcher) Specs() []domain.RunProgramSpec {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.RunProgramSpec, len(m.specs))
	copy(out, m.specs)
	return out
}

// Match launches every spec matching observed. Bare keys never match.
// A matching sentinel spec invalidates the cache and ends the pass.
func (m *Matcher) Match(observed domain.ObservedKeyState) domain.MatchResult {
	var result domain.MatchResult
	if !observed.AnyModifier() {
		return result
	}

	m.EnsureLoaded()

	m.mu.RLock()
	specs := m.specs
	m.mu.RUnlock()

	for _, spec := range specs {
		if !Matches(spec, observed) {
			continue
		}
		result.Matched++

		if spec.Path == SentinelRefresh {
			m.logger.Info("refresh chord pressed, reloading run-program shortcuts")
			m.Invalidate()
			result.Refreshed = true
			return result
		}

		m.launcher.Launch(spec)
	}
	return result
}

// Matches reports whether observed satisfies spec. Each modifier is checked
// on the side the spec names: Left and Right need that physical key, Both
// needs either, Disabled puts no constraint on it.
func Matches(spec domain.RunProgramSpec, observed domain.ObservedKeyState) bool {
	return spec.ActionKey == observed.Key &&
		sideMatches(spec.Win, observed.Win, observed.LWin, observed.RWin) &&
		sideMatches(spec.Ctrl, observed.Ctrl, observed.LCtrl, observed.RCtrl) &&
		sideMatches(spec.Shift, observed.Shift, observed.LShift, observed.RShift) &&
		sideMatches(spec.Alt, observed.Alt, observed.LAlt, observed.RAlt)
}

func sideMatches(side domain.ModifierSide, logical, left, right bool) bool {
	switch side {
	case domain.SideLeft:
		return left
	case domain.SideRight:
		return right
	case domain.SideBoth:
		return logical
	default:
		return true
	}
}
