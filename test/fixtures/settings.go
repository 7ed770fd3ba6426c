// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/infra"
)

// FakeSettingsDir creates a keyboard manager settings directory with one
// active profile.
type FakeSettingsDir struct {
	Dir     string
	Profile string
	store   *infra.SettingsStore
}

// NewFakeSettingsDir creates a generator rooted at dir.
func NewFakeSettingsDir(dir, profile string) *FakeSettingsDir {
	return &FakeSettingsDir{
		Dir:     dir,
		Profile: profile,
		store:   infra.NewSettingsStore(dir),
	}
}

// Create writes settings.json naming the profile and the profile document
// with entries.
func (f *FakeSettingsDir) Create(entries ...domain.RunProgramEntry) error {
	if err := f.store.SetActiveProfileName(f.Profile); err != nil {
		return err
	}
	return f.store.SaveEntries(f.Profile, entries)
}

// Replace overwrites the run-program entries of the profile.
func (f *FakeSettingsDir) Replace(entries ...domain.RunProgramEntry) error {
	return f.store.SaveEntries(f.Profile, entries)
}

// Store returns the settings store over the directory.
func (f *FakeSettingsDir) Store() *infra.SettingsStore {
	return f.store
}
