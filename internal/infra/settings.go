package infra

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/runprogram"
)

// activeProfilePath is the key path of the active profile name in settings.json.
const activeProfilePath = "properties.activeConfiguration.value"

// SettingsStore reads and writes the keyboard manager settings directory:
// settings.json names the active profile, <profile>.json holds its shortcuts.
type SettingsStore struct {
	dir string
}

// NewSettingsStore creates a store rooted at dir.
func NewSettingsStore(dir string) *SettingsStore {
	return &SettingsStore{dir: dir}
}

// Dir returns the settings directory.
func (s *SettingsStore) Dir() string {
	return s.dir
}

// SettingsPath returns the full path of settings.json.
func (s *SettingsStore) SettingsPath() string {
	return filepath.Join(s.dir, SettingsFileName)
}

// ProfilePath returns the document path for a profile.
func (s *SettingsStore) ProfilePath(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// GetActiveProfileName returns the profile named in settings.json.
func (s *SettingsStore) GetActiveProfileName() (string, error) {
	data, err := os.ReadFile(s.SettingsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrNoActiveProfile
		}
		return "", err
	}
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%s: %w", SettingsFileName, runprogram.ErrInvalidDocument)
	}

	name := strings.TrimSpace(gjson.GetBytes(data, activeProfilePath).String())
	if name == "" {
		return "", domain.ErrNoActiveProfile
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid profile name %q", name)
	}
	return name, nil
}

// SetActiveProfileName stores name in settings.json, keeping other keys.
func (s *SettingsStore) SetActiveProfileName(name string) error {
	data, err := os.ReadFile(s.SettingsPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if len(data) == 0 {
		data = []byte("{}")
	}

	out, err := sjson.SetBytes(data, activeProfilePath, name)
	if err != nil {
		return fmt.Errorf("update %s: %w", SettingsFileName, err)
	}
	return s.atomicWrite(s.SettingsPath(), out)
}

// ReadProfileDocument returns the raw profile document. A missing document
// reads as empty.
func (s *SettingsStore) ReadProfileDocument(name string) ([]byte, error) {
	data, err := os.ReadFile(s.ProfilePath(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Entries returns the raw run-program entries of a profile.
func (s *SettingsStore) Entries(profile string) ([]domain.RunProgramEntry, error) {
	doc, err := s.ReadProfileDocument(profile)
	if err != nil {
		return nil, err
	}
	return runprogram.DecodeEntries(doc)
}

// SaveEntries replaces the run-program entries of a profile, keeping the
// rest of its document.
func (s *SettingsStore) SaveEntries(profile string, entries []domain.RunProgramEntry) error {
	doc, err := s.ReadProfileDocument(profile)
	if err != nil {
		return err
	}
	out, err := runprogram.EncodeEntries(doc, entries)
	if err != nil {
		return err
	}
	return s.atomicWrite(s.ProfilePath(profile), out)
}

// atomicWrite writes data to path atomically (write + rename).
func (s *SettingsStore) atomicWrite(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	// Unique per process to avoid racing another writer
	tmpPath := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Ensure SettingsStore implements domain.ConfigReader.
var _ domain.ConfigReader = (*SettingsStore)(nil)
