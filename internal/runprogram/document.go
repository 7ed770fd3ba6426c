// Package runprogram matches observed chords against the configured
// run-program shortcuts and hands matches to a launcher.
package runprogram

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/eliteGoblin/focusd/hotkeyd/internal/chord"
	"github.com/eliteGoblin/focusd/hotkeyd/internal/domain"
)

// EntriesPath is the key path of the run-program list in a profile document.
const EntriesPath = "remapShortcuts.runProgram"

// ErrInvalidDocument is returned for profile documents that are not JSON.
var ErrInvalidDocument = errors.New("invalid profile document")

// DecodeEntries extracts the run-program entries from a profile document.
// Items that are not objects come back with empty fields so the caller can
// report them by index. A document without the list yields no entries.
func DecodeEntries(doc []byte) ([]domain.RunProgramEntry, error) {
	if len(doc) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(doc) {
		return nil, ErrInvalidDocument
	}

	list := gjson.GetBytes(doc, EntriesPath)
	if !list.Exists() {
		return nil, nil
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: %s is not an array", ErrInvalidDocument, EntriesPath)
	}

	items := list.Array()
	entries := make([]domain.RunProgramEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, domain.RunProgramEntry{
			OriginalKeys: item.Get("originalKeys").String(),
			TargetApp:    item.Get("targetApp").String(),
		})
	}
	return entries, nil
}

// EncodeEntries writes entries into doc at EntriesPath, keeping every other key.
// A nil or empty doc starts a fresh document.
func EncodeEntries(doc []byte, entries []domain.RunProgramEntry) ([]byte, error) {
	if len(doc) == 0 {
		doc = []byte("{}")
	}
	if !gjson.ValidBytes(doc) {
		return nil, ErrInvalidDocument
	}
	if entries == nil {
		entries = []domain.RunProgramEntry{}
	}

	out, err := sjson.SetBytes(doc, EntriesPath, entries)
	if err != nil {
		return nil, fmt.Errorf("encode run-program entries: %w", err)
	}
	return out, nil
}

// Skipped is a profile entry that failed to parse.
type Skipped struct {
	Index int
	Entry domain.RunProgramEntry
	Err   error
}

// LoadSpecs reads the active profile and parses its run-program entries.
// Malformed entries are returned in skipped and do not fail the load.
func LoadSpecs(cfg domain.ConfigReader) (profile string, specs []domain.RunProgramSpec, skipped []Skipped, err error) {
	profile, err = cfg.GetActiveProfileName()
	if err != nil {
		return "", nil, nil, err
	}

	doc, err := cfg.ReadProfileDocument(profile)
	if err != nil {
		return profile, nil, nil, fmt.Errorf("read profile %s: %w", profile, err)
	}

	entries, err := DecodeEntries(doc)
	if err != nil {
		return profile, nil, nil, fmt.Errorf("decode profile %s: %w", profile, err)
	}

	specs = make([]domain.RunProgramSpec, 0, len(entries))
	for i, entry := range entries {
		spec, perr := chord.ParseRunProgramSpec(entry.OriginalKeys, entry.TargetApp)
		if perr != nil {
			skipped = append(skipped, Skipped{Index: i, Entry: entry, Err: perr})
			continue
		}
		specs = append(specs, spec)
	}
	return profile, specs, skipped, nil
}
