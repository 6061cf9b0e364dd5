package audiofp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ReferenceEntry is one known recording in the fingerprint index.
type ReferenceEntry struct {
	RecordingID string       `json:"recording_id"`
	Title       string       `json:"title"`
	Artist      string       `json:"artist"`
	Fingerprint *Fingerprint `json:"fingerprint"`
}

// Match pairs a reference entry with its similarity to a probe fingerprint.
type Match struct {
	Entry      ReferenceEntry
	Similarity float64
}

// Index holds reference fingerprints loaded from disk.
type Index struct {
	entries []ReferenceEntry
}

// LoadIndex reads every .json file in dir as a reference entry. Entries with
// malformed fingerprints are rejected with an error naming the file.
func LoadIndex(dir string) (*Index, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan fingerprint dir: %w", err)
	}
	sort.Strings(paths)

	idx := &Index{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fingerprint %s: %w", path, err)
		}
		var entry ReferenceEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("parse fingerprint %s: %w", path, err)
		}
		if entry.RecordingID == "" {
			return nil, fmt.Errorf("fingerprint %s: missing recording_id", path)
		}
		if !entry.Fingerprint.Valid() {
			return nil, fmt.Errorf("fingerprint %s: malformed chroma matrix", path)
		}
		idx.entries = append(idx.entries, entry)
	}
	return idx, nil
}

// Len reports the number of indexed references.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// BestMatch compares the probe against every reference and returns the best
// scoring entry. ok is false when the index is empty or the probe is
// malformed.
func (idx *Index) BestMatch(probe *Fingerprint) (Match, bool) {
	if idx == nil || len(idx.entries) == 0 || !probe.Valid() {
		return Match{}, false
	}
	best := Match{Similarity: -1}
	for _, entry := range idx.entries {
		sim := Compare(probe, entry.Fingerprint)
		if sim > best.Similarity {
			best = Match{Entry: entry, Similarity: sim}
		}
	}
	return best, true
}

// WriteEntry serializes a reference entry to path, creating parent
// directories as needed.
func WriteEntry(path string, entry ReferenceEntry) error {
	if !entry.Fingerprint.Valid() {
		return fmt.Errorf("refusing to write malformed fingerprint")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure fingerprint dir: %w", err)
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fingerprint: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
