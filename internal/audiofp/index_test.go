package audiofp

import (
	"path/filepath"
	"testing"
)

func referenceFingerprint(t *testing.T, freq float64) *Fingerprint {
	t.Helper()
	fp, err := Extract(sine(freq, 22050, 22050*5), 22050, DefaultWindowFrames)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return fp
}

func TestIndexRoundTripAndBestMatch(t *testing.T) {
	dir := t.TempDir()
	entries := []ReferenceEntry{
		{RecordingID: "rec-a4", Title: "Tone A", Artist: "Test Artist", Fingerprint: referenceFingerprint(t, 440)},
		{RecordingID: "rec-c5", Title: "Tone C", Artist: "Test Artist", Fingerprint: referenceFingerprint(t, 523.25)},
	}
	for i, entry := range entries {
		path := filepath.Join(dir, entry.RecordingID+".json")
		if err := WriteEntry(path, entry); err != nil {
			t.Fatalf("WriteEntry %d: %v", i, err)
		}
	}

	idx, err := LoadIndex(dir)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("index size = %d, want 2", idx.Len())
	}

	probe := referenceFingerprint(t, 440)
	match, ok := idx.BestMatch(probe)
	if !ok {
		t.Fatal("BestMatch found nothing")
	}
	if match.Entry.RecordingID != "rec-a4" {
		t.Errorf("best match = %s, want rec-a4", match.Entry.RecordingID)
	}
	if match.Similarity < 0.9 {
		t.Errorf("similarity = %v, want >= 0.9", match.Similarity)
	}
}

func TestLoadIndexEmptyDir(t *testing.T) {
	idx, err := LoadIndex(t.TempDir())
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("index size = %d, want 0", idx.Len())
	}
	if _, ok := idx.BestMatch(referenceFingerprint(t, 440)); ok {
		t.Error("BestMatch on empty index should report no match")
	}
}

func TestWriteEntryRejectsMalformed(t *testing.T) {
	bad := ReferenceEntry{RecordingID: "rec-1", Fingerprint: &Fingerprint{}}
	if err := WriteEntry(filepath.Join(t.TempDir(), "bad.json"), bad); err == nil {
		t.Error("expected error for malformed fingerprint")
	}
}
