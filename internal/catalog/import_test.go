package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"songwriterid/internal/catalog"
	"songwriterid/internal/testsupport"
)

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracks.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestImportCSV(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	path := writeCSV(t, `title,artist_name,track_isrc,release_title,duration,audio_path
Test Song,Test Artist,us-rc1-17-60739,Test Album,3:45,/audio/test.wav
Another Song,Other Artist,,,,
,Missing Title,,,,
`)

	stats, err := store.ImportCSV(ctx, path, "")
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if stats.Rows != 3 {
		t.Fatalf("rows = %d, want 3", stats.Rows)
	}
	if stats.Imported != 2 {
		t.Fatalf("imported = %d, want 2", stats.Imported)
	}
	if stats.Invalid != 1 {
		t.Fatalf("invalid = %d, want 1", stats.Invalid)
	}

	pending, err := store.PendingTracks(ctx, 0)
	if err != nil {
		t.Fatalf("PendingTracks: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d tracks, want 2", len(pending))
	}
	// Identifiers are normalized on the way in.
	if pending[0].ISRC != "USRC11760739" {
		t.Fatalf("isrc = %q, want USRC11760739", pending[0].ISRC)
	}
}

func TestImportCSVDedupe(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	// Same ISRC, then same title/artist pair differing only in case.
	path := writeCSV(t, `title,artist_name,track_isrc
Test Song,Test Artist,USRC11760739
Different Title,Different Artist,USRC11760739
TEST SONG,TEST ARTIST,
`)

	stats, err := store.ImportCSV(ctx, path, "")
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if stats.Imported != 1 {
		t.Fatalf("imported = %d, want 1", stats.Imported)
	}
	if stats.Duplicates != 2 {
		t.Fatalf("duplicates = %d, want 2", stats.Duplicates)
	}
}

func TestImportCSVDedupesAgainstExistingTracks(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.NewTrack(t, store, "Test Song", "Test Artist")

	path := writeCSV(t, `title,artist_name
Test Song,Test Artist
New Song,Test Artist
`)
	stats, err := store.ImportCSV(ctx, path, "")
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if stats.Imported != 1 {
		t.Fatalf("imported = %d, want 1", stats.Imported)
	}
	if stats.Duplicates != 1 {
		t.Fatalf("duplicates = %d, want 1", stats.Duplicates)
	}
}

func TestImportCSVDropsShortIdentifiers(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	// Two distinct tracks carrying identifier fragments. Neither fragment
	// is long enough to serve as an exact-match key, so both rows import
	// with an empty ISRC and do not collapse into each other.
	path := writeCSV(t, `title,artist_name,track_isrc
First Song,First Artist,ABC
Second Song,Second Artist,A-B-C
`)
	stats, err := store.ImportCSV(ctx, path, "")
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if stats.Imported != 2 {
		t.Fatalf("imported = %d, want 2", stats.Imported)
	}
	if stats.Duplicates != 0 {
		t.Fatalf("duplicates = %d, want 0", stats.Duplicates)
	}

	pending, err := store.PendingTracks(ctx, 0)
	if err != nil {
		t.Fatalf("PendingTracks: %v", err)
	}
	for _, track := range pending {
		if track.ISRC != "" {
			t.Fatalf("track %q stored ISRC %q, want empty", track.Title, track.ISRC)
		}
	}
}

func TestImportCSVResolvesRelativeAudioPaths(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	base := t.TempDir()

	path := writeCSV(t, `title,artist_name,audio_path
Relative Song,Test Artist,clips/song.wav
Absolute Song,Test Artist,/mnt/audio/other.wav
`)
	if _, err := store.ImportCSV(ctx, path, base); err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}

	pending, err := store.PendingTracks(ctx, 0)
	if err != nil {
		t.Fatalf("PendingTracks: %v", err)
	}
	paths := make(map[string]string, len(pending))
	for _, track := range pending {
		paths[track.Title] = track.AudioPath
	}
	if want := filepath.Join(base, "clips", "song.wav"); paths["Relative Song"] != want {
		t.Fatalf("relative audio path = %q, want %q", paths["Relative Song"], want)
	}
	if paths["Absolute Song"] != "/mnt/audio/other.wav" {
		t.Fatalf("absolute audio path = %q, want unchanged", paths["Absolute Song"])
	}
}

func TestImportCSVMissingColumns(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	path := writeCSV(t, "title,isrc\nTest Song,USRC11760739\n")
	if _, err := store.ImportCSV(context.Background(), path, ""); err == nil {
		t.Fatal("expected error for missing artist_name column")
	}

	if _, err := store.ImportCSV(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportCSVNormalizesTitles(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	path := writeCSV(t, `title,artist_name
The Test Song (Radio Edit),Test Artist ft. Other Artist
`)
	if _, err := store.ImportCSV(ctx, path, ""); err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}

	pending, err := store.PendingTracks(ctx, 0)
	if err != nil {
		t.Fatalf("PendingTracks: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %d tracks, want 1", len(pending))
	}
	if pending[0].Title != "Test Song (Radio Edit)" {
		t.Fatalf("title = %q, want %q", pending[0].Title, "Test Song (Radio Edit)")
	}
	if pending[0].ArtistName != "Test Artist feat. Other Artist" {
		t.Fatalf("artist = %q, want %q", pending[0].ArtistName, "Test Artist feat. Other Artist")
	}
}

func TestStatsEmptyCatalog(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("total = %d, want 0", stats.Total)
	}
	if stats.WithCredit != 0 {
		t.Fatalf("with credit = %d, want 0", stats.WithCredit)
	}
	if _, ok := stats.ByStatus[catalog.StatusPending]; ok {
		t.Fatal("empty catalog should report no status buckets")
	}
}
