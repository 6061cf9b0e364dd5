package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"songwriterid/internal/metadata"
	"songwriterid/internal/textnorm"
)

// ImportStats reports the outcome of a CSV import.
type ImportStats struct {
	Rows       int
	Imported   int
	Duplicates int
	Invalid    int
}

// ImportCSV loads tracks from a CSV file. Column order is taken from the
// header row; title and artist_name are required, track_isrc, release_title,
// duration, and audio_path are optional. Titles, artist names, and ISRCs are
// normalized on the way in; identifiers too short to serve as exact-match
// keys are discarded. Relative audio paths resolve against audioBase when it
// is non-empty. Rows matching an existing track by ISRC or by normalized
// (title, artist) pair are skipped as duplicates.
func (s *Store) ImportCSV(ctx context.Context, path, audioBase string) (*ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, metadata.Wrap(metadata.ErrValidation, "catalog", "import csv", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, metadata.Wrap(metadata.ErrValidation, "catalog", "import csv", "read header", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["title"]; !ok {
		return nil, metadata.Wrap(metadata.ErrValidation, "catalog", "import csv", "missing title column", nil)
	}
	if _, ok := columns["artist_name"]; !ok {
		return nil, metadata.Wrap(metadata.ErrValidation, "catalog", "import csv", "missing artist_name column", nil)
	}

	stats := &ImportStats{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, metadata.Wrap(metadata.ErrValidation, "catalog", "import csv",
				fmt.Sprintf("row %d", stats.Rows+2), err)
		}
		stats.Rows++

		track := trackFromRecord(columns, record, audioBase)
		if track.Title == "" || track.ArtistName == "" {
			stats.Invalid++
			continue
		}

		dup, err := s.isDuplicate(ctx, track)
		if err != nil {
			return nil, err
		}
		if dup {
			stats.Duplicates++
			continue
		}

		if _, err := s.AddTrack(ctx, &track); err != nil {
			return nil, err
		}
		stats.Imported++
	}
	return stats, nil
}

func trackFromRecord(columns map[string]int, record []string, audioBase string) Track {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	// Identifier fragments cannot serve as exact-match keys; keep the
	// track but drop the code.
	isrc := textnorm.NormalizeIdentifier(field("track_isrc"))
	if !textnorm.IdentifierUsable(isrc) {
		isrc = ""
	}

	audioPath := field("audio_path")
	if audioPath != "" && audioBase != "" && !filepath.IsAbs(audioPath) {
		audioPath = filepath.Join(audioBase, audioPath)
	}

	return Track{
		Title:        textnorm.NormalizeTitle(field("title")),
		ArtistName:   textnorm.NormalizeArtistName(field("artist_name")),
		ISRC:         isrc,
		ReleaseTitle: textnorm.NormalizeTitle(field("release_title")),
		Duration:     field("duration"),
		AudioPath:    audioPath,
	}
}

func (s *Store) isDuplicate(ctx context.Context, track Track) (bool, error) {
	if track.ISRC != "" {
		var count int
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM tracks WHERE track_isrc = ?", track.ISRC).Scan(&count)
		if err != nil {
			return false, metadata.Wrap(metadata.ErrStorage, "catalog", "import csv", "dedupe by isrc", err)
		}
		if count > 0 {
			return true, nil
		}
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM tracks WHERE LOWER(title) = LOWER(?) AND LOWER(artist_name) = LOWER(?)",
		track.Title, track.ArtistName).Scan(&count)
	if err != nil {
		return false, metadata.Wrap(metadata.ErrStorage, "catalog", "import csv", "dedupe by title/artist", err)
	}
	return count > 0, nil
}
