package metadata

import (
	"math"
	"testing"

	"songwriterid/internal/similarity"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testRecording(title, artist string, releases ...string) Recording {
	rec := Recording{
		ID:            "rec-1",
		Title:         title,
		ArtistCredits: []ArtistCredit{{ArtistName: artist}},
	}
	for _, rel := range releases {
		rec.Releases = append(rec.Releases, Release{Title: rel})
	}
	return rec
}

func TestMatchScoreExactNoRelease(t *testing.T) {
	scorer := similarity.NewScorer(nil)
	query := TrackQuery{Title: "Test Song", Artist: "Test Artist"}
	rec := testRecording("Test Song", "Test Artist")

	got := matchScore(scorer, query, rec)
	if !almostEqual(got, 0.9) {
		t.Errorf("matchScore = %v, want 0.9 (exact title+artist, neutral release)", got)
	}
}

func TestMatchScoreExactWithRelease(t *testing.T) {
	scorer := similarity.NewScorer(nil)
	query := TrackQuery{Title: "Test Song", Artist: "Test Artist", Release: "Test Album"}
	rec := testRecording("Test Song", "Test Artist", "Other Album", "Test Album")

	got := matchScore(scorer, query, rec)
	if !almostEqual(got, 1.0) {
		t.Errorf("matchScore = %v, want 1.0 (all components exact)", got)
	}
}

func TestMatchScoreReleaseGivenButMissing(t *testing.T) {
	scorer := similarity.NewScorer(nil)
	query := TrackQuery{Title: "Test Song", Artist: "Test Artist", Release: "Test Album"}
	rec := testRecording("Test Song", "Test Artist")

	got := matchScore(scorer, query, rec)
	if !almostEqual(got, 0.8) {
		t.Errorf("matchScore = %v, want 0.8 (no release component)", got)
	}
}

func TestMatchScoreReleaseTakesBestOfSeveral(t *testing.T) {
	scorer := similarity.NewScorer(nil)
	query := TrackQuery{Title: "Test Song", Artist: "Test Artist", Release: "Test Album"}
	partial := testRecording("Test Song", "Test Artist", "Completely Unrelated")
	exact := testRecording("Test Song", "Test Artist", "Completely Unrelated", "Test Album")

	if matchScore(scorer, query, exact) <= matchScore(scorer, query, partial) {
		t.Error("recording with an exact release should outscore one without")
	}
}

func TestScoreCandidatesSortsDescending(t *testing.T) {
	scorer := similarity.NewScorer(nil)
	query := TrackQuery{Title: "Test Song", Artist: "Test Artist"}
	recordings := []Recording{
		testRecording("Unrelated Thing", "Somebody Else"),
		testRecording("Test Song", "Test Artist"),
		testRecording("Test Song (Live)", "Test Artist"),
	}

	candidates := scoreCandidates(scorer, query, recordings)
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates, want 3", len(candidates))
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[i-1].Score {
			t.Errorf("candidates not sorted: score[%d]=%v > score[%d]=%v",
				i, candidates[i].Score, i-1, candidates[i-1].Score)
		}
	}
	if candidates[0].Recording.Title != "Test Song" {
		t.Errorf("best candidate = %q, want exact title match", candidates[0].Recording.Title)
	}
}

func TestErrorClassification(t *testing.T) {
	transient := Wrap(ErrTransient, "musicbrainz", "search", "status 503", nil)
	if !IsTransient(transient) || IsPermanent(transient) {
		t.Error("transient error misclassified")
	}
	permanent := Wrap(ErrPermanent, "musicbrainz", "search", "status 404", nil)
	if !IsPermanent(permanent) || IsTransient(permanent) {
		t.Error("permanent error misclassified")
	}
	validation := Wrap(ErrValidation, "musicbrainz", "search", "title is required", nil)
	if !IsValidation(validation) {
		t.Error("validation error misclassified")
	}
	storage := Wrap(ErrStorage, "catalog", "save", "", nil)
	if !IsStorage(storage) {
		t.Error("storage error misclassified")
	}
}
