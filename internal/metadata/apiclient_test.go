package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"songwriterid/internal/config"
	"songwriterid/internal/logging"
	"songwriterid/internal/similarity"
)

func newTestAPIClient(t *testing.T, baseURL string) *APIClient {
	t.Helper()
	cfg := config.Default()
	cfg.Source.BaseURL = baseURL
	cfg.Source.RateLimitSeconds = 0.001
	cfg.Source.Retries = 2
	cfg.Source.TimeoutSeconds = 5
	return NewAPIClient(&cfg, similarity.NewScorer(nil), logging.NewNop())
}

const searchResponse = `{
  "count": 2,
  "recordings": [
    {
      "id": "rec-1",
      "title": "Test Song",
      "length": 200000,
      "artist-credit": [{"name": "Test Artist", "artist": {"id": "art-1", "name": "Test Artist"}}],
      "releases": [{"id": "rel-1", "title": "Test Album", "release-group": {"id": "rg-1"}}]
    },
    {
      "id": "rec-2",
      "title": "Different Tune",
      "artist-credit": [{"name": "Somebody Else", "artist": {"id": "art-2", "name": "Somebody Else"}}]
    }
  ]
}`

func TestAPIClientSearchRecordings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got == "" {
			t.Error("missing User-Agent header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponse))
	}))
	defer srv.Close()

	client := newTestAPIClient(t, srv.URL)
	candidates, err := client.SearchRecordings(context.Background(), TrackQuery{
		Title:  "Test Song",
		Artist: "Test Artist",
	})
	if err != nil {
		t.Fatalf("SearchRecordings: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}
	best := candidates[0]
	if best.Recording.ID != "rec-1" {
		t.Errorf("best candidate = %s, want rec-1", best.Recording.ID)
	}
	if best.Recording.Artist() != "Test Artist" {
		t.Errorf("artist = %q, want Test Artist", best.Recording.Artist())
	}
	if len(best.Recording.Releases) != 1 || best.Recording.Releases[0].Title != "Test Album" {
		t.Errorf("releases not mapped: %+v", best.Recording.Releases)
	}
	if best.Score <= candidates[1].Score {
		t.Errorf("expected rec-1 (%v) to outscore rec-2 (%v)", best.Score, candidates[1].Score)
	}
}

func TestAPIClientSearchRequiresTitle(t *testing.T) {
	client := newTestAPIClient(t, "http://unused.invalid")
	_, err := client.SearchRecordings(context.Background(), TrackQuery{Artist: "Test Artist"})
	if !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAPIClientRetriesTransient(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"count": 0, "recordings": []}`))
	}))
	defer srv.Close()

	client := newTestAPIClient(t, srv.URL)
	candidates, err := client.SearchRecordings(context.Background(), TrackQuery{
		Title:  "Test Song",
		Artist: "Test Artist",
	})
	if err != nil {
		t.Fatalf("SearchRecordings after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("server called %d times, want 3", calls)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(candidates))
	}
}

func TestAPIClientGivesUpAfterRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestAPIClient(t, srv.URL)
	_, err := client.SearchRecordings(context.Background(), TrackQuery{
		Title:  "Test Song",
		Artist: "Test Artist",
	})
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("server called %d times, want 3 (1 attempt + 2 retries)", calls)
	}
}

func TestAPIClientPermanentNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestAPIClient(t, srv.URL)
	_, err := client.Recording(context.Background(), "missing-id")
	if !IsPermanent(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1", calls)
	}
}

const workResponse = `{
  "id": "work-1",
  "title": "Test Song",
  "iswcs": ["T-123456789-0"],
  "relations": [
    {"type": "composer", "artist": {"id": "art-9", "name": "Jane Writer"}},
    {"type": "publishing", "label": {"id": "lbl-1", "name": "Test Publishing", "type": "Publisher"}}
  ]
}`

func TestAPIClientWork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(workResponse))
	}))
	defer srv.Close()

	client := newTestAPIClient(t, srv.URL)
	work, err := client.Work(context.Background(), "work-1")
	if err != nil {
		t.Fatalf("Work: %v", err)
	}
	if work.ISWC != "T-123456789-0" {
		t.Errorf("ISWC = %q, want T-123456789-0", work.ISWC)
	}
	if len(work.ArtistRelations) != 1 || work.ArtistRelations[0].Type != "composer" {
		t.Errorf("artist relations not mapped: %+v", work.ArtistRelations)
	}
	if len(work.LabelRelations) != 1 || work.LabelRelations[0].LabelName != "Test Publishing" {
		t.Errorf("label relations not mapped: %+v", work.LabelRelations)
	}
}
