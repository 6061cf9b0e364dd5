package testsupport

import (
	"context"
	"testing"

	"songwriterid/internal/catalog"
	"songwriterid/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewTrack inserts a pending track for tests using the provided store.
func NewTrack(t testing.TB, store *catalog.Store, title, artist string) int64 {
	t.Helper()

	id, err := store.AddTrack(context.Background(), &catalog.Track{
		Title:      title,
		ArtistName: artist,
	})
	if err != nil {
		t.Fatalf("store.AddTrack: %v", err)
	}
	return id
}
