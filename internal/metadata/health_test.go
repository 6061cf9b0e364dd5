package metadata

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSource struct {
	name    string
	pingErr error
	pings   int
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) SearchRecordings(context.Context, TrackQuery) ([]Candidate, error) {
	return nil, nil
}
func (f *fakeSource) Recording(context.Context, string) (*Recording, error) { return nil, nil }
func (f *fakeSource) Work(context.Context, string) (*Work, error)           { return nil, nil }
func (f *fakeSource) Ping(context.Context) error {
	f.pings++
	return f.pingErr
}

func TestHealthCacheCachesHealthy(t *testing.T) {
	src := &fakeSource{name: "musicbrainz"}
	cache := NewHealthCache()

	for i := 0; i < 3; i++ {
		if err := cache.Check(context.Background(), src); err != nil {
			t.Fatalf("Check: %v", err)
		}
	}
	if src.pings != 1 {
		t.Errorf("pings = %d, want 1 (cached)", src.pings)
	}
}

func TestHealthCacheCachesFailureBriefly(t *testing.T) {
	src := &fakeSource{name: "musicbrainz", pingErr: errors.New("connection refused")}
	cache := NewHealthCache()
	now := time.Now()
	cache.now = func() time.Time { return now }

	if err := cache.Check(context.Background(), src); err == nil {
		t.Fatal("expected failure")
	}
	if err := cache.Check(context.Background(), src); err == nil {
		t.Fatal("expected cached failure")
	}
	if src.pings != 1 {
		t.Errorf("pings = %d, want 1 (failure cached)", src.pings)
	}

	// Failed entries expire sooner than healthy ones.
	now = now.Add(failedTTL + time.Second)
	src.pingErr = nil
	if err := cache.Check(context.Background(), src); err != nil {
		t.Fatalf("Check after recovery: %v", err)
	}
	if src.pings != 2 {
		t.Errorf("pings = %d, want 2 (re-probed after TTL)", src.pings)
	}
}

func TestHealthCacheHealthyExpires(t *testing.T) {
	src := &fakeSource{name: "musicbrainz"}
	cache := NewHealthCache()
	now := time.Now()
	cache.now = func() time.Time { return now }

	if err := cache.Check(context.Background(), src); err != nil {
		t.Fatalf("Check: %v", err)
	}
	now = now.Add(healthyTTL - time.Second)
	_ = cache.Check(context.Background(), src)
	if src.pings != 1 {
		t.Errorf("pings = %d, want 1 (still fresh)", src.pings)
	}

	now = now.Add(2 * time.Second)
	_ = cache.Check(context.Background(), src)
	if src.pings != 2 {
		t.Errorf("pings = %d, want 2 (expired)", src.pings)
	}
}

func TestHealthCacheInvalidate(t *testing.T) {
	src := &fakeSource{name: "musicbrainz"}
	cache := NewHealthCache()
	_ = cache.Check(context.Background(), src)
	cache.Invalidate("musicbrainz")
	_ = cache.Check(context.Background(), src)
	if src.pings != 2 {
		t.Errorf("pings = %d, want 2 after invalidation", src.pings)
	}
}
