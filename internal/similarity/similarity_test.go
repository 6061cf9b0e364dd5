package similarity

import (
	"fmt"
	"testing"
)

func TestScoreExactMatch(t *testing.T) {
	s := NewScorer(nil)
	tests := []struct {
		name string
		a, b string
	}{
		{"identical", "Test Song", "Test Song"},
		{"case differs", "Test Song", "TEST SONG"},
		{"punctuation differs", "Don't Stop", "Dont Stop!"},
		{"whitespace differs", "Test  Song", "Test Song"},
		{"both empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.a, tt.b); got != 1.0 {
				t.Errorf("Score(%q, %q) = %v, want 1.0", tt.a, tt.b, got)
			}
		})
	}
}

func TestScoreSubstring(t *testing.T) {
	s := NewScorer(nil)
	if got := s.Score("Test Song", "Test Song Extended Mix"); got != 0.9 {
		t.Errorf("Score(substring) = %v, want 0.9", got)
	}
	if got := s.Score("Test Song Extended Mix", "Test Song"); got != 0.9 {
		t.Errorf("Score(superstring) = %v, want 0.9", got)
	}
}

func TestScoreSequenceFallback(t *testing.T) {
	s := NewScorer(nil)
	got := s.Score("Test Song", "Best Songs")
	if got <= 0 || got >= 0.9 {
		t.Errorf("Score(similar) = %v, want in (0, 0.9)", got)
	}
	unrelated := s.Score("Test Song", "zzz qqq")
	if unrelated >= got {
		t.Errorf("unrelated pair scored %v, similar pair %v; want lower", unrelated, got)
	}
}

func TestScoreEmptyVersusNonEmpty(t *testing.T) {
	s := NewScorer(nil)
	if got := s.Score("", "Test Song"); got != 0 {
		t.Errorf("Score(empty, non-empty) = %v, want 0", got)
	}
}

func TestScoreSymmetric(t *testing.T) {
	s := NewScorer(NewBoundedCache(16))
	ab := s.Score("Test Song", "Best Songs")
	ba := s.Score("Best Songs", "Test Song")
	if ab != ba {
		t.Errorf("Score not symmetric: %v vs %v", ab, ba)
	}
	// Symmetric pairs share a cache entry.
	if got := s.cache.(*BoundedCache).Len(); got != 1 {
		t.Errorf("cache entries = %d, want 1", got)
	}
}

func TestScoreCached(t *testing.T) {
	cache := NewBoundedCache(16)
	s := NewScorer(cache)
	first := s.Score("Test Song", "Best Songs")
	second := s.Score("Test Song", "Best Songs")
	if first != second {
		t.Errorf("cached score differs: %v vs %v", first, second)
	}
	if cache.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", cache.Len())
	}
}

func TestBoundedCacheEviction(t *testing.T) {
	cache := NewBoundedCache(2)
	cache.Put("a", 0.1)
	cache.Put("b", 0.2)
	cache.Put("c", 0.3)
	if cache.Len() != 2 {
		t.Fatalf("cache len = %d, want 2", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if score, ok := cache.Get("c"); !ok || score != 0.3 {
		t.Errorf("Get(c) = %v, %v, want 0.3, true", score, ok)
	}
}

func TestBoundedCacheRecentUseSurvivesEviction(t *testing.T) {
	cache := NewBoundedCache(2)
	cache.Put("a", 0.1)
	cache.Put("b", 0.2)
	cache.Get("a")
	cache.Put("c", 0.3)
	if _, ok := cache.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if _, ok := cache.Get("b"); ok {
		t.Error("least recently used entry survived")
	}
}

func TestScoreBounded(t *testing.T) {
	s := NewScorer(nil)
	pairs := [][2]string{
		{"Test Song", "Completely Different"},
		{"a", "b"},
		{"Test", "Testing 123"},
	}
	for i, p := range pairs {
		t.Run(fmt.Sprintf("pair_%d", i), func(t *testing.T) {
			got := s.Score(p[0], p[1])
			if got < 0 || got > 1 {
				t.Errorf("Score(%q, %q) = %v, out of [0, 1]", p[0], p[1], got)
			}
		})
	}
}
