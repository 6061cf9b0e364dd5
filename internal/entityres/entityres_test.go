package entityres

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestFeaturesBounds(t *testing.T) {
	m := New(DefaultWeights())
	pairs := [][2]string{
		{"Test Artist", "Test Artist"},
		{"Test Artist", "test artist!"},
		{"Test Artist", "Completely Unrelated"},
		{"", "Test Artist"},
	}
	for _, pair := range pairs {
		features := m.Features(pair[0], pair[1])
		for i, f := range features {
			if f < 0 || f > 1 {
				t.Errorf("Features(%q, %q)[%d] = %v, out of [0, 1]", pair[0], pair[1], i, f)
			}
		}
	}
}

func TestFeaturesIdenticalStrings(t *testing.T) {
	m := New(DefaultWeights())
	features := m.Features("Test Artist", "Test Artist")
	for i := 0; i < 4; i++ {
		if features[i] != 1.0 {
			t.Errorf("feature %d = %v, want 1.0 for identical strings", i, features[i])
		}
	}
	if features[4] != 1.0 || features[5] != 1.0 {
		t.Errorf("length ratio / jaccard = %v, %v, want 1.0, 1.0", features[4], features[5])
	}
}

func TestMatchProbabilityOrdering(t *testing.T) {
	m := New(DefaultWeights())

	exact := m.MatchProbability("Test Artist", "Test Artist")
	near := m.MatchProbability("Test Artist", "Test Artst")
	far := m.MatchProbability("Test Artist", "Zzz Qqq Vvv")

	if exact <= near {
		t.Errorf("exact (%v) should outscore near-miss (%v)", exact, near)
	}
	if near <= far {
		t.Errorf("near-miss (%v) should outscore unrelated (%v)", near, far)
	}
	if exact < 0.9 {
		t.Errorf("exact match probability = %v, want >= 0.9", exact)
	}
	if far > 0.3 {
		t.Errorf("unrelated probability = %v, want <= 0.3", far)
	}
}

func TestBestMatch(t *testing.T) {
	m := New(DefaultWeights())
	candidates := []string{"Best Artist", "Test Artist", "Rest Artiste"}

	match, ok := m.BestMatch("test artist", candidates)
	if !ok {
		t.Fatal("BestMatch found nothing")
	}
	if match.Candidate != "Test Artist" {
		t.Errorf("best match = %q, want Test Artist", match.Candidate)
	}
}

func TestBestMatchEmptyCandidates(t *testing.T) {
	m := New(DefaultWeights())
	if _, ok := m.BestMatch("anything", nil); ok {
		t.Error("BestMatch on empty slice should report no match")
	}
}

func TestLoadWeights(t *testing.T) {
	custom := Weights{
		Feature: [NumFeatures]float64{1, 1, 1, 1, 1, 1},
		Bias:    -3,
	}
	data, err := json.Marshal(custom)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "weights.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights: %v", err)
	}
	if loaded != custom {
		t.Errorf("loaded = %+v, want %+v", loaded, custom)
	}
}

func TestLoadWeightsMissingFile(t *testing.T) {
	if _, err := LoadWeights(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
