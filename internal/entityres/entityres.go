// Package entityres scores name pairs for entity resolution: deciding
// whether two artist or title strings refer to the same entity. A linear
// model over a small text-similarity feature vector produces a match
// probability; the weights can be overridden from a JSON file.
package entityres

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/xrash/smetrics"

	"songwriterid/internal/textnorm"
)

// NumFeatures is the width of the similarity feature vector.
const NumFeatures = 6

// Weights parameterizes the linear model. One weight per feature plus a
// bias; the weighted sum passes through a sigmoid.
type Weights struct {
	Feature [NumFeatures]float64 `json:"feature"`
	Bias    float64              `json:"bias"`
}

// DefaultWeights favors the sequence metrics, with the auxiliary length and
// character-overlap features as mild correctives.
func DefaultWeights() Weights {
	return Weights{
		Feature: [NumFeatures]float64{2.5, 2.0, 1.5, 1.0, 0.5, 1.5},
		Bias:    -4.5,
	}
}

// LoadWeights reads model weights from a JSON file.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Weights{}, fmt.Errorf("read weights: %w", err)
	}
	var w Weights
	if err := json.Unmarshal(data, &w); err != nil {
		return Weights{}, fmt.Errorf("parse weights: %w", err)
	}
	return w, nil
}

// Model scores string pairs.
type Model struct {
	weights     Weights
	ratcliff    *metrics.RatcliffObershelp
	levenshtein *metrics.Levenshtein
	dice        *metrics.SorensenDice
}

// New builds a model with the given weights.
func New(weights Weights) *Model {
	return &Model{
		weights:     weights,
		ratcliff:    metrics.NewRatcliffObershelp(),
		levenshtein: metrics.NewLevenshtein(),
		dice:        metrics.NewSorensenDice(),
	}
}

// Features computes the similarity feature vector for a pair of strings.
// Both inputs are reduced to comparison keys first.
func (m *Model) Features(a, b string) [NumFeatures]float64 {
	na := textnorm.MatchKey(a)
	nb := textnorm.MatchKey(b)

	var f [NumFeatures]float64
	f[0] = strutil.Similarity(na, nb, m.ratcliff)
	f[1] = smetrics.JaroWinkler(na, nb, 0.7, 4)
	f[2] = strutil.Similarity(na, nb, m.levenshtein)
	f[3] = strutil.Similarity(na, nb, m.dice)
	f[4] = lengthRatio(na, nb)
	f[5] = charSetJaccard(na, nb)
	return f
}

// MatchProbability returns the probability in (0, 1) that the two strings
// name the same entity.
func (m *Model) MatchProbability(a, b string) float64 {
	features := m.Features(a, b)
	sum := m.weights.Bias
	for i, f := range features {
		sum += m.weights.Feature[i] * f
	}
	return sigmoid(sum)
}

// Match pairs a candidate with its match probability.
type Match struct {
	Candidate   string
	Probability float64
}

// BestMatch scores the query against every candidate and returns the most
// probable. ok is false when candidates is empty.
func (m *Model) BestMatch(query string, candidates []string) (Match, bool) {
	if len(candidates) == 0 {
		return Match{}, false
	}
	best := Match{Probability: -1}
	for _, candidate := range candidates {
		p := m.MatchProbability(query, candidate)
		if p > best.Probability {
			best = Match{Candidate: candidate, Probability: p}
		}
	}
	return best, true
}

func lengthRatio(a, b string) float64 {
	la, lb := len(a), len(b)
	if la > lb {
		la, lb = lb, la
	}
	if lb == 0 {
		return 0
	}
	return float64(la) / float64(lb)
}

// charSetJaccard measures character inventory overlap, ignoring order and
// repetition.
func charSetJaccard(a, b string) float64 {
	setA := runeSet(a)
	setB := runeSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersection := 0
	for r := range setA {
		if setB[r] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func runeSet(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range strings.ToLower(s) {
		if r == ' ' {
			continue
		}
		set[r] = true
	}
	return set
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
