package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"songwriterid/internal/config"
	"songwriterid/internal/similarity"
)

// Source is a metadata backend searched for recordings, works, and credit
// relations.
type Source interface {
	// Name identifies the backend in logs and identification attempts.
	Name() string
	// SearchRecordings returns scored candidates for the query, best first.
	SearchRecordings(ctx context.Context, query TrackQuery) ([]Candidate, error)
	// Recording fetches a recording with its work and artist relations.
	Recording(ctx context.Context, id string) (*Recording, error)
	// Work fetches a work with its artist and label relations.
	Work(ctx context.Context, id string) (*Work, error)
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

// NewSource constructs the backend selected by source.kind.
func NewSource(cfg *config.Config, scorer *similarity.Scorer, logger *slog.Logger) (Source, error) {
	switch cfg.Source.Kind {
	case "api":
		return NewAPIClient(cfg, scorer, logger), nil
	case "mirror":
		return NewMirrorClient(cfg, scorer, logger)
	default:
		return nil, Wrap(ErrValidation, "metadata", "new source", fmt.Sprintf("unknown source kind %q", cfg.Source.Kind), nil)
	}
}

// Score weights: title dominates, artist refines, release disambiguates.
const (
	titleWeight         = 0.5
	artistWeight        = 0.3
	releaseWeight       = 0.2
	neutralReleaseScore = 0.1
)

// scoreCandidates converts recordings to candidates scored against the query
// and sorts them best first. The sort is stable so backend result order
// breaks ties.
func scoreCandidates(scorer *similarity.Scorer, query TrackQuery, recordings []Recording) []Candidate {
	candidates := make([]Candidate, 0, len(recordings))
	for _, rec := range recordings {
		candidates = append(candidates, Candidate{
			Recording: rec,
			Score:     matchScore(scorer, query, rec),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

func matchScore(scorer *similarity.Scorer, query TrackQuery, rec Recording) float64 {
	score := scorer.Score(rec.Title, query.Title) * titleWeight
	score += scorer.Score(rec.Artist(), query.Artist) * artistWeight

	switch {
	case query.Release == "":
		score += neutralReleaseScore
	case len(rec.Releases) > 0:
		best := 0.0
		for _, rel := range rec.Releases {
			if sim := scorer.Score(rel.Title, query.Release); sim > best {
				best = sim
			}
		}
		score += best * releaseWeight
	}
	return score
}
