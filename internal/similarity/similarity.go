// Package similarity scores string pairs for candidate matching. Scores are
// cached because the same title and artist strings recur across candidate
// lists within a run.
package similarity

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"songwriterid/internal/textnorm"
)

const (
	exactScore     = 1.0
	substringScore = 0.9
)

// Cache stores computed similarity scores. Implementations must be safe for
// concurrent use if the Scorer is shared across goroutines.
type Cache interface {
	Get(key string) (float64, bool)
	Put(key string, score float64)
}

// Scorer computes normalized string similarity in [0, 1].
type Scorer struct {
	cache Cache
	ro    *metrics.RatcliffObershelp
}

// NewScorer returns a Scorer backed by the given cache. A nil cache disables
// caching.
func NewScorer(cache Cache) *Scorer {
	return &Scorer{
		cache: cache,
		ro:    metrics.NewRatcliffObershelp(),
	}
}

// Score returns the similarity of two strings after normalization. Equal
// strings score 1.0, a substring relation scores 0.9, everything else falls
// back to sequence similarity.
func (s *Scorer) Score(a, b string) float64 {
	na := textnorm.MatchKey(a)
	nb := textnorm.MatchKey(b)
	if na == "" || nb == "" {
		if na == nb {
			return exactScore
		}
		return 0
	}
	if na == nb {
		return exactScore
	}

	key := cacheKey(na, nb)
	if s.cache != nil {
		if score, ok := s.cache.Get(key); ok {
			return score
		}
	}

	score := s.compute(na, nb)
	if s.cache != nil {
		s.cache.Put(key, score)
	}
	return score
}

func (s *Scorer) compute(na, nb string) float64 {
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return substringScore
	}
	return strutil.Similarity(na, nb, s.ro)
}

// cacheKey is order-independent so that Score(a, b) and Score(b, a) share an
// entry.
func cacheKey(na, nb string) string {
	if nb < na {
		na, nb = nb, na
	}
	return na + "\x00" + nb
}
