package catalog

import "time"

// Status represents the identification lifecycle of a track.
type Status string

const (
	StatusPending         Status = "pending"
	StatusIdentifiedTier1 Status = "identified_tier1"
	StatusIdentifiedTier2 Status = "identified_tier2"
	StatusIdentifiedTier3 Status = "identified_tier3"
	StatusManualReview    Status = "manual_review"
	// StatusIdentified marks tracks resolved by a human reviewer.
	StatusIdentified Status = "identified"
)

var allStatuses = []Status{
	StatusPending,
	StatusIdentifiedTier1,
	StatusIdentifiedTier2,
	StatusIdentifiedTier3,
	StatusManualReview,
	StatusIdentified,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// statusRank orders statuses for monotonic transitions: a track never moves
// backward toward pending once an automated run or a reviewer has placed it.
var statusRank = map[Status]int{
	StatusPending:         0,
	StatusIdentifiedTier1: 1,
	StatusIdentifiedTier2: 1,
	StatusIdentifiedTier3: 1,
	StatusManualReview:    1,
	StatusIdentified:      2,
}

// Valid reports whether the status is one of the defined lifecycle states.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Terminal reports whether automated processing is finished for this status.
// Only pending tracks are eligible for automated identification runs.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// CanTransition reports whether moving from s to next preserves
// monotonicity. Human review resolution (manual_review -> identified) is the
// only move out of a terminal automated state.
func (s Status) CanTransition(next Status) bool {
	if !s.Valid() || !next.Valid() || s == next {
		return false
	}
	if s == StatusManualReview && next == StatusIdentified {
		return true
	}
	return s == StatusPending && statusRank[next] == 1
}

// Track is one row of the catalog awaiting or holding identification.
type Track struct {
	ID           int64
	Title        string
	ArtistName   string
	ISRC         string
	ReleaseTitle string
	Duration     string
	AudioPath    string
	Status       Status
	Confidence   float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credit is a stored songwriter or publisher credit for a track.
type Credit struct {
	ID            int64
	TrackID       int64
	Name          string
	Role          string
	PublisherName string
	ISWC          string
	Source        string
	Confidence    float64
	CreatedAt     time.Time
}

// Attempt records one identification attempt against a track, successful or
// not. Failed attempts carry zero confidence and the error text in Result.
type Attempt struct {
	ID         int64
	TrackID    int64
	Source     string
	Query      string
	Result     string
	Confidence float64
	Timestamp  time.Time
}

// Stats summarizes catalog composition by status.
type Stats struct {
	Total      int
	ByStatus   map[Status]int
	AvgConf    float64
	WithCredit int
}
