package metadata

// TrackQuery carries the search terms for a recording lookup. Release is
// optional; when empty the release component of candidate scores falls back
// to a neutral value.
type TrackQuery struct {
	Title   string
	Artist  string
	Release string
}

// ArtistCredit names one artist credited on a recording.
type ArtistCredit struct {
	ArtistID   string
	ArtistName string
	CreditName string
}

// Release is an album or single a recording appears on.
type Release struct {
	ID             string
	Title          string
	ReleaseGroupID string
}

// WorkRelation links a recording to the underlying composition.
type WorkRelation struct {
	WorkID    string
	WorkTitle string
}

// ArtistRelation is a typed relationship between an entity and an artist,
// such as "composer" or "lyricist".
type ArtistRelation struct {
	Type       string
	ArtistID   string
	ArtistName string
}

// LabelRelation is a typed relationship between a work and a label. The
// label type identifies publishing companies among labels.
type LabelRelation struct {
	Type          string
	LabelID       string
	LabelName     string
	LabelTypeID   int
	LabelTypeName string
}

// Recording is a single recorded performance of a work.
type Recording struct {
	ID              string
	Title           string
	LengthMS        int
	ArtistCredits   []ArtistCredit
	Releases        []Release
	WorkRelations   []WorkRelation
	ArtistRelations []ArtistRelation
}

// Artist returns the primary credited artist name, or "" when uncredited.
func (r Recording) Artist() string {
	if len(r.ArtistCredits) == 0 {
		return ""
	}
	return r.ArtistCredits[0].ArtistName
}

// Work is the composition behind one or more recordings.
type Work struct {
	ID              string
	Title           string
	ISWC            string
	ArtistRelations []ArtistRelation
	LabelRelations  []LabelRelation
}

// Candidate pairs a recording with its match score against the searched
// track.
type Candidate struct {
	Recording Recording
	Score     float64
}
