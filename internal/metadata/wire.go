package metadata

// Wire types for the MusicBrainz ws/2 JSON responses. Only the fields the
// lookups consume are mapped.

type recordingSearchResponse struct {
	Count      int             `json:"count"`
	Offset     int             `json:"offset"`
	Recordings []wireRecording `json:"recordings"`
}

type wireRecording struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Length       int                `json:"length"`
	ArtistCredit []wireArtistCredit `json:"artist-credit"`
	Releases     []wireRelease      `json:"releases"`
	Relations    []wireRelation     `json:"relations"`
}

type wireArtistCredit struct {
	Name   string     `json:"name"`
	Artist wireArtist `json:"artist"`
}

type wireArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type wireRelease struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	ReleaseGroup wireReleaseGroup `json:"release-group"`
}

type wireReleaseGroup struct {
	ID string `json:"id"`
}

type wireRelation struct {
	Type   string      `json:"type"`
	Artist *wireArtist `json:"artist"`
	Work   *wireWork   `json:"work"`
	Label  *wireLabel  `json:"label"`
}

type wireWork struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	ISWCs     []string       `json:"iswcs"`
	Relations []wireRelation `json:"relations"`
}

type wireLabel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (w wireRecording) toRecording() Recording {
	rec := Recording{
		ID:       w.ID,
		Title:    w.Title,
		LengthMS: w.Length,
	}
	for _, credit := range w.ArtistCredit {
		rec.ArtistCredits = append(rec.ArtistCredits, ArtistCredit{
			ArtistID:   credit.Artist.ID,
			ArtistName: credit.Artist.Name,
			CreditName: credit.Name,
		})
	}
	for _, rel := range w.Releases {
		rec.Releases = append(rec.Releases, Release{
			ID:             rel.ID,
			Title:          rel.Title,
			ReleaseGroupID: rel.ReleaseGroup.ID,
		})
	}
	for _, rel := range w.Relations {
		switch {
		case rel.Work != nil:
			rec.WorkRelations = append(rec.WorkRelations, WorkRelation{
				WorkID:    rel.Work.ID,
				WorkTitle: rel.Work.Title,
			})
		case rel.Artist != nil:
			rec.ArtistRelations = append(rec.ArtistRelations, ArtistRelation{
				Type:       rel.Type,
				ArtistID:   rel.Artist.ID,
				ArtistName: rel.Artist.Name,
			})
		}
	}
	return rec
}

func (w wireWork) toWork() Work {
	work := Work{
		ID:    w.ID,
		Title: w.Title,
	}
	if len(w.ISWCs) > 0 {
		work.ISWC = w.ISWCs[0]
	}
	for _, rel := range w.Relations {
		switch {
		case rel.Artist != nil:
			work.ArtistRelations = append(work.ArtistRelations, ArtistRelation{
				Type:       rel.Type,
				ArtistID:   rel.Artist.ID,
				ArtistName: rel.Artist.Name,
			})
		case rel.Label != nil:
			work.LabelRelations = append(work.LabelRelations, LabelRelation{
				Type:          rel.Type,
				LabelID:       rel.Label.ID,
				LabelName:     rel.Label.Name,
				LabelTypeName: rel.Label.Type,
			})
		}
	}
	return work
}
