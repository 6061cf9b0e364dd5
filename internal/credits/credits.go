// Package credits extracts songwriter, publisher, and related credits from
// metadata entities and aggregates them across candidate recordings into a
// deduplicated credit list.
package credits

import (
	"strings"

	"songwriterid/internal/metadata"
)

// Standardized credit roles.
const (
	RoleComposer  = "composer"
	RoleLyricist  = "lyricist"
	RoleArranger  = "arranger"
	RoleProducer  = "producer"
	RolePublisher = "publisher"
)

// Confidence assigned at extraction time, before candidate scaling.
const (
	workCreditConfidence      = 0.9
	recordingCreditConfidence = 0.7
)

var (
	composerRoles = map[string]bool{"composer": true, "writer": true, "songwriter": true}
	lyricistRoles = map[string]bool{"lyricist": true}
	arrangerRoles = map[string]bool{"arranger": true}
	producerRoles = map[string]bool{"producer": true}

	publisherRelationTypes = map[string]bool{
		"publisher":          true,
		"publishing company": true,
		"original publisher": true,
	}
	// label_type rows that identify publishing companies in the mirror
	// schema.
	publisherLabelTypeIDs = map[int]bool{1: true, 3: true, 4: true, 5: true, 8: true}
)

// Credit is one person or company credited on a track.
type Credit struct {
	Name           string
	Role           string
	WorkTitle      string
	Confidence     float64
	ISWC           string
	SourceName     string
	SourceID       string
	RecordingID    string
	RecordingTitle string
}

// StandardizeRole maps a raw relation type to a standardized role. Unknown
// roles pass through lowercased.
func StandardizeRole(raw string) string {
	role := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case composerRoles[role]:
		return RoleComposer
	case lyricistRoles[role]:
		return RoleLyricist
	case arrangerRoles[role]:
		return RoleArranger
	case producerRoles[role]:
		return RoleProducer
	default:
		return role
	}
}

// IsPublisher reports whether a label relation represents a publishing
// company, by relation type or by label type.
func IsPublisher(rel metadata.LabelRelation) bool {
	if publisherRelationTypes[strings.ToLower(strings.TrimSpace(rel.Type))] {
		return true
	}
	return publisherLabelTypeIDs[rel.LabelTypeID]
}

// FromWork extracts writer and publisher credits from a work. Work-level
// credits carry high confidence; the work's ISWC propagates onto every
// credit.
func FromWork(work *metadata.Work, workTitle, sourceName string) []Credit {
	if work == nil {
		return nil
	}
	if workTitle == "" {
		workTitle = work.Title
	}

	var credits []Credit
	for _, rel := range work.ArtistRelations {
		credits = append(credits, Credit{
			Name:       rel.ArtistName,
			Role:       StandardizeRole(rel.Type),
			WorkTitle:  workTitle,
			Confidence: workCreditConfidence,
			ISWC:       work.ISWC,
			SourceName: sourceName,
			SourceID:   work.ID,
		})
	}
	for _, rel := range work.LabelRelations {
		if !IsPublisher(rel) {
			continue
		}
		credits = append(credits, Credit{
			Name:       rel.LabelName,
			Role:       RolePublisher,
			WorkTitle:  workTitle,
			Confidence: workCreditConfidence,
			ISWC:       work.ISWC,
			SourceName: sourceName,
			SourceID:   work.ID,
		})
	}
	return credits
}

// FromRecording extracts writer credits attached directly to a recording.
// Used as a fallback when a recording has no linked works; confidence is
// reduced accordingly. Producer-only relations are skipped, matching the
// writer-role filter applied at the recording level.
func FromRecording(rec *metadata.Recording, sourceName string) []Credit {
	if rec == nil {
		return nil
	}
	var credits []Credit
	for _, rel := range rec.ArtistRelations {
		raw := strings.ToLower(strings.TrimSpace(rel.Type))
		if !composerRoles[raw] && !lyricistRoles[raw] && !arrangerRoles[raw] {
			continue
		}
		credits = append(credits, Credit{
			Name:       rel.ArtistName,
			Role:       StandardizeRole(rel.Type),
			WorkTitle:  rec.Title,
			Confidence: recordingCreditConfidence,
			SourceName: sourceName,
			SourceID:   rec.ID,
		})
	}
	return credits
}
