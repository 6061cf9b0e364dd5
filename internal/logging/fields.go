package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldTrackID is the standardized structured logging key for catalog track identifiers.
	FieldTrackID = "track_id"
	// FieldTier is the standardized structured logging key for identification tier numbers.
	FieldTier = "tier"
	// FieldSource is the standardized structured logging key for metadata source names.
	FieldSource = "source"
	// FieldRunID is the standardized structured logging key for catalog run identifiers.
	FieldRunID = "run_id"
	// FieldTitle is the standardized structured logging key for track titles.
	FieldTitle = "title"
	// FieldArtist is the standardized structured logging key for artist names.
	FieldArtist = "artist"
	// FieldConfidence is the standardized structured logging key for confidence scores.
	FieldConfidence = "confidence"
)
