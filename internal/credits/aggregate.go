package credits

import (
	"context"
	"log/slog"

	"songwriterid/internal/logging"
	"songwriterid/internal/metadata"
	"songwriterid/internal/textnorm"
)

// maxCandidates bounds how many search results are expanded into credit
// lookups per track.
const maxCandidates = 3

// positionFactors discount credits from lower-ranked candidates.
var positionFactors = [maxCandidates]float64{1.0, 0.9, 0.8}

// Collector gathers credits for a track by expanding its top candidate
// recordings through a metadata source.
type Collector struct {
	source metadata.Source
	logger *slog.Logger
}

// NewCollector builds a Collector over the given source.
func NewCollector(source metadata.Source, logger *slog.Logger) *Collector {
	return &Collector{
		source: source,
		logger: logging.NewComponentLogger(logger, "credits"),
	}
}

// Collect expands up to three candidates into credits, scales each credit's
// confidence by candidate rank and score, and deduplicates by person and
// role. Permanent lookup failures on individual candidates are skipped;
// transient failures abort so the caller can retry the track.
func (c *Collector) Collect(ctx context.Context, query metadata.TrackQuery, candidates []metadata.Candidate) ([]Credit, error) {
	var all []Credit
	for i, cand := range candidates {
		if i >= maxCandidates {
			break
		}
		recCredits, err := c.collectForCandidate(ctx, cand)
		if err != nil {
			if metadata.IsTransient(err) {
				return nil, err
			}
			c.logger.Warn("skipping candidate",
				logging.String("recording_id", cand.Recording.ID),
				logging.Error(err))
			continue
		}
		factor := positionFactors[i]
		for j := range recCredits {
			recCredits[j].Confidence *= factor * cand.Score
			recCredits[j].RecordingID = cand.Recording.ID
			recCredits[j].RecordingTitle = cand.Recording.Title
		}
		all = append(all, recCredits...)
	}

	deduped := Dedupe(all)
	c.logger.Debug("credit collection complete",
		logging.String(logging.FieldTitle, query.Title),
		logging.String(logging.FieldArtist, query.Artist),
		logging.Int("credits", len(deduped)))
	return deduped, nil
}

// collectForCandidate fetches a candidate's full recording and walks its
// work relations. Recording-level credits are the fallback when no work
// yields anything.
func (c *Collector) collectForCandidate(ctx context.Context, cand metadata.Candidate) ([]Credit, error) {
	rec, err := c.source.Recording(ctx, cand.Recording.ID)
	if err != nil {
		return nil, err
	}

	var credits []Credit
	for _, workRel := range rec.WorkRelations {
		work, err := c.source.Work(ctx, workRel.WorkID)
		if err != nil {
			if metadata.IsTransient(err) {
				return nil, err
			}
			c.logger.Warn("skipping work",
				logging.String("work_id", workRel.WorkID),
				logging.Error(err))
			continue
		}
		credits = append(credits, FromWork(work, workRel.WorkTitle, c.source.Name())...)
	}

	if len(credits) == 0 {
		credits = FromRecording(rec, c.source.Name())
	}
	return credits, nil
}

// Dedupe removes duplicate credits for the same person in the same role,
// keeping the highest-confidence entry. Input order is preserved for
// first-seen keys.
func Dedupe(credits []Credit) []Credit {
	type key struct {
		name string
		role string
	}
	index := make(map[key]int, len(credits))
	out := make([]Credit, 0, len(credits))
	for _, credit := range credits {
		k := key{name: textnorm.MatchKey(credit.Name), role: credit.Role}
		if pos, ok := index[k]; ok {
			if credit.Confidence > out[pos].Confidence {
				out[pos] = credit
			}
			continue
		}
		index[k] = len(out)
		out = append(out, credit)
	}
	return out
}
