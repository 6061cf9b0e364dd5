// Package tierengine drives the per-track identification state machine:
// three tiers of credit resolution attempted in order, with every attempt
// recorded and the first sufficiently confident tier setting the track's
// terminal status.
package tierengine

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"songwriterid/internal/audiofp"
	"songwriterid/internal/catalog"
	"songwriterid/internal/config"
	"songwriterid/internal/credits"
	"songwriterid/internal/entityres"
	"songwriterid/internal/logging"
	"songwriterid/internal/metadata"
	"songwriterid/internal/textnorm"
)

// matchProbabilityFloor is the minimum entity resolution probability for a
// tier 2 candidate to survive filtering.
const matchProbabilityFloor = 0.5

// Outcome is the result of one tier invocation. Exactly one of three shapes:
// credits found (Credits non-empty), nothing found (all zero), or failure
// (Err set, Retryable indicating whether the source may recover).
type Outcome struct {
	Credits    []credits.Credit
	Confidence float64
	Err        error
	Retryable  bool
}

// Accepted reports whether the tier produced credits clearing its threshold.
func (o Outcome) Accepted() bool {
	return o.Err == nil && len(o.Credits) > 0
}

// Engine resolves pending tracks through the identification tiers.
type Engine struct {
	cfg       *config.Config
	store     *catalog.Store
	source    metadata.Source
	collector *credits.Collector
	resolver  *entityres.Model
	health    *metadata.HealthCache
	index     *audiofp.Index
	logger    *slog.Logger
}

// New wires an engine over an opened store and metadata source. Entity
// resolution weights and the reference fingerprint index are loaded here so
// a misconfigured tier fails at startup, not mid-run.
func New(cfg *config.Config, store *catalog.Store, source metadata.Source, logger *slog.Logger) (*Engine, error) {
	weights := entityres.DefaultWeights()
	if cfg.EntityResolution.WeightsPath != "" {
		loaded, err := entityres.LoadWeights(cfg.EntityResolution.WeightsPath)
		if err != nil {
			return nil, fmt.Errorf("load entity resolution weights: %w", err)
		}
		weights = loaded
	}

	var index *audiofp.Index
	if cfg.Tier3.Enabled && cfg.Paths.FingerprintDir != "" {
		loaded, err := audiofp.LoadIndex(cfg.Paths.FingerprintDir)
		if err != nil {
			return nil, fmt.Errorf("load fingerprint index: %w", err)
		}
		index = loaded
	}

	engineLogger := logging.NewComponentLogger(logger, "tierengine")
	return &Engine{
		cfg:       cfg,
		store:     store,
		source:    source,
		collector: credits.NewCollector(source, logger),
		resolver:  entityres.New(weights),
		health:    metadata.NewHealthCache(),
		index:     index,
		logger:    engineLogger,
	}, nil
}

// ProcessTrack runs the enabled tiers against one pending track and persists
// the terminal status. The returned status is the one the track ended in.
func (e *Engine) ProcessTrack(ctx context.Context, track *catalog.Track) (catalog.Status, error) {
	if track.Status != catalog.StatusPending {
		return track.Status, metadata.Wrap(metadata.ErrValidation, "tierengine", "process track",
			fmt.Sprintf("track %d is %s, not pending", track.ID, track.Status), nil)
	}

	if e.tierRuns(e.cfg.Tier1) {
		status, done, err := e.attemptTier(ctx, track, 1, catalog.StatusIdentifiedTier1, e.runTier1(ctx, track))
		if done || err != nil {
			return status, err
		}
	}
	if e.tierRuns(e.cfg.Tier2) {
		status, done, err := e.attemptTier(ctx, track, 2, catalog.StatusIdentifiedTier2, e.runTier2(ctx, track))
		if done || err != nil {
			return status, err
		}
	}
	if e.tierRuns(e.cfg.Tier3.Tier) && e.tier3Available(track) {
		status, done, err := e.attemptTier(ctx, track, 3, catalog.StatusIdentifiedTier3, e.runTier3(ctx, track))
		if done || err != nil {
			return status, err
		}
	}

	attempt := catalog.Attempt{
		Source: e.source.Name(),
		Query:  queryDescription(track),
		Result: "no tier produced credits above threshold",
	}
	if err := e.store.MarkManualReview(ctx, track.ID, attempt); err != nil {
		return track.Status, err
	}
	e.logger.Info("track needs manual review",
		logging.Int64(logging.FieldTrackID, track.ID),
		logging.String(logging.FieldTitle, track.Title))
	return catalog.StatusManualReview, nil
}

// attemptTier records the outcome of one tier invocation and, on success,
// persists the identification. done is true when the track reached a
// terminal state; a non-nil error is a storage failure.
func (e *Engine) attemptTier(ctx context.Context, track *catalog.Track, tier int, next catalog.Status, outcome Outcome) (catalog.Status, bool, error) {
	attempt := catalog.Attempt{
		Source:     e.source.Name(),
		Query:      queryDescription(track),
		Confidence: outcome.Confidence,
	}

	if outcome.Err != nil {
		attempt.Result = fmt.Sprintf("tier %d failed: %v", tier, outcome.Err)
		attempt.Confidence = 0
		e.logger.Warn("tier failed",
			logging.Int64(logging.FieldTrackID, track.ID),
			logging.Int(logging.FieldTier, tier),
			logging.Bool("retryable", outcome.Retryable),
			logging.Error(outcome.Err))
		if err := e.store.AppendAttempt(ctx, track.ID, attempt); err != nil {
			return track.Status, false, err
		}
		return track.Status, false, nil
	}

	if !outcome.Accepted() {
		attempt.Result = fmt.Sprintf("tier %d: no credits above threshold", tier)
		if err := e.store.AppendAttempt(ctx, track.ID, attempt); err != nil {
			return track.Status, false, err
		}
		return track.Status, false, nil
	}

	attempt.Result = fmt.Sprintf("tier %d: %d credits", tier, len(outcome.Credits))
	stored := storedCredits(outcome.Credits)
	if err := e.store.SaveTierResult(ctx, track.ID, next, outcome.Confidence, stored, attempt); err != nil {
		return track.Status, false, err
	}
	e.logger.Info("track identified",
		logging.Int64(logging.FieldTrackID, track.ID),
		logging.Int(logging.FieldTier, tier),
		logging.Int("credits", len(outcome.Credits)),
		logging.Float64(logging.FieldConfidence, outcome.Confidence))
	return next, true, nil
}

// runTier1 searches structured metadata with the track's own fields.
func (e *Engine) runTier1(ctx context.Context, track *catalog.Track) Outcome {
	if err := e.health.Check(ctx, e.source); err != nil {
		return Outcome{Err: err, Retryable: true}
	}
	query := queryFor(track)
	candidates, err := e.source.SearchRecordings(ctx, query)
	if err != nil {
		return Outcome{Err: err, Retryable: metadata.IsTransient(err)}
	}
	return e.collectOutcome(ctx, query, candidates, e.cfg.Tier1.ConfidenceThreshold)
}

// runTier2 retries the search with canonicalized query variants and keeps
// only candidates the entity resolution model accepts.
func (e *Engine) runTier2(ctx context.Context, track *catalog.Track) Outcome {
	if err := e.health.Check(ctx, e.source); err != nil {
		return Outcome{Err: err, Retryable: true}
	}

	base := queryFor(track)
	var candidates []metadata.Candidate
	seen := make(map[string]bool)
	for _, query := range queryVariants(base) {
		found, err := e.source.SearchRecordings(ctx, query)
		if err != nil {
			if metadata.IsTransient(err) {
				return Outcome{Err: err, Retryable: true}
			}
			continue
		}
		for _, cand := range found {
			if seen[cand.Recording.ID] {
				continue
			}
			seen[cand.Recording.ID] = true
			if e.resolver.MatchProbability(track.Title, cand.Recording.Title) < matchProbabilityFloor {
				continue
			}
			candidates = append(candidates, cand)
		}
	}
	return e.collectOutcome(ctx, base, candidates, e.cfg.Tier2.ConfidenceThreshold)
}

// runTier3 fingerprints the track's audio and derives credits from the best
// matching reference recording.
func (e *Engine) runTier3(ctx context.Context, track *catalog.Track) Outcome {
	probe, err := audiofp.ExtractFile(track.AudioPath, e.cfg.Tier3.WindowFrames)
	if err != nil {
		return Outcome{Err: err}
	}
	match, ok := e.index.BestMatch(probe)
	if !ok || match.Similarity < e.cfg.Tier3.SimilarityThreshold {
		return Outcome{}
	}

	e.logger.Debug("fingerprint match",
		logging.Int64(logging.FieldTrackID, track.ID),
		logging.String("recording_id", match.Entry.RecordingID),
		logging.Float64("similarity", match.Similarity))

	candidate := metadata.Candidate{
		Recording: metadata.Recording{ID: match.Entry.RecordingID, Title: match.Entry.Title},
		Score:     match.Similarity,
	}
	return e.collectOutcome(ctx, queryFor(track), []metadata.Candidate{candidate}, e.cfg.Tier3.ConfidenceThreshold)
}

// collectOutcome expands candidates into credits and applies the tier's
// confidence threshold. Track confidence is the mean of retained credits.
func (e *Engine) collectOutcome(ctx context.Context, query metadata.TrackQuery, candidates []metadata.Candidate, threshold float64) Outcome {
	if len(candidates) == 0 {
		return Outcome{}
	}
	collected, err := e.collector.Collect(ctx, query, candidates)
	if err != nil {
		return Outcome{Err: err, Retryable: metadata.IsTransient(err)}
	}

	var retained []credits.Credit
	for _, credit := range collected {
		if credit.Confidence >= threshold {
			retained = append(retained, credit)
		}
	}
	if len(retained) == 0 {
		return Outcome{}
	}
	return Outcome{Credits: retained, Confidence: meanConfidence(retained)}
}

// tierRuns reports whether a tier should execute against the configured
// backend. An empty source list admits any backend.
func (e *Engine) tierRuns(tier config.Tier) bool {
	if !tier.Enabled {
		return false
	}
	if len(tier.Sources) == 0 {
		return true
	}
	name := e.source.Name()
	for _, allowed := range tier.Sources {
		if allowed == name {
			return true
		}
	}
	return false
}

// tier3Available reports whether tier 3 preconditions hold. Missing audio or
// an empty reference index skips the tier without recording an attempt.
func (e *Engine) tier3Available(track *catalog.Track) bool {
	if track.AudioPath == "" || e.index.Len() == 0 {
		return false
	}
	if _, err := os.Stat(track.AudioPath); err != nil {
		e.logger.Debug("audio path unreadable, skipping fingerprint tier",
			logging.Int64(logging.FieldTrackID, track.ID),
			logging.Error(err))
		return false
	}
	return true
}

func queryFor(track *catalog.Track) metadata.TrackQuery {
	return metadata.TrackQuery{
		Title:   track.Title,
		Artist:  track.ArtistName,
		Release: track.ReleaseTitle,
	}
}

// queryVariants derives fallback queries: canonical title, primary artist,
// and both combined. The base query is excluded; variants identical to an
// earlier one are dropped.
func queryVariants(base metadata.TrackQuery) []metadata.TrackQuery {
	title := textnorm.CanonicalTitle(base.Title)
	artist := textnorm.PrimaryArtist(base.Artist)

	proposals := []metadata.TrackQuery{
		{Title: title, Artist: base.Artist, Release: base.Release},
		{Title: base.Title, Artist: artist, Release: base.Release},
		{Title: title, Artist: artist, Release: base.Release},
	}
	var variants []metadata.TrackQuery
	seen := map[metadata.TrackQuery]bool{base: true}
	for _, query := range proposals {
		if query.Title == "" || query.Artist == "" || seen[query] {
			continue
		}
		seen[query] = true
		variants = append(variants, query)
	}
	return variants
}

func queryDescription(track *catalog.Track) string {
	return fmt.Sprintf("%s / %s", track.Title, track.ArtistName)
}

func meanConfidence(list []credits.Credit) float64 {
	if len(list) == 0 {
		return 0
	}
	sum := 0.0
	for _, credit := range list {
		sum += credit.Confidence
	}
	return sum / float64(len(list))
}

// storedCredits converts collected credits into catalog rows. Publisher
// credits carry the company name in the dedicated column.
func storedCredits(list []credits.Credit) []catalog.Credit {
	out := make([]catalog.Credit, 0, len(list))
	for _, credit := range list {
		row := catalog.Credit{
			Name:       credit.Name,
			Role:       credit.Role,
			ISWC:       credit.ISWC,
			Source:     credit.SourceName,
			Confidence: credit.Confidence,
		}
		if credit.Role == credits.RolePublisher {
			row.PublisherName = credit.Name
		}
		out = append(out, row)
	}
	return out
}
