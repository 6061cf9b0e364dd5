package tierengine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"songwriterid/internal/catalog"
	"songwriterid/internal/logging"
)

// Summary reports one catalog run. Failed counts tracks whose results could
// not be persisted; the run continues past them.
type Summary struct {
	RunID        string                 `json:"run_id"`
	Import       *catalog.ImportStats   `json:"import,omitempty"`
	Processed    int                    `json:"processed"`
	Identified   map[catalog.Status]int `json:"identified"`
	ManualReview int                    `json:"manual_review"`
	Failed       int                    `json:"failed"`
	Completed    bool                   `json:"completed"`
	Elapsed      time.Duration          `json:"elapsed"`
}

// ProcessCatalog optionally imports a CSV file, then resolves every pending
// track sequentially. A file lock serializes runs against the same data
// directory; a second concurrent run fails fast instead of interleaving.
func (e *Engine) ProcessCatalog(ctx context.Context, csvPath string, limit int) (*Summary, error) {
	lock := flock.New(filepath.Join(e.cfg.Paths.DataDir, "swid.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, errors.New("another catalog run is already in progress")
	}
	defer func() { _ = lock.Unlock() }()

	summary := &Summary{
		RunID:      uuid.NewString(),
		Identified: make(map[catalog.Status]int),
	}
	started := time.Now()
	logger := e.logger.With(logging.String(logging.FieldRunID, summary.RunID))
	logger.Info("catalog run started")

	if csvPath != "" {
		stats, err := e.store.ImportCSV(ctx, csvPath, e.cfg.Paths.AudioBaseDir)
		if err != nil {
			return summary, fmt.Errorf("import catalog: %w", err)
		}
		summary.Import = stats
		logger.Info("catalog imported",
			logging.Int("rows", stats.Rows),
			logging.Int("imported", stats.Imported),
			logging.Int("duplicates", stats.Duplicates),
			logging.Int("invalid", stats.Invalid))
	}

	pending, err := e.store.PendingTracks(ctx, limit)
	if err != nil {
		return summary, err
	}

	for i := range pending {
		// A run stops between tracks, never mid-track.
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(started)
			return summary, err
		}

		track := &pending[i]
		status, err := e.ProcessTrack(ctx, track)
		summary.Processed++
		if err != nil {
			summary.Failed++
			logger.Error("track processing failed",
				logging.Int64(logging.FieldTrackID, track.ID),
				logging.Error(err))
			continue
		}
		if status == catalog.StatusManualReview {
			summary.ManualReview++
		} else {
			summary.Identified[status]++
		}
	}

	summary.Completed = true
	summary.Elapsed = time.Since(started)
	logger.Info("catalog run finished",
		logging.Int("processed", summary.Processed),
		logging.Int("manual_review", summary.ManualReview),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed))
	return summary, nil
}
