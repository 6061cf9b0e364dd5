// Package catalog persists tracks, songwriter credits, and identification
// attempts in SQLite.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"songwriterid/internal/config"
	"songwriterid/internal/metadata"
)

// ErrNotFound indicates the requested track does not exist.
var ErrNotFound = errors.New("track not found")

// ErrInvalidTransition indicates a status change that would violate the
// identification lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database. A failure here is
// fatal to a processing run; callers should not retry per-track.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "open", "ensure directories", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "open", dbPath, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "open", "init schema", err)
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// CheckHealth verifies the database answers queries.
func (s *Store) CheckHealth(ctx context.Context) error {
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "health", "", err)
	}
	return nil
}

// AddTrack inserts a new track in pending state and returns its ID.
func (s *Store) AddTrack(ctx context.Context, track *Track) (int64, error) {
	if strings.TrimSpace(track.Title) == "" || strings.TrimSpace(track.ArtistName) == "" {
		return 0, metadata.Wrap(metadata.ErrValidation, "catalog", "add track", "title and artist are required", nil)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO tracks (
            title, artist_name, track_isrc, release_title, duration,
            audio_path, identification_status, confidence_score,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		track.Title,
		track.ArtistName,
		nullableString(track.ISRC),
		nullableString(track.ReleaseTitle),
		nullableString(track.Duration),
		nullableString(track.AudioPath),
		StatusPending,
		now,
		now,
	)
	if err != nil {
		return 0, metadata.Wrap(metadata.ErrStorage, "catalog", "add track", "", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, metadata.Wrap(metadata.ErrStorage, "catalog", "add track", "read insert id", err)
	}
	return id, nil
}

// TrackByID fetches one track.
func (s *Store) TrackByID(ctx context.Context, id int64) (*Track, error) {
	row := s.db.QueryRowContext(ctx, selectTrack+" WHERE track_id = ?", id)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "track by id", "", err)
	}
	return track, nil
}

// PendingTracks lists tracks awaiting identification, oldest first. A limit
// below 1 returns all pending tracks.
func (s *Store) PendingTracks(ctx context.Context, limit int) ([]Track, error) {
	query := selectTrack + " WHERE identification_status = ? ORDER BY track_id"
	args := []any{StatusPending}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryTracks(ctx, query, args...)
}

// TracksByStatus lists tracks in the given state, oldest first.
func (s *Store) TracksByStatus(ctx context.Context, status Status) ([]Track, error) {
	if !status.Valid() {
		return nil, metadata.Wrap(metadata.ErrValidation, "catalog", "tracks by status", fmt.Sprintf("unknown status %q", status), nil)
	}
	return s.queryTracks(ctx, selectTrack+" WHERE identification_status = ? ORDER BY track_id", status)
}

// SaveTierResult atomically records a successful identification: the status
// transition, the credit list, and the attempt row all land in one
// transaction so a failure leaves the track untouched.
func (s *Store) SaveTierResult(ctx context.Context, trackID int64, next Status, confidence float64, credits []Credit, attempt Attempt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "save tier result", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := currentStatus(ctx, tx, trackID)
	if err != nil {
		return err
	}
	if !current.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s for track %d", ErrInvalidTransition, current, next, trackID)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, `
        UPDATE tracks
        SET identification_status = ?, confidence_score = ?, updated_at = ?
        WHERE track_id = ?`,
		next, confidence, now, trackID,
	); err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "save tier result", "update track", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM songwriter_credits WHERE track_id = ?", trackID); err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "save tier result", "clear credits", err)
	}
	for _, credit := range credits {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO songwriter_credits (
                track_id, songwriter_name, role, publisher_name, iswc,
                source_of_info, confidence_score, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			trackID,
			credit.Name,
			nullableString(credit.Role),
			nullableString(credit.PublisherName),
			nullableString(credit.ISWC),
			nullableString(credit.Source),
			credit.Confidence,
			now,
		); err != nil {
			return metadata.Wrap(metadata.ErrStorage, "catalog", "save tier result", "insert credit", err)
		}
	}

	if err := insertAttempt(ctx, tx, trackID, attempt, now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "save tier result", "commit", err)
	}
	return nil
}

// MarkManualReview moves a pending track to manual review, recording the
// attempt that exhausted the tiers.
func (s *Store) MarkManualReview(ctx context.Context, trackID int64, attempt Attempt) error {
	return s.SaveTierResult(ctx, trackID, StatusManualReview, 0, nil, attempt)
}

// AppendAttempt records an identification attempt without changing track
// state. Used for failed or below-threshold tier invocations.
func (s *Store) AppendAttempt(ctx context.Context, trackID int64, attempt Attempt) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "append attempt", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := insertAttempt(ctx, tx, trackID, attempt, now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "append attempt", "commit", err)
	}
	return nil
}

// ResolveReview applies a human decision to a track under manual review:
// status becomes identified with full confidence and the reviewer's credit
// list replaces whatever automation stored.
func (s *Store) ResolveReview(ctx context.Context, trackID int64, credits []Credit, reviewer string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "resolve review", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := currentStatus(ctx, tx, trackID)
	if err != nil {
		return err
	}
	if !current.CanTransition(StatusIdentified) {
		return fmt.Errorf("%w: %s -> %s for track %d", ErrInvalidTransition, current, StatusIdentified, trackID)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, `
        UPDATE tracks
        SET identification_status = ?, confidence_score = 1.0, updated_at = ?
        WHERE track_id = ?`,
		StatusIdentified, now, trackID,
	); err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "resolve review", "update track", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM songwriter_credits WHERE track_id = ?", trackID); err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "resolve review", "clear credits", err)
	}
	for _, credit := range credits {
		if _, err := tx.ExecContext(ctx, `
            INSERT INTO songwriter_credits (
                track_id, songwriter_name, role, publisher_name, iswc,
                source_of_info, confidence_score, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, 1.0, ?)`,
			trackID,
			credit.Name,
			nullableString(credit.Role),
			nullableString(credit.PublisherName),
			nullableString(credit.ISWC),
			nullableString("manual_review"),
			now,
		); err != nil {
			return metadata.Wrap(metadata.ErrStorage, "catalog", "resolve review", "insert credit", err)
		}
	}

	attempt := Attempt{
		Source:     "manual_review",
		Query:      reviewer,
		Result:     fmt.Sprintf("resolved with %d credits", len(credits)),
		Confidence: 1.0,
	}
	if err := insertAttempt(ctx, tx, trackID, attempt, now); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "resolve review", "commit", err)
	}
	return nil
}

// CreditsForTrack lists stored credits for a track.
func (s *Store) CreditsForTrack(ctx context.Context, trackID int64) ([]Credit, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT credit_id, track_id, songwriter_name,
               COALESCE(role, ''), COALESCE(publisher_name, ''),
               COALESCE(iswc, ''), COALESCE(source_of_info, ''),
               confidence_score, created_at
        FROM songwriter_credits
        WHERE track_id = ?
        ORDER BY confidence_score DESC, credit_id`,
		trackID,
	)
	if err != nil {
		return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "credits for track", "", err)
	}
	defer rows.Close()

	var credits []Credit
	for rows.Next() {
		var credit Credit
		var created string
		if err := rows.Scan(&credit.ID, &credit.TrackID, &credit.Name,
			&credit.Role, &credit.PublisherName, &credit.ISWC,
			&credit.Source, &credit.Confidence, &created); err != nil {
			return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "credits for track", "scan row", err)
		}
		credit.CreatedAt = parseTime(created)
		credits = append(credits, credit)
	}
	return credits, rows.Err()
}

// AttemptsForTrack lists identification attempts, newest first.
func (s *Store) AttemptsForTrack(ctx context.Context, trackID int64) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT attempt_id, track_id, source_used,
               COALESCE(query_performed, ''), COALESCE(result, ''),
               confidence_score, timestamp
        FROM identification_attempts
        WHERE track_id = ?
        ORDER BY attempt_id DESC`,
		trackID,
	)
	if err != nil {
		return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "attempts for track", "", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var attempt Attempt
		var ts string
		if err := rows.Scan(&attempt.ID, &attempt.TrackID, &attempt.Source,
			&attempt.Query, &attempt.Result, &attempt.Confidence, &ts); err != nil {
			return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "attempts for track", "scan row", err)
		}
		attempt.Timestamp = parseTime(ts)
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// Stats summarizes the catalog by status.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByStatus: make(map[Status]int)}

	rows, err := s.db.QueryContext(ctx,
		"SELECT identification_status, COUNT(1) FROM tracks GROUP BY identification_status")
	if err != nil {
		return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "stats", "", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "stats", "scan row", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "stats", "", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COALESCE(AVG(confidence_score), 0) FROM tracks WHERE identification_status != ?",
		StatusPending,
	).Scan(&stats.AvgConf)
	if err != nil {
		return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "stats", "avg confidence", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT track_id) FROM songwriter_credits").Scan(&stats.WithCredit)
	if err != nil {
		return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "stats", "credited tracks", err)
	}
	return stats, nil
}

const selectTrack = `
    SELECT track_id, title, artist_name,
           COALESCE(track_isrc, ''), COALESCE(release_title, ''),
           COALESCE(duration, ''), COALESCE(audio_path, ''),
           identification_status, confidence_score, created_at, updated_at
    FROM tracks`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (*Track, error) {
	var track Track
	var created, updated string
	err := row.Scan(&track.ID, &track.Title, &track.ArtistName,
		&track.ISRC, &track.ReleaseTitle, &track.Duration, &track.AudioPath,
		&track.Status, &track.Confidence, &created, &updated)
	if err != nil {
		return nil, err
	}
	track.CreatedAt = parseTime(created)
	track.UpdatedAt = parseTime(updated)
	return &track, nil
}

func (s *Store) queryTracks(ctx context.Context, query string, args ...any) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "query tracks", "", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, metadata.Wrap(metadata.ErrStorage, "catalog", "query tracks", "scan row", err)
		}
		tracks = append(tracks, *track)
	}
	return tracks, rows.Err()
}

func currentStatus(ctx context.Context, tx *sql.Tx, trackID int64) (Status, error) {
	var status Status
	err := tx.QueryRowContext(ctx,
		"SELECT identification_status FROM tracks WHERE track_id = ?", trackID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: id %d", ErrNotFound, trackID)
	}
	if err != nil {
		return "", metadata.Wrap(metadata.ErrStorage, "catalog", "current status", "", err)
	}
	return status, nil
}

func insertAttempt(ctx context.Context, tx *sql.Tx, trackID int64, attempt Attempt, now string) error {
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO identification_attempts (
            track_id, source_used, query_performed, result,
            confidence_score, timestamp
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		trackID,
		attempt.Source,
		nullableString(attempt.Query),
		nullableString(attempt.Result),
		attempt.Confidence,
		now,
	); err != nil {
		return metadata.Wrap(metadata.ErrStorage, "catalog", "insert attempt", "", err)
	}
	return nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
