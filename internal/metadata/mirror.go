package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"songwriterid/internal/config"
	"songwriterid/internal/logging"
	"songwriterid/internal/similarity"
)

// MirrorClient queries a local MusicBrainz database mirror. Lookups avoid
// the web service entirely, so there is no rate limiting.
type MirrorClient struct {
	db     *sql.DB
	path   string
	limit  int
	scorer *similarity.Scorer
	logger *slog.Logger
}

// NewMirrorClient opens the mirror database read-only.
func NewMirrorClient(cfg *config.Config, scorer *similarity.Scorer, logger *slog.Logger) (*MirrorClient, error) {
	db, err := sql.Open("sqlite", cfg.Source.MirrorPath)
	if err != nil {
		return nil, Wrap(ErrStorage, "musicbrainz_db", "open", cfg.Source.MirrorPath, err)
	}
	pragmas := []string{
		"PRAGMA query_only = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, Wrap(ErrStorage, "musicbrainz_db", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}
	return &MirrorClient{
		db:     db,
		path:   cfg.Source.MirrorPath,
		limit:  cfg.Source.CandidateLimit,
		scorer: scorer,
		logger: logging.NewComponentLogger(logger, "metadata.mirror"),
	}, nil
}

func (m *MirrorClient) Name() string { return "musicbrainz_db" }

// Close releases the database handle.
func (m *MirrorClient) Close() error {
	if m == nil || m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Ping verifies the mirror answers a trivial query.
func (m *MirrorClient) Ping(ctx context.Context) error {
	var one int
	if err := m.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return Wrap(ErrTransient, m.Name(), "ping", "", err)
	}
	return nil
}

var quoteStripper = regexp.MustCompile(`['"]`)

// nameVariations returns the fuzzy-match variants tried against mirror name
// columns: as-is, quotes stripped, and wrapped in single quotes. Mirror data
// sometimes stores titles with quoting the catalog lacks, and vice versa.
func nameVariations(name string) (plain, noQuotes, withQuotes string) {
	return "%" + name + "%",
		"%" + quoteStripper.ReplaceAllString(name, "") + "%",
		"%'" + name + "'%"
}

// SearchRecordings matches recordings by title and artist using LIKE
// variants, then scores the results against the query.
func (m *MirrorClient) SearchRecordings(ctx context.Context, query TrackQuery) ([]Candidate, error) {
	if strings.TrimSpace(query.Title) == "" {
		return nil, Wrap(ErrValidation, m.Name(), "search recordings", "title is required", nil)
	}

	titlePlain, titleNoQuotes, titleWithQuotes := nameVariations(query.Title)
	artistPlain, artistNoQuotes, artistWithQuotes := nameVariations(query.Artist)

	rows, err := m.db.QueryContext(ctx, `
        SELECT
            r.gid, r.name, COALESCE(r.length, 0),
            a.gid, a.name, acn.name
        FROM recording r
        JOIN artist_credit ac ON r.artist_credit = ac.id
        JOIN artist_credit_name acn ON acn.artist_credit = ac.id
        JOIN artist a ON a.id = acn.artist
        WHERE
            (LOWER(r.name) LIKE LOWER(?)
             OR LOWER(r.name) LIKE LOWER(?)
             OR LOWER(r.name) LIKE LOWER(?)
             OR LOWER(r.name) = LOWER(?))
        AND
            (LOWER(a.name) LIKE LOWER(?)
             OR LOWER(a.name) LIKE LOWER(?)
             OR LOWER(a.name) LIKE LOWER(?)
             OR LOWER(a.name) = LOWER(?))
        LIMIT ?`,
		titlePlain, titleNoQuotes, titleWithQuotes, query.Title,
		artistPlain, artistNoQuotes, artistWithQuotes, query.Artist,
		m.limit,
	)
	if err != nil {
		return nil, Wrap(ErrTransient, m.Name(), "search recordings", "", err)
	}
	defer rows.Close()

	var recordings []Recording
	for rows.Next() {
		var rec Recording
		var credit ArtistCredit
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.LengthMS,
			&credit.ArtistID, &credit.ArtistName, &credit.CreditName); err != nil {
			return nil, Wrap(ErrStorage, m.Name(), "search recordings", "scan row", err)
		}
		rec.ArtistCredits = []ArtistCredit{credit}
		recordings = append(recordings, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap(ErrTransient, m.Name(), "search recordings", "", err)
	}

	for i := range recordings {
		releases, err := m.releasesForRecording(ctx, recordings[i].ID)
		if err != nil {
			return nil, err
		}
		recordings[i].Releases = releases
	}

	m.logger.Debug("recording search complete",
		logging.String(logging.FieldTitle, query.Title),
		logging.String(logging.FieldArtist, query.Artist),
		logging.Int("results", len(recordings)))
	return scoreCandidates(m.scorer, query, recordings), nil
}

func (m *MirrorClient) releasesForRecording(ctx context.Context, recordingID string) ([]Release, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT rel.gid, rel.name, COALESCE(rg.gid, '')
        FROM release rel
        JOIN medium med ON med.release = rel.id
        JOIN track t ON t.medium = med.id
        JOIN recording r ON t.recording = r.id
        LEFT JOIN release_group rg ON rel.release_group = rg.id
        WHERE r.gid = ?`,
		recordingID,
	)
	if err != nil {
		return nil, Wrap(ErrTransient, m.Name(), "releases for recording", "", err)
	}
	defer rows.Close()

	var releases []Release
	for rows.Next() {
		var rel Release
		if err := rows.Scan(&rel.ID, &rel.Title, &rel.ReleaseGroupID); err != nil {
			return nil, Wrap(ErrStorage, m.Name(), "releases for recording", "scan row", err)
		}
		releases = append(releases, rel)
	}
	return releases, rows.Err()
}

// Recording fetches a recording with its work and artist relations.
func (m *MirrorClient) Recording(ctx context.Context, id string) (*Recording, error) {
	var rec Recording
	var credit ArtistCredit
	err := m.db.QueryRowContext(ctx, `
        SELECT r.gid, r.name, COALESCE(r.length, 0),
               a.gid, a.name, acn.name
        FROM recording r
        JOIN artist_credit ac ON r.artist_credit = ac.id
        JOIN artist_credit_name acn ON acn.artist_credit = ac.id
        JOIN artist a ON a.id = acn.artist
        WHERE r.gid = ?`,
		id,
	).Scan(&rec.ID, &rec.Title, &rec.LengthMS,
		&credit.ArtistID, &credit.ArtistName, &credit.CreditName)
	if err == sql.ErrNoRows {
		return nil, Wrap(ErrPermanent, m.Name(), "get recording", "not found: "+id, nil)
	}
	if err != nil {
		return nil, Wrap(ErrTransient, m.Name(), "get recording", "", err)
	}
	rec.ArtistCredits = []ArtistCredit{credit}

	releases, err := m.releasesForRecording(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	rec.Releases = releases

	if rec.WorkRelations, err = m.workRelations(ctx, rec.ID); err != nil {
		return nil, err
	}
	if rec.ArtistRelations, err = m.recordingArtistRelations(ctx, rec.ID); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *MirrorClient) workRelations(ctx context.Context, recordingID string) ([]WorkRelation, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT w.gid, w.name
        FROM l_recording_work l
        JOIN recording r ON l.entity0 = r.id
        JOIN work w ON l.entity1 = w.id
        WHERE r.gid = ?`,
		recordingID,
	)
	if err != nil {
		return nil, Wrap(ErrTransient, m.Name(), "work relations", "", err)
	}
	defer rows.Close()

	var relations []WorkRelation
	for rows.Next() {
		var rel WorkRelation
		if err := rows.Scan(&rel.WorkID, &rel.WorkTitle); err != nil {
			return nil, Wrap(ErrStorage, m.Name(), "work relations", "scan row", err)
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

func (m *MirrorClient) recordingArtistRelations(ctx context.Context, recordingID string) ([]ArtistRelation, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT lt.name, a.gid, a.name
        FROM l_artist_recording l
        JOIN link lnk ON l.link = lnk.id
        JOIN link_type lt ON lnk.link_type = lt.id
        JOIN artist a ON l.entity0 = a.id
        JOIN recording r ON l.entity1 = r.id
        WHERE r.gid = ?`,
		recordingID,
	)
	if err != nil {
		return nil, Wrap(ErrTransient, m.Name(), "artist relations", "", err)
	}
	defer rows.Close()

	var relations []ArtistRelation
	for rows.Next() {
		var rel ArtistRelation
		if err := rows.Scan(&rel.Type, &rel.ArtistID, &rel.ArtistName); err != nil {
			return nil, Wrap(ErrStorage, m.Name(), "artist relations", "scan row", err)
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

// Work fetches a work with its ISWC, artist relations, and label relations.
func (m *MirrorClient) Work(ctx context.Context, id string) (*Work, error) {
	var work Work
	var iswc sql.NullString
	err := m.db.QueryRowContext(ctx, `
        SELECT w.gid, w.name, i.iswc
        FROM work w
        LEFT JOIN iswc i ON i.work = w.id
        WHERE w.gid = ?`,
		id,
	).Scan(&work.ID, &work.Title, &iswc)
	if err == sql.ErrNoRows {
		return nil, Wrap(ErrPermanent, m.Name(), "get work", "not found: "+id, nil)
	}
	if err != nil {
		return nil, Wrap(ErrTransient, m.Name(), "get work", "", err)
	}
	if iswc.Valid {
		work.ISWC = iswc.String
	}

	if work.ArtistRelations, err = m.workArtistRelations(ctx, work.ID); err != nil {
		return nil, err
	}
	if work.LabelRelations, err = m.workLabelRelations(ctx, work.ID); err != nil {
		return nil, err
	}
	return &work, nil
}

func (m *MirrorClient) workArtistRelations(ctx context.Context, workID string) ([]ArtistRelation, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT lt.name, a.gid, a.name
        FROM l_artist_work l
        JOIN link lnk ON l.link = lnk.id
        JOIN link_type lt ON lnk.link_type = lt.id
        JOIN artist a ON l.entity0 = a.id
        JOIN work w ON l.entity1 = w.id
        WHERE w.gid = ?`,
		workID,
	)
	if err != nil {
		return nil, Wrap(ErrTransient, m.Name(), "work artist relations", "", err)
	}
	defer rows.Close()

	var relations []ArtistRelation
	for rows.Next() {
		var rel ArtistRelation
		if err := rows.Scan(&rel.Type, &rel.ArtistID, &rel.ArtistName); err != nil {
			return nil, Wrap(ErrStorage, m.Name(), "work artist relations", "scan row", err)
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}

func (m *MirrorClient) workLabelRelations(ctx context.Context, workID string) ([]LabelRelation, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT lt.name, lbl.gid, lbl.name,
               COALESCE(lty.id, 0), COALESCE(lty.name, '')
        FROM l_label_work l
        JOIN link lnk ON l.link = lnk.id
        JOIN link_type lt ON lnk.link_type = lt.id
        JOIN label lbl ON l.entity0 = lbl.id
        LEFT JOIN label_type lty ON lbl.type = lty.id
        JOIN work w ON l.entity1 = w.id
        WHERE w.gid = ?`,
		workID,
	)
	if err != nil {
		return nil, Wrap(ErrTransient, m.Name(), "work label relations", "", err)
	}
	defer rows.Close()

	var relations []LabelRelation
	for rows.Next() {
		var rel LabelRelation
		if err := rows.Scan(&rel.Type, &rel.LabelID, &rel.LabelName,
			&rel.LabelTypeID, &rel.LabelTypeName); err != nil {
			return nil, Wrap(ErrStorage, m.Name(), "work label relations", "scan row", err)
		}
		relations = append(relations, rel)
	}
	return relations, rows.Err()
}
