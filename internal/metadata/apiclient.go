package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"songwriterid/internal/config"
	"songwriterid/internal/logging"
	"songwriterid/internal/similarity"
)

// APIClient queries the MusicBrainz web service. Requests are rate limited
// per MusicBrainz guidelines and transient failures are retried with
// exponential backoff.
type APIClient struct {
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	client    *http.Client
	retries   int
	limit     int
	scorer    *similarity.Scorer
	logger    *slog.Logger
}

// NewAPIClient builds a web service client from configuration.
func NewAPIClient(cfg *config.Config, scorer *similarity.Scorer, logger *slog.Logger) *APIClient {
	interval := time.Duration(cfg.Source.RateLimitSeconds * float64(time.Second))
	if interval <= 0 {
		interval = time.Second
	}
	userAgent := cfg.Source.UserAgent
	if cfg.Source.Contact != "" {
		userAgent = fmt.Sprintf("%s (%s)", cfg.Source.UserAgent, cfg.Source.Contact)
	}
	return &APIClient{
		baseURL:   strings.TrimRight(cfg.Source.BaseURL, "/"),
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		client:    &http.Client{Timeout: time.Duration(cfg.Source.TimeoutSeconds) * time.Second},
		retries:   cfg.Source.Retries,
		limit:     cfg.Source.CandidateLimit,
		scorer:    scorer,
		logger:    logging.NewComponentLogger(logger, "metadata.api"),
	}
}

func (c *APIClient) Name() string { return "musicbrainz" }

// SearchRecordings performs a Lucene query against the recording index and
// scores the results against the query terms.
func (c *APIClient) SearchRecordings(ctx context.Context, query TrackQuery) ([]Candidate, error) {
	if strings.TrimSpace(query.Title) == "" {
		return nil, Wrap(ErrValidation, c.Name(), "search recordings", "title is required", nil)
	}
	lucene := fmt.Sprintf("recording:%q AND artist:%q", query.Title, query.Artist)
	endpoint := fmt.Sprintf("%s/recording?query=%s&limit=%d&fmt=json",
		c.baseURL, url.QueryEscape(lucene), c.limit)

	body, err := c.get(ctx, "search recordings", endpoint)
	if err != nil {
		return nil, err
	}

	var result recordingSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, Wrap(ErrPermanent, c.Name(), "search recordings", "decode response", err)
	}

	recordings := make([]Recording, 0, len(result.Recordings))
	for _, wire := range result.Recordings {
		recordings = append(recordings, wire.toRecording())
	}
	c.logger.Debug("recording search complete",
		logging.String(logging.FieldTitle, query.Title),
		logging.String(logging.FieldArtist, query.Artist),
		logging.Int("results", len(recordings)))
	return scoreCandidates(c.scorer, query, recordings), nil
}

// Recording fetches a recording with work relations, artist relations, and
// releases.
func (c *APIClient) Recording(ctx context.Context, id string) (*Recording, error) {
	endpoint := fmt.Sprintf("%s/recording/%s?inc=work-rels+artist-rels+artist-credits+releases&fmt=json",
		c.baseURL, url.PathEscape(id))
	body, err := c.get(ctx, "get recording", endpoint)
	if err != nil {
		return nil, err
	}
	var wire wireRecording
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, Wrap(ErrPermanent, c.Name(), "get recording", "decode response", err)
	}
	rec := wire.toRecording()
	return &rec, nil
}

// Work fetches a work with artist and label relations.
func (c *APIClient) Work(ctx context.Context, id string) (*Work, error) {
	endpoint := fmt.Sprintf("%s/work/%s?inc=artist-rels+label-rels&fmt=json",
		c.baseURL, url.PathEscape(id))
	body, err := c.get(ctx, "get work", endpoint)
	if err != nil {
		return nil, err
	}
	var wire wireWork
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, Wrap(ErrPermanent, c.Name(), "get work", "decode response", err)
	}
	work := wire.toWork()
	return &work, nil
}

// Ping issues a minimal search to confirm the service answers.
func (c *APIClient) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/recording?query=recording:ping&limit=1&fmt=json", c.baseURL)
	_, err := c.get(ctx, "ping", endpoint)
	return err
}

// get performs a rate-limited GET with retries on transient failures. The
// backoff starts at the rate limit interval and doubles per attempt.
func (c *APIClient) get(ctx context.Context, operation, endpoint string) ([]byte, error) {
	attempts := c.retries + 1
	backoff := time.Duration(float64(time.Second) / float64(c.limiter.Limit()))
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying request",
				logging.String("operation", operation),
				logging.Int("attempt", attempt+1),
				logging.Duration("backoff", backoff),
				logging.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, Wrap(ErrTransient, c.Name(), operation, "context cancelled", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, err := c.doOnce(ctx, operation, endpoint)
		if err == nil {
			return body, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *APIClient) doOnce(ctx context.Context, operation, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, Wrap(ErrTransient, c.Name(), operation, "rate limiter", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, Wrap(ErrPermanent, c.Name(), operation, "build request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, Wrap(ErrTransient, c.Name(), operation, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, Wrap(ErrTransient, c.Name(), operation, fmt.Sprintf("status %d", resp.StatusCode), nil)
	default:
		return nil, Wrap(ErrPermanent, c.Name(), operation, fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Wrap(ErrTransient, c.Name(), operation, "read response", err)
	}
	return body, nil
}
