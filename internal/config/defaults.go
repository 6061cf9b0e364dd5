package config

const (
	defaultDataDir          = "~/.local/share/swid"
	defaultLogDir           = "~/.local/share/swid/logs"
	defaultFingerprintDir   = "~/.local/share/swid/fingerprints"
	defaultSourceKind       = "api"
	defaultSourceBaseURL    = "https://musicbrainz.org/ws/2"
	defaultSourceUserAgent  = "swid/1.0"
	defaultSourceContact    = "ops@example.com"
	defaultRateLimitSeconds = 1.0
	defaultSourceRetries    = 3
	defaultCandidateLimit   = 10
	defaultSourceTimeout    = 30
	defaultTierThreshold    = 0.7
	defaultTier3Similarity  = 0.85
	defaultTier3Window      = 50
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:        defaultDataDir,
			LogDir:         defaultLogDir,
			FingerprintDir: defaultFingerprintDir,
		},
		Source: Source{
			Kind:             defaultSourceKind,
			BaseURL:          defaultSourceBaseURL,
			UserAgent:        defaultSourceUserAgent,
			Contact:          defaultSourceContact,
			RateLimitSeconds: defaultRateLimitSeconds,
			Retries:          defaultSourceRetries,
			CandidateLimit:   defaultCandidateLimit,
			TimeoutSeconds:   defaultSourceTimeout,
		},
		Tier1: Tier{
			Enabled:             true,
			ConfidenceThreshold: defaultTierThreshold,
			Sources:             []string{"musicbrainz", "musicbrainz_db"},
		},
		Tier2: Tier{
			Enabled:             true,
			ConfidenceThreshold: defaultTierThreshold,
			Sources:             []string{"musicbrainz", "musicbrainz_db"},
		},
		Tier3: AudioTier{
			Tier: Tier{
				Enabled:             true,
				ConfidenceThreshold: defaultTierThreshold,
			},
			SimilarityThreshold: defaultTier3Similarity,
			WindowFrames:        defaultTier3Window,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
