package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir        string `toml:"data_dir"`
	LogDir         string `toml:"log_dir"`
	AudioBaseDir   string `toml:"audio_base_dir"`
	FingerprintDir string `toml:"fingerprint_dir"`
}

// Database contains configuration for the catalog database.
type Database struct {
	Path string `toml:"path"`
}

// Source contains configuration for the metadata source used during
// identification. Kind selects between the remote web service client ("api")
// and a locally mirrored database ("mirror").
type Source struct {
	Kind             string  `toml:"kind"`
	BaseURL          string  `toml:"base_url"`
	UserAgent        string  `toml:"user_agent"`
	Contact          string  `toml:"contact"`
	MirrorPath       string  `toml:"mirror_path"`
	RateLimitSeconds float64 `toml:"rate_limit_seconds"`
	Retries          int     `toml:"retries"`
	CandidateLimit   int     `toml:"candidate_limit"`
	TimeoutSeconds   int     `toml:"timeout_seconds"`
}

// Tier contains per-tier identification settings.
type Tier struct {
	Enabled             bool     `toml:"enabled"`
	ConfidenceThreshold float64  `toml:"confidence_threshold"`
	Sources             []string `toml:"sources"`
}

// AudioTier contains settings specific to the audio fingerprint tier.
type AudioTier struct {
	Tier
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	WindowFrames        int     `toml:"window_frames"`
}

// EntityResolution contains settings for the tier 2 statistical matcher.
type EntityResolution struct {
	WeightsPath string `toml:"weights_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the identification
// pipeline.
//
// Configuration sections by subsystem:
//   - Paths: data, log, audio, and reference fingerprint directories
//   - Database: catalog database location
//   - Source: metadata source selection, rate limiting, and retries
//   - Tier1/Tier2/Tier3: per-tier enablement and confidence thresholds
//   - EntityResolution: tier 2 matcher weights
//   - Logging: log format and level
type Config struct {
	Paths            Paths            `toml:"paths"`
	Database         Database         `toml:"database"`
	Source           Source           `toml:"source"`
	Tier1            Tier             `toml:"tier1"`
	Tier2            Tier             `toml:"tier2"`
	Tier3            AudioTier        `toml:"tier3"`
	EntityResolution EntityResolution `toml:"entity_resolution"`
	Logging          Logging          `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/swid/config.toml")
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// ExpandPath expands a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("swid.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
// AudioBaseDir is created on a best-effort basis so runs can proceed when
// audio storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.AudioBaseDir) != "" {
		_ = os.MkdirAll(c.Paths.AudioBaseDir, 0o755)
	}
	if strings.TrimSpace(c.Paths.FingerprintDir) != "" {
		if err := os.MkdirAll(c.Paths.FingerprintDir, 0o755); err != nil {
			return fmt.Errorf("create fingerprint directory %q: %w", c.Paths.FingerprintDir, err)
		}
	}
	return nil
}

// DatabasePath returns the catalog database path, defaulting under DataDir.
func (c *Config) DatabasePath() string {
	if strings.TrimSpace(c.Database.Path) != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Paths.DataDir, "catalog.db")
}

func (c *Config) normalize() error {
	fields := []*string{
		&c.Paths.DataDir,
		&c.Paths.LogDir,
		&c.Paths.AudioBaseDir,
		&c.Paths.FingerprintDir,
		&c.Database.Path,
		&c.Source.MirrorPath,
		&c.EntityResolution.WeightsPath,
	}
	for _, field := range fields {
		if strings.TrimSpace(*field) == "" {
			*field = strings.TrimSpace(*field)
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
