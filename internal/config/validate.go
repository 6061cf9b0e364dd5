package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateTiers(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateSource() error {
	switch c.Source.Kind {
	case "api":
		if strings.TrimSpace(c.Source.BaseURL) == "" {
			return errors.New("source.base_url must be set when source.kind is \"api\"")
		}
		if strings.TrimSpace(c.Source.UserAgent) == "" {
			return errors.New("source.user_agent must be set when source.kind is \"api\"")
		}
	case "mirror":
		if strings.TrimSpace(c.Source.MirrorPath) == "" {
			return errors.New("source.mirror_path must be set when source.kind is \"mirror\"")
		}
	default:
		return fmt.Errorf("source.kind must be \"api\" or \"mirror\", got %q", c.Source.Kind)
	}
	if c.Source.RateLimitSeconds <= 0 {
		return errors.New("source.rate_limit_seconds must be positive")
	}
	if c.Source.Retries < 0 {
		return errors.New("source.retries must be >= 0")
	}
	if c.Source.CandidateLimit < 1 {
		return errors.New("source.candidate_limit must be >= 1")
	}
	if c.Source.TimeoutSeconds <= 0 {
		return errors.New("source.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTiers() error {
	if err := validateThreshold("tier1.confidence_threshold", c.Tier1.ConfidenceThreshold); err != nil {
		return err
	}
	if err := validateThreshold("tier2.confidence_threshold", c.Tier2.ConfidenceThreshold); err != nil {
		return err
	}
	if err := validateThreshold("tier3.confidence_threshold", c.Tier3.ConfidenceThreshold); err != nil {
		return err
	}
	if err := validateThreshold("tier3.similarity_threshold", c.Tier3.SimilarityThreshold); err != nil {
		return err
	}
	if c.Tier3.WindowFrames < 1 {
		return errors.New("tier3.window_frames must be >= 1")
	}
	if c.Tier3.Enabled && strings.TrimSpace(c.Paths.FingerprintDir) == "" {
		return errors.New("paths.fingerprint_dir must be set when tier3.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

func validateThreshold(key string, value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%s must be between 0 and 1", key)
	}
	return nil
}
