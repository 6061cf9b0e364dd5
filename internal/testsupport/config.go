// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"songwriterid/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.AudioBaseDir = filepath.Join(base, "audio")
	cfgVal.Paths.FingerprintDir = filepath.Join(base, "fingerprints")
	cfgVal.Source.RateLimitSeconds = 0.001
	cfgVal.Source.TimeoutSeconds = 5
	// Any backend may serve any tier in tests.
	cfgVal.Tier1.Sources = nil
	cfgVal.Tier2.Sources = nil

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSourceKind sets the metadata source backend on the test config.
func WithSourceKind(kind string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Source.Kind = kind
	}
}

// WithTierDisabled turns off the given tier (1-3) on the test config.
func WithTierDisabled(tier int) ConfigOption {
	return func(b *configBuilder) {
		switch tier {
		case 1:
			b.cfg.Tier1.Enabled = false
		case 2:
			b.cfg.Tier2.Enabled = false
		case 3:
			b.cfg.Tier3.Enabled = false
		default:
			b.t.Fatalf("unknown tier %d", tier)
		}
	}
}

// WithConfidenceThreshold sets all tier thresholds at once.
func WithConfidenceThreshold(threshold float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tier1.ConfidenceThreshold = threshold
		b.cfg.Tier2.ConfidenceThreshold = threshold
		b.cfg.Tier3.ConfidenceThreshold = threshold
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
