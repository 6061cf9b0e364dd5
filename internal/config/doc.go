// Package config loads and validates TOML configuration for the credit
// identification pipeline: storage paths, metadata source selection, per-tier
// thresholds, rate limiting, and logging output.
package config
