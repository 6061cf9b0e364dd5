package main

import (
	"log/slog"
	"strings"
	"sync"

	"songwriterid/internal/catalog"
	"songwriterid/internal/config"
	"songwriterid/internal/logging"
	"songwriterid/internal/metadata"
	"songwriterid/internal/similarity"
)

// similarityCacheSize bounds the per-process score cache shared by all
// lookups in one command invocation.
const similarityCacheSize = 4096

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger() (*slog.Logger, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return logger, cfg, nil
}

// withStore opens the catalog store for the duration of fn.
func (c *commandContext) withStore(fn func(cfg *config.Config, store *catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := catalog.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func newSource(cfg *config.Config, logger *slog.Logger) (metadata.Source, error) {
	scorer := similarity.NewScorer(similarity.NewBoundedCache(similarityCacheSize))
	return metadata.NewSource(cfg, scorer, logger)
}
