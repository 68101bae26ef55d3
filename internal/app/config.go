package app

import (
	"errors"
	"fmt"

	"github.com/vk/exptosource/internal/metatree"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Paths       []string // exposure files or directories
	OutputDir   string
	MergePolicy string // "incoming" or "existing"
	List        bool   // print a summary instead of writing files

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("at least one exposure path is required")
	}
	if _, err := metatree.ParseMergePolicy(cfg.MergePolicy); err != nil {
		return nil, err
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	for i, p := range cfg.Paths {
		if p == "" {
			return nil, fmt.Errorf("exposure path %d is empty", i)
		}
	}

	return &cfg, nil
}
