package app

import (
	"io"
	"log/slog"

	"github.com/vk/exptosource/internal/config"
	"github.com/vk/exptosource/internal/metatree"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	policy metatree.MergePolicy
	loader config.Loader
	writer config.Writer
}

// NewApp is the constructor for the main application. The config is expected
// to come from NewConfig; an unparsable merge policy falls back to the default.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, writer config.Writer) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	policy, err := metatree.ParseMergePolicy(cfg.MergePolicy)
	if err != nil {
		logger.Warn("Unknown merge policy, using default.", "merge_policy", cfg.MergePolicy, "default", policy)
	}
	logger.Debug("App configured.", "paths", cfg.Paths, "output_dir", cfg.OutputDir, "merge_policy", policy)

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		policy: policy,
		loader: loader,
		writer: writer,
	}
}
