package app

import (
	"context"
	"fmt"

	"github.com/vk/exptosource/internal/ctxlog"
	"github.com/vk/exptosource/internal/exptosource"
)

// Run loads the configured exposures, regroups their slits by source, and
// either writes one file per source or prints a summary.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	exposures, err := a.loader.Load(ctx, a.config.Paths...)
	if err != nil {
		return fmt.Errorf("failed to load exposures: %w", err)
	}
	a.logger.Info("Exposures loaded.", "exposures", len(exposures), "slits", exptosource.CountSlits(exposures))

	containers, err := exptosource.MultislitToContainer(ctx, exposures, exptosource.WithMergePolicy(a.policy))
	if err != nil {
		return fmt.Errorf("failed to regroup exposures: %w", err)
	}

	if a.config.List {
		return a.printSummary(containers)
	}

	written, err := a.writer.WriteSources(ctx, a.config.OutputDir, containers)
	if err != nil {
		return fmt.Errorf("failed to write sources: %w", err)
	}
	a.logger.Info("🏁 Sources written.", "sources", containers.Len(), "files", len(written), "output_dir", a.config.OutputDir)

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) printSummary(containers *exptosource.Containers) error {
	for key, c := range containers.All() {
		if _, err := fmt.Fprintf(a.outW, "source %s: %d slit(s)\n", key, c.Len()); err != nil {
			return err
		}
		for _, s := range c.All() {
			filename, _ := s.Meta.GetString("filename")
			if _, err := fmt.Fprintf(a.outW, "  %s %s\n", s.Name, filename); err != nil {
				return err
			}
		}
	}
	return nil
}
