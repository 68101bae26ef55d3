package config

import (
	"context"

	"github.com/vk/exptosource/internal/datamodel"
	"github.com/vk/exptosource/internal/orderedmap"
)

// Loader is the interface for a format-specific exposure loader.
type Loader interface {
	// Load reads every exposure found under the given paths, in path order
	// and then in file order.
	Load(ctx context.Context, paths ...string) ([]*datamodel.Exposure, error)
}

// Writer is the interface for a format-specific source writer.
type Writer interface {
	// WriteSources writes one file per source into dir and returns the
	// written paths in source order.
	WriteSources(ctx context.Context, dir string, sources *orderedmap.Map[string, *datamodel.SourceContainer]) ([]string, error)
}
