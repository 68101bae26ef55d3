package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/exptosource/internal/ctxlog"
	"github.com/vk/exptosource/internal/datamodel"
	"github.com/vk/exptosource/internal/metatree"
	"github.com/vk/exptosource/internal/orderedmap"
	"github.com/zclconf/go-cty/cty"
)

// Writer is the HCL-specific implementation of the config.Writer interface.
type Writer struct{}

// NewWriter creates a new HCL source writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteSources writes one source_<id>.hcl file per source into dir. Keys
// whose file names collide after sanitising are rejected before anything is
// written.
func (w *Writer) WriteSources(ctx context.Context, dir string, sources *orderedmap.Map[string, *datamodel.SourceContainer]) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	owners := make(map[string]string, sources.Len())
	for key := range sources.All() {
		name := SourceFilename(key)
		if other, ok := owners[name]; ok {
			return nil, fmt.Errorf("sources %q and %q both map to %s", other, key, name)
		}
		owners[name] = key
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	var written []string
	for key, container := range sources.All() {
		content, err := EncodeSource(key, container)
		if err != nil {
			return written, fmt.Errorf("source %s: %w", key, err)
		}
		path := filepath.Join(dir, SourceFilename(key))
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Debug("Wrote source file.", "source_id", key, "path", path, "slits", container.Len())
		written = append(written, path)
	}
	logger.Info("Source files written.", "dir", dir, "count", len(written))
	return written, nil
}

// SourceFilename returns the file name used for a source key. Characters
// outside [A-Za-z0-9._-] are replaced by underscores.
func SourceFilename(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return "source_" + safe + ".hcl"
}

// EncodeSource renders one source as HCL:
//
//	source "5" {
//	  slit "S200A1" {
//	    source_id = 5
//	    meta      = { ... }
//	  }
//	}
func EncodeSource(key string, container *datamodel.SourceContainer) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	source := f.Body().AppendNewBlock("source", []string{key}).Body()

	for _, s := range container.All() {
		id, err := metatree.ValueToCty(s.SourceID)
		if err != nil {
			return nil, fmt.Errorf("slit %q: source_id: %w", s.Name, err)
		}
		meta, err := metatree.ToCty(s.Meta)
		if err != nil {
			return nil, fmt.Errorf("slit %q: meta: %w", s.Name, err)
		}

		body := source.AppendNewBlock("slit", []string{s.Name}).Body()
		body.SetAttributeValue("source_id", id)
		if s.SourceName != "" {
			body.SetAttributeValue("source_name", cty.StringVal(s.SourceName))
		}
		body.SetAttributeValue("meta", meta)
	}
	return f.Bytes(), nil
}
