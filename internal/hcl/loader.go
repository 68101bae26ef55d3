package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/exptosource/internal/ctxlog"
	"github.com/vk/exptosource/internal/datamodel"
	"github.com/vk/exptosource/internal/fsutil"
	"github.com/vk/exptosource/internal/metatree"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL exposure loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and returns the exposures in file
// order, then block order.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*datamodel.Exposure, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.ExpandPaths(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var exposures []*datamodel.Exposure
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, block := range root.Exposures {
			exposure, err := l.translateExposure(ctx, block)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			exposures = append(exposures, exposure)
		}
		logger.Debug("Loaded HCL file.", "file", file, "exposures", len(root.Exposures))
	}

	logger.Debug("HCL loading complete.", "exposures", len(exposures))
	return exposures, nil
}

// translateExposure converts the HCL exposure schema into the data model.
func (l *Loader) translateExposure(ctx context.Context, b *exposureBlock) (*datamodel.Exposure, error) {
	logger := ctxlog.FromContext(ctx).With("exposure", b.Name)

	meta, err := metatree.FromCty(b.Meta)
	if err != nil {
		return nil, fmt.Errorf("exposure %q: meta: %w", b.Name, err)
	}

	exposure := &datamodel.Exposure{Name: b.Name, Meta: meta}
	for _, s := range b.Slits {
		slit, err := translateSlit(s)
		if err != nil {
			return nil, fmt.Errorf("exposure %q: %w", b.Name, err)
		}
		exposure.Slits = append(exposure.Slits, slit)
	}
	logger.Debug("Translated exposure.", "slits", len(exposure.Slits))
	return exposure, nil
}

func translateSlit(b *slitBlock) (*datamodel.Slit, error) {
	id, err := sourceIDFromCty(b.SourceID)
	if err != nil {
		return nil, fmt.Errorf("slit %q: source_id: %w", b.Name, err)
	}
	meta, err := metatree.FromCty(b.Meta)
	if err != nil {
		return nil, fmt.Errorf("slit %q: meta: %w", b.Name, err)
	}
	return &datamodel.Slit{
		Name:       b.Name,
		SourceID:   id,
		SourceName: b.SourceName,
		Meta:       meta,
	}, nil
}

// sourceIDFromCty keeps the id in its native form: int64, float64, string
// or bool. Grouping stringifies it later.
func sourceIDFromCty(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, fmt.Errorf("must not be null")
	}
	ty := v.Type()
	if ty != cty.String && ty != cty.Number && ty != cty.Bool {
		return nil, fmt.Errorf("must be a string, number or bool, got %s", ty.FriendlyName())
	}
	return metatree.ValueFromCty(v)
}

// diagnosticsError returns nil when diags hold no errors.
func diagnosticsError(diags hcl.Diagnostics) error {
	if diags.HasErrors() {
		return diags
	}
	return nil
}
