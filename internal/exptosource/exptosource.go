// Package exptosource reorganises exposure-based multi-slit data into
// source-based groups: every slit of every exposure is collected under the
// string form of its source id, carrying the metadata of the exposure it
// came from.
package exptosource

import (
	"context"
	"fmt"

	"github.com/vk/exptosource/internal/ctxlog"
	"github.com/vk/exptosource/internal/datamodel"
	"github.com/vk/exptosource/internal/metatree"
	"github.com/vk/exptosource/internal/orderedmap"
)

// Sources maps source keys to their groups in order of first encounter.
type Sources = orderedmap.Map[string, *datamodel.SourceGroup]

// Containers maps source keys to containers in order of first encounter.
type Containers = orderedmap.Map[string, *datamodel.SourceContainer]

type options struct {
	policy metatree.MergePolicy
}

// Option configures a regrouping call.
type Option func(*options)

// WithMergePolicy sets how exposure metadata merges into slit metadata on
// leaf conflicts. The default is metatree.PreferIncoming.
func WithMergePolicy(p metatree.MergePolicy) Option {
	return func(o *options) { o.policy = p }
}

// ExpToSource groups the slits of all exposures by source.
//
// Exposures are scanned in order, and slits in order within each exposure.
// Each slit is appended to the group of its source key and the exposure
// metadata is merged into the slit's own tree in place. The returned map is
// sealed: looking up a source that was never seen fails.
func ExpToSource(ctx context.Context, exposures []*datamodel.Exposure, opts ...Option) *Sources {
	logger := ctxlog.FromContext(ctx)
	o := options{policy: metatree.PreferIncoming}
	for _, opt := range opts {
		opt(&o)
	}

	result := orderedmap.New[string](datamodel.NewSourceGroup)
	for _, exposure := range exposures {
		if exposure == nil {
			logger.Warn("Skipping nil exposure.")
			continue
		}
		logger.Info("Reorganizing data from exposure.", "exposure", exposure.Filename(), "slits", len(exposure.Slits))
		for _, slit := range exposure.Slits {
			if slit == nil {
				logger.Warn("Skipping nil slit.", "exposure", exposure.Filename())
				continue
			}
			key := datamodel.SourceKey(slit.SourceID)
			logger.Debug("Copying slit.", "slit", slit.Name, "source_id", key)

			// The factory is active until Seal, so Get cannot fail here.
			group, _ := result.Get(key)
			group.SourceID = key
			group.Append(slit)
			slit.Meta = metatree.Merge(group.Last().Meta, exposure.Meta, o.policy)
		}
	}

	result.Seal()
	logger.Debug("Regrouping complete.", "sources", result.Len())
	return result
}

// MultislitToContainer groups the slits of all exposures by source and wraps
// every group in a SourceContainer.
func MultislitToContainer(ctx context.Context, exposures []*datamodel.Exposure, opts ...Option) (*Containers, error) {
	groups := ExpToSource(ctx, exposures, opts...)
	return orderedmap.MapValues(groups, func(key string, g *datamodel.SourceGroup) (*datamodel.SourceContainer, error) {
		c, err := datamodel.NewSourceContainer(g)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", key, err)
		}
		return c, nil
	})
}

// CountSlits returns the total number of slits across exposures.
func CountSlits(exposures []*datamodel.Exposure) int {
	n := 0
	for _, e := range exposures {
		if e != nil {
			n += len(e.Slits)
		}
	}
	return n
}
