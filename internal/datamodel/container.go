package datamodel

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/vk/exptosource/internal/orderedmap"
)

// ErrInconsistentGroup is returned when a group cannot be wrapped in a
// SourceContainer.
var ErrInconsistentGroup = errors.New("inconsistent source group")

// exposureIDPaths are the observation fields that identify the exposure a
// slit was cut from.
var exposureIDPaths = []string{
	"observation.program_number",
	"observation.observation_number",
	"observation.visit_number",
	"observation.visit_group",
	"observation.sequence_id",
	"observation.activity_id",
	"observation.exposure_number",
}

// SourceContainer is a read-only view over the slits of one source.
type SourceContainer struct {
	sourceID string
	slits    []*Slit
}

// NewSourceContainer wraps a group. Every slit must be present and belong to
// the group's source.
func NewSourceContainer(g *SourceGroup) (*SourceContainer, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil group", ErrInconsistentGroup)
	}
	for i, s := range g.Exposures {
		if s == nil {
			return nil, fmt.Errorf("%w: source %q: slit %d is nil", ErrInconsistentGroup, g.SourceID, i)
		}
		if key := SourceKey(s.SourceID); g.SourceID != "" && key != g.SourceID {
			return nil, fmt.Errorf("%w: source %q: slit %d (%s) belongs to source %q", ErrInconsistentGroup, g.SourceID, i, s.Name, key)
		}
	}
	slits := make([]*Slit, len(g.Exposures))
	copy(slits, g.Exposures)
	return &SourceContainer{sourceID: g.SourceID, slits: slits}, nil
}

// SourceID returns the key of the wrapped source.
func (c *SourceContainer) SourceID() string {
	return c.sourceID
}

// Len returns the number of slits.
func (c *SourceContainer) Len() int {
	return len(c.slits)
}

// At returns the i-th slit.
func (c *SourceContainer) At(i int) *Slit {
	return c.slits[i]
}

// All iterates over the slits in group order.
func (c *SourceContainer) All() iter.Seq2[int, *Slit] {
	return func(yield func(int, *Slit) bool) {
		for i, s := range c.slits {
			if !yield(i, s) {
				return
			}
		}
	}
}

// Filter returns a container holding the slits accepted by keep, in order.
func (c *SourceContainer) Filter(keep func(*Slit) bool) *SourceContainer {
	out := &SourceContainer{sourceID: c.sourceID}
	for _, s := range c.slits {
		if keep(s) {
			out.slits = append(out.slits, s)
		}
	}
	return out
}

// ByDetector keeps slits whose meta.instrument.detector matches, ignoring case.
func (c *SourceContainer) ByDetector(detector string) *SourceContainer {
	return c.Filter(metaEquals("instrument.detector", detector))
}

// ByFilter keeps slits whose meta.instrument.filter matches, ignoring case.
func (c *SourceContainer) ByFilter(filter string) *SourceContainer {
	return c.Filter(metaEquals("instrument.filter", filter))
}

func metaEquals(path, want string) func(*Slit) bool {
	return func(s *Slit) bool {
		got, ok := s.Meta.GetString(path)
		return ok && strings.EqualFold(got, want)
	}
}

// Filenames lists meta.filename of each slit, skipping slits without one.
func (c *SourceContainer) Filenames() []string {
	var names []string
	for _, s := range c.slits {
		if name, ok := s.Meta.GetString("filename"); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

// GroupedByExposure groups the slits by the exposure they were cut from, in
// order of first appearance.
func (c *SourceContainer) GroupedByExposure() *orderedmap.Map[string, *SourceContainer] {
	groups := orderedmap.New[string](func() *SourceContainer {
		return &SourceContainer{sourceID: c.sourceID}
	})
	for _, s := range c.slits {
		// The factory is active, so Get cannot fail here.
		g, _ := groups.Get(ExposureID(s))
		g.slits = append(g.slits, s)
	}
	groups.Seal()
	return groups
}

// ExposureID builds the exposure grouping id of a slit from its observation
// metadata, e.g. "jw00042001001_01101_00001". Slits without observation
// fields fall back to meta.filename.
func ExposureID(s *Slit) string {
	parts := make([]any, len(exposureIDPaths))
	found := false
	for i, path := range exposureIDPaths {
		v, ok := s.Meta.Get(path)
		if ok && v != nil {
			found = true
			parts[i] = v
		} else {
			parts[i] = ""
		}
	}
	if !found {
		name, _ := s.Meta.GetString("filename")
		return name
	}
	return fmt.Sprintf("jw%v%v%v_%v%v%v_%v", parts...)
}
