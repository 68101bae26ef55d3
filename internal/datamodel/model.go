package datamodel

import (
	"fmt"

	"github.com/vk/exptosource/internal/metatree"
)

// Slit is one spectral cutout of one source within one exposure.
type Slit struct {
	Name       string
	SourceID   any // Not guaranteed unique across exposures; grouped by SourceKey.
	SourceName string
	Meta       metatree.Tree
}

// Exposure is one observational frame: its slits, in order, plus the
// metadata shared by all of them.
type Exposure struct {
	Name  string
	Slits []*Slit
	Meta  metatree.Tree
}

// Filename returns meta.filename, falling back to the exposure name.
func (e *Exposure) Filename() string {
	if name, ok := e.Meta.GetString("filename"); ok && name != "" {
		return name
	}
	return e.Name
}

// SourceGroup collects the slits of a single source across exposures.
// Exposures holds slits; each slit carries its own merged metadata tree.
type SourceGroup struct {
	SourceID  string
	Exposures []*Slit
}

// NewSourceGroup returns an empty group.
func NewSourceGroup() *SourceGroup {
	return &SourceGroup{}
}

// Append adds a slit at the end of the group.
func (g *SourceGroup) Append(s *Slit) {
	g.Exposures = append(g.Exposures, s)
}

// Len returns the number of slits in the group.
func (g *SourceGroup) Len() int {
	return len(g.Exposures)
}

// Last returns the most recently appended slit, or nil.
func (g *SourceGroup) Last() *Slit {
	if len(g.Exposures) == 0 {
		return nil
	}
	return g.Exposures[len(g.Exposures)-1]
}

// Meta returns the metadata tree of the i-th slit.
func (g *SourceGroup) Meta(i int) metatree.Tree {
	return g.Exposures[i].Meta
}

// SourceKey is the string projection every grouping uses. Values that print
// identically, such as the integer 3 and the string "3", share a key.
func SourceKey(id any) string {
	if s, ok := id.(string); ok {
		return s
	}
	return fmt.Sprint(id)
}
