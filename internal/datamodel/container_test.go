package datamodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/exptosource/internal/metatree"
)

func slit(name string, id any, detector, filter, filename string) *Slit {
	return &Slit{
		Name:     name,
		SourceID: id,
		Meta: metatree.Tree{
			"filename": filename,
			"instrument": map[string]any{
				"detector": detector,
				"filter":   filter,
			},
		},
	}
}

func group(id string, slits ...*Slit) *SourceGroup {
	g := NewSourceGroup()
	g.SourceID = id
	for _, s := range slits {
		g.Append(s)
	}
	return g
}

func TestSourceKey(t *testing.T) {
	assert.Equal(t, "3", SourceKey(3))
	assert.Equal(t, "3", SourceKey(int64(3)))
	assert.Equal(t, "3", SourceKey("3"))
	assert.Equal(t, "2.5", SourceKey(2.5))
	assert.Equal(t, "<nil>", SourceKey(nil))
}

func TestSourceGroup_AppendAndLast(t *testing.T) {
	g := NewSourceGroup()
	assert.Nil(t, g.Last())

	a := slit("a", 1, "NRS1", "F290LP", "a.hcl")
	b := slit("b", 1, "NRS2", "F290LP", "b.hcl")
	g.Append(a)
	g.Append(b)

	assert.Equal(t, 2, g.Len())
	assert.Same(t, b, g.Last())
	assert.Equal(t, "a.hcl", g.Meta(0)["filename"])
}

func TestExposure_Filename(t *testing.T) {
	e := &Exposure{Name: "exp1"}
	assert.Equal(t, "exp1", e.Filename())
	e.Meta = metatree.Tree{"filename": "exp1_cal.hcl"}
	assert.Equal(t, "exp1_cal.hcl", e.Filename())
}

func TestNewSourceContainer_Validates(t *testing.T) {
	_, err := NewSourceContainer(nil)
	assert.ErrorIs(t, err, ErrInconsistentGroup)

	_, err = NewSourceContainer(group("5", slit("a", 5, "", "", ""), nil))
	assert.ErrorIs(t, err, ErrInconsistentGroup)
	assert.ErrorContains(t, err, "slit 1 is nil")

	_, err = NewSourceContainer(group("5", slit("a", 5, "", "", ""), slit("b", 7, "", "", "")))
	assert.ErrorIs(t, err, ErrInconsistentGroup)
	assert.ErrorContains(t, err, `belongs to source "7"`)

	c, err := NewSourceContainer(group("3", slit("a", 3, "", "", ""), slit("b", "3", "", "", "")))
	require.NoError(t, err)
	assert.Equal(t, "3", c.SourceID())
	assert.Equal(t, 2, c.Len())
}

func TestSourceContainer_Queries(t *testing.T) {
	g := group("9",
		slit("s1", 9, "NRS1", "F290LP", "one.hcl"),
		slit("s2", 9, "NRS2", "F290LP", "two.hcl"),
		slit("s3", 9, "nrs1", "F170LP", ""),
	)
	c, err := NewSourceContainer(g)
	require.NoError(t, err)

	var names []string
	for i, s := range c.All() {
		assert.Same(t, c.At(i), s)
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"s1", "s2", "s3"}, names)

	nrs1 := c.ByDetector("NRS1")
	require.Equal(t, 2, nrs1.Len())
	assert.Equal(t, "s1", nrs1.At(0).Name)
	assert.Equal(t, "s3", nrs1.At(1).Name)
	assert.Equal(t, "9", nrs1.SourceID())

	assert.Equal(t, 2, c.ByFilter("f290lp").Len())
	assert.Equal(t, 0, c.ByFilter("CLEAR").Len())
	assert.Equal(t, []string{"one.hcl", "two.hcl"}, c.Filenames())

	// Appending to the group afterwards does not change the container.
	g.Append(slit("s4", 9, "NRS1", "F290LP", "four.hcl"))
	assert.Equal(t, 3, c.Len())
}

func TestSourceContainer_GroupedByExposure(t *testing.T) {
	obs := func(exposure string) map[string]any {
		return map[string]any{
			"program_number":     "00042",
			"observation_number": "001",
			"visit_number":       "001",
			"visit_group":        "01",
			"sequence_id":        "1",
			"activity_id":        "01",
			"exposure_number":    exposure,
		}
	}
	a := slit("a", 1, "NRS1", "F290LP", "a.hcl")
	a.Meta["observation"] = obs("00001")
	b := slit("b", 1, "NRS2", "F290LP", "b.hcl")
	b.Meta["observation"] = obs("00002")
	c := slit("c", 1, "NRS2", "F290LP", "c.hcl")
	c.Meta["observation"] = obs("00001")
	d := slit("d", 1, "NRS2", "F290LP", "d.hcl")

	container, err := NewSourceContainer(group("1", a, b, c, d))
	require.NoError(t, err)

	grouped := container.GroupedByExposure()
	assert.True(t, grouped.Sealed())
	assert.Equal(t, []string{
		"jw00042001001_01101_00001",
		"jw00042001001_01101_00002",
		"d.hcl",
	}, grouped.Keys())

	first, err := grouped.Get("jw00042001001_01101_00001")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.hcl", "c.hcl"}, first.Filenames())
}
