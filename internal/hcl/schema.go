package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot decodes the top-level blocks of an exposure file. Unknown blocks
// are left in Remain so other tools can annotate the same files.
type fileRoot struct {
	Exposures []*exposureBlock `hcl:"exposure,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

// exposureBlock is the HCL schema of an `exposure` block.
type exposureBlock struct {
	Name  string       `hcl:"name,label"`
	Meta  cty.Value    `hcl:"meta,optional"`
	Slits []*slitBlock `hcl:"slit,block"`
}

// slitBlock is the HCL schema of a `slit` block.
type slitBlock struct {
	Name       string    `hcl:"name,label"`
	SourceID   cty.Value `hcl:"source_id"`
	SourceName string    `hcl:"source_name,optional"`
	Meta       cty.Value `hcl:"meta,optional"`
}
