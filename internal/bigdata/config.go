package bigdata

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// suiteFile is the optional HCL file that overrides suite locations, e.g.
//
//	inputs_root  = "jwst-pipeline"
//	results_root = "/tmp/results"
//	env          = "dev"
type suiteFile struct {
	InputsRoot  *string  `hcl:"inputs_root,optional"`
	ResultsRoot *string  `hcl:"results_root,optional"`
	Env         *string  `hcl:"env,optional"`
	Rtol        *float64 `hcl:"rtol,optional"`
	Atol        *float64 `hcl:"atol,optional"`
	Remain      hcl.Body `hcl:",remain"`
}

// LoadSuiteConfig applies the settings in an HCL suite file to s. Attributes
// left out of the file keep their current values.
func (s *Suite) LoadSuiteConfig(path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse suite config %s: %w", path, diags)
	}

	var cfg suiteFile
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return fmt.Errorf("failed to decode suite config %s: %w", path, diags)
	}

	if cfg.InputsRoot != nil {
		s.InputsRoot = *cfg.InputsRoot
	}
	if cfg.ResultsRoot != nil {
		s.ResultsRoot = *cfg.ResultsRoot
	}
	if cfg.Env != nil {
		s.Env = *cfg.Env
	}
	if cfg.Rtol != nil {
		s.Rtol = *cfg.Rtol
	}
	if cfg.Atol != nil {
		s.Atol = *cfg.Atol
	}
	return nil
}
