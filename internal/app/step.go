package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/exptosource/internal/bigdata"
	"github.com/vk/exptosource/internal/config"
	"github.com/vk/exptosource/internal/exptosource"
	"github.com/vk/exptosource/internal/hcl"
	"github.com/vk/exptosource/internal/metatree"
)

// regroupPars are the parameters accepted by RegroupStep.
type regroupPars struct {
	OutputDir   string `cty:"output_dir"`
	MergePolicy string `cty:"merge_policy"`
}

// RegroupStep adapts the regrouping pipeline to a regression step. The input
// is an exposure file, or a JSON association whose members sit next to it.
// Recognised parameters: "output_dir" (default: the input's directory) and
// "merge_policy".
func RegroupStep(loader config.Loader, writer config.Writer) bigdata.StepFunc {
	converter := hcl.NewConverter()
	return func(ctx context.Context, input string, pars map[string]any) ([]string, error) {
		p := regroupPars{OutputDir: filepath.Dir(input), MergePolicy: metatree.PreferIncoming.String()}
		if err := converter.Decode(ctx, metatree.Tree(pars), &p); err != nil {
			return nil, fmt.Errorf("invalid step parameters: %w", err)
		}
		policy, err := metatree.ParseMergePolicy(p.MergePolicy)
		if err != nil {
			return nil, err
		}

		paths := []string{input}
		if strings.EqualFold(filepath.Ext(input), ".json") {
			members, err := bigdata.RawFromAsn(input)
			if err != nil {
				return nil, err
			}
			paths = paths[:0]
			for _, m := range members {
				paths = append(paths, filepath.Join(filepath.Dir(input), m))
			}
		}

		exposures, err := loader.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		containers, err := exptosource.MultislitToContainer(ctx, exposures, exptosource.WithMergePolicy(policy))
		if err != nil {
			return nil, err
		}
		return writer.WriteSources(ctx, p.OutputDir, containers)
	}
}
