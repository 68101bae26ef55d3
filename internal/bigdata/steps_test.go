package bigdata

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/exptosource/internal/fsutil"
	exphcl "github.com/vk/exptosource/internal/hcl"
)

func TestSuite_RunStep(t *testing.T) {
	ctx := context.Background()
	s, root := newLocalSuite(t)
	s.Decode = exphcl.DecodeTreeFile
	writeFixture(t, root, []string{"jwst-pipeline", "dev", "nirspec", "test_copy", "input.hcl"}, truthSource)
	writeFixture(t, root, []string{"jwst-pipeline", "dev", "nirspec", "test_copy", "truth", "copied.hcl"}, truthSource)

	outDir := t.TempDir()
	var gotPars map[string]any
	copyStep := func(ctx context.Context, input string, pars map[string]any) ([]string, error) {
		gotPars = pars
		out := filepath.Join(outDir, "copied.hcl")
		return []string{out}, fsutil.CopyFile(out, input)
	}

	t.Run("matching product", func(t *testing.T) {
		report, err := s.RunStep(ctx, StepCase{
			ID:          "copy",
			Input:       "input.hcl",
			TestDir:     "test_copy",
			Step:        copyStep,
			StepPars:    map[string]any{"save_results": true},
			OutputTruth: []string{"copied.hcl"},
		})
		require.NoError(t, err)
		require.NotNil(t, report)
		assert.Empty(t, report.Failed())
		assert.Equal(t, map[string]any{"save_results": true}, gotPars)
	})

	t.Run("no test dir is a no-op", func(t *testing.T) {
		report, err := s.RunStep(ctx, StepCase{ID: "template", Step: copyStep})
		require.NoError(t, err)
		assert.Nil(t, report)
	})

	t.Run("product count must match truth", func(t *testing.T) {
		_, err := s.RunStep(ctx, StepCase{
			ID:          "copy",
			Input:       "input.hcl",
			TestDir:     "test_copy",
			Step:        copyStep,
			OutputTruth: []string{"copied.hcl", "extra.hcl"},
		})
		assert.ErrorContains(t, err, "got 1 product(s), have 2 truth file(s)")
	})

	t.Run("step failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := s.RunStep(ctx, StepCase{
			ID:      "broken",
			Input:   "input.hcl",
			TestDir: "test_copy",
			Step: func(context.Context, string, map[string]any) ([]string, error) {
				return nil, boom
			},
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("missing step", func(t *testing.T) {
		_, err := s.RunStep(ctx, StepCase{ID: "empty", TestDir: "test_copy"})
		assert.ErrorContains(t, err, "has no step")
	})
}
