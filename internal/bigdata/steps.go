package bigdata

import (
	"context"
	"fmt"

	"github.com/vk/exptosource/internal/ctxlog"
)

// StepFunc runs one pipeline step on a local input and returns the paths of
// the products it wrote.
type StepFunc func(ctx context.Context, input string, pars map[string]any) ([]string, error)

// StepCase describes a single-step regression test. Truth files live under
// [TestDir, "truth"] below the suite's input location.
type StepCase struct {
	ID            string
	Input         string
	TestDir       string
	Step          StepFunc
	StepPars      map[string]any
	OutputTruth   []string
	OutputOptions *CompareOptions
}

// RunStep fetches the case input, runs its step, and compares each product
// with the matching truth file. A case without a TestDir is a no-op.
func (s *Suite) RunStep(ctx context.Context, c StepCase) (*Report, error) {
	if c.TestDir == "" {
		return nil, nil
	}
	if c.Step == nil {
		return nil, fmt.Errorf("step case %q has no step", c.ID)
	}
	ctx, logger := ctxlog.With(ctx, "case", c.ID)

	input, err := s.GetData(ctx, c.TestDir, c.Input)
	if err != nil {
		return nil, err
	}

	logger.Info("Running step.", "input", input)
	products, err := c.Step(ctx, input, c.StepPars)
	if err != nil {
		return nil, fmt.Errorf("step case %q: %w", c.ID, err)
	}
	if len(products) != len(c.OutputTruth) {
		return nil, fmt.Errorf("step case %q: got %d product(s), have %d truth file(s)", c.ID, len(products), len(c.OutputTruth))
	}

	outputs := make([]Output, len(products))
	for i, p := range products {
		outputs[i] = Output{File: p, Truth: c.OutputTruth[i], Options: c.OutputOptions}
	}
	return s.compareOutputs(ctx, []string{c.TestDir, "truth"}, outputs, true)
}
