package bigdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/vk/exptosource/internal/ctxlog"
	"github.com/vk/exptosource/internal/fsutil"
	"github.com/vk/exptosource/internal/metatree"
)

// CompareOptions control how an output is matched against its truth file.
type CompareOptions struct {
	Rtol           float64  // relative fraction for numeric leaves
	Atol           float64  // absolute margin for numeric leaves
	IgnoreKeywords []string // leaf keys ignored anywhere, case-insensitive
	IgnoreFields   []string // dotted paths ignored, e.g. "source.5.slit"
}

// Output pairs a produced file with the name of its truth file. Options,
// when set, replace the suite defaults for this pair.
type Output struct {
	File    string
	Truth   string
	Options *CompareOptions
}

// Result is the outcome of one comparison.
type Result struct {
	File  string
	Truth string
	Diff  string // empty when identical
}

// Report collects the results of a CompareOutputs call.
type Report struct {
	Results []Result
}

// Failed returns the results that differ.
func (r *Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Diff != "" {
			out = append(out, res)
		}
	}
	return out
}

// String renders every difference.
func (r *Report) String() string {
	var b strings.Builder
	for _, res := range r.Results {
		if res.Diff == "" {
			fmt.Fprintf(&b, "%s matches %s\n", res.File, res.Truth)
			continue
		}
		fmt.Fprintf(&b, "%s differs from %s (-truth +output):\n%s\n", res.File, res.Truth, res.Diff)
	}
	return b.String()
}

// CompareError is returned when at least one output differs from its truth.
type CompareError struct {
	Report *Report
}

func (e *CompareError) Error() string {
	failed := e.Report.Failed()
	names := make([]string, len(failed))
	for i, f := range failed {
		names[i] = filepath.Base(f.File)
	}
	return fmt.Sprintf("%d output(s) differ from truth: %s\n%s", len(failed), strings.Join(names, ", "), e.Report)
}

// ErrNoDecoder is returned by CompareOutputs when the suite has no Decode.
var ErrNoDecoder = errors.New("suite has no decoder for pipeline products")

func (s *Suite) defaultOptions() CompareOptions {
	return CompareOptions{
		Rtol:           s.Rtol,
		Atol:           s.Atol,
		IgnoreKeywords: s.IgnoreKeywords,
		IgnoreFields:   s.IgnoreFields,
	}
}

// CompareOutputs fetches each truth file from RefLoc into the "truth"
// directory under WorkDir and compares it with the output. With raiseError,
// any difference yields a *CompareError next to the report.
func (s *Suite) CompareOutputs(ctx context.Context, outputs []Output, raiseError bool) (*Report, error) {
	return s.compareOutputs(ctx, s.RefLoc, outputs, raiseError)
}

func (s *Suite) compareOutputs(ctx context.Context, refLoc []string, outputs []Output, raiseError bool) (*Report, error) {
	if s.Decode == nil {
		return nil, ErrNoDecoder
	}
	logger := ctxlog.FromContext(ctx)
	report := &Report{}
	truthDir := filepath.Join(s.workDir(), "truth")

	for _, out := range outputs {
		if samePath(filepath.Join(truthDir, filepath.Base(out.Truth)), out.File) {
			return report, fmt.Errorf("%w: output %s would be overwritten by its truth file", ErrBigdata, out.File)
		}
		parts := append(append(s.RepoPath(), refLoc...), out.Truth)
		truthPath, err := s.fetch(ctx, truthDir, true, parts...)
		if err != nil {
			return report, err
		}

		got, err := s.Decode(out.File)
		if err != nil {
			return report, fmt.Errorf("failed to read output %s: %w", out.File, err)
		}
		want, err := s.Decode(truthPath)
		if err != nil {
			return report, fmt.Errorf("failed to read truth %s: %w", truthPath, err)
		}

		opts := s.defaultOptions()
		if out.Options != nil {
			opts = *out.Options
		}
		diff := CompareTrees(want, got, opts)
		report.Results = append(report.Results, Result{File: out.File, Truth: truthPath, Diff: diff})
		if diff != "" {
			logger.Warn("Output differs from truth.", "output", out.File, "truth", truthPath)
			s.keepFailedOutput(ctx, out.File)
		} else {
			logger.Debug("Output matches truth.", "output", out.File)
		}
	}

	if raiseError && len(report.Failed()) > 0 {
		return report, &CompareError{Report: report}
	}
	return report, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// keepFailedOutput copies a failing output under ResultsRoot when that is a
// local directory, so it can be inspected or promoted to truth.
func (s *Suite) keepFailedOutput(ctx context.Context, file string) {
	if s.ResultsRoot == "" || IsURL(s.ResultsRoot) {
		return
	}
	if info, err := os.Stat(s.ResultsRoot); err != nil || !info.IsDir() {
		ctxlog.FromContext(ctx).Debug("Results root is not a local directory; not keeping output.", "results_root", s.ResultsRoot)
		return
	}
	dst := filepath.Join(append(append([]string{s.ResultsRoot}, s.RepoPath()...), filepath.Base(file))...)
	if err := fsutil.CopyFile(dst, file); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to keep failing output.", "output", file, "error", err)
		return
	}
	ctxlog.FromContext(ctx).Info("Kept failing output.", "path", dst)
}

// CompareTrees returns a readable diff between two trees, or "" when they
// match. Two integers must be equal; any other pair of numbers matches
// within Rtol or Atol.
func CompareTrees(want, got metatree.Tree, opts CompareOptions) string {
	ignoredKeys := make(map[string]bool, len(opts.IgnoreKeywords))
	for _, k := range opts.IgnoreKeywords {
		ignoredKeys[strings.ToLower(k)] = true
	}
	ignoredPaths := make(map[string]bool, len(opts.IgnoreFields))
	for _, p := range opts.IgnoreFields {
		ignoredPaths[p] = true
	}

	cmpOpts := []cmp.Option{
		cmpopts.EquateApprox(opts.Rtol, opts.Atol),
		cmp.FilterValues(mixedNumbers, cmp.Comparer(func(x, y any) bool {
			return numbersEqual(x, y, opts.Rtol, opts.Atol)
		})),
		cmpopts.EquateEmpty(),
		cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
			return ignoredKeys[strings.ToLower(k)]
		}),
		cmp.FilterPath(func(p cmp.Path) bool {
			return ignoredPaths[dottedPath(p)]
		}, cmp.Ignore()),
	}
	return cmp.Diff(normalize(map[string]any(want)), normalize(map[string]any(got)), cmpOpts...)
}

// dottedPath renders the map keys of a cmp path as "a.b.c".
func dottedPath(p cmp.Path) string {
	var keys []string
	for _, step := range p {
		if mi, ok := step.(cmp.MapIndex); ok {
			keys = append(keys, fmt.Sprint(mi.Key().Interface()))
		}
	}
	return strings.Join(keys, ".")
}

// mixedNumbers selects number pairs that EquateApprox does not see: two
// integers, or an integer and a float.
func mixedNumbers(x, y any) bool {
	_, xf := x.(float64)
	_, yf := y.(float64)
	return isNumber(x) && isNumber(y) && !(xf && yf)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int64, float64:
		return true
	}
	return false
}

func numbersEqual(x, y any, rtol, atol float64) bool {
	xi, xInt := x.(int64)
	yi, yInt := y.(int64)
	if xInt && yInt {
		return xi == yi
	}
	xf, yf := toFloat(x), toFloat(y)
	d := math.Abs(xf - yf)
	return d <= atol || d <= rtol*math.Min(math.Abs(xf), math.Abs(yf))
}

func toFloat(v any) float64 {
	if i, ok := v.(int64); ok {
		return float64(i)
	}
	return v.(float64)
}

// normalize gives both sides the same dynamic types: plain maps, []any,
// int64 integers and float64 floats.
func normalize(v any) any {
	switch x := v.(type) {
	case metatree.Tree:
		return normalize(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case int:
		return int64(x)
	default:
		return v
	}
}
