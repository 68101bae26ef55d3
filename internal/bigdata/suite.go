package bigdata

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vk/exptosource/internal/ctxlog"
	"github.com/vk/exptosource/internal/fsutil"
	"github.com/vk/exptosource/internal/metatree"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"
)

// DefaultIgnoreKeywords are leaf keys that always differ between runs.
var DefaultIgnoreKeywords = []string{"DATE", "CAL_VER", "CAL_VCS", "CRDS_VER", "CRDS_CTX", "FILENAME"}

// Decoder reads a pipeline product into a tree for comparison.
type Decoder func(path string) (metatree.Tree, error)

// Suite locates the fixtures of one group of regression tests.
type Suite struct {
	InputsRoot  string   // repository name, e.g. "jwst-pipeline"
	ResultsRoot string   // where failing outputs are copied, when local
	Env         string   // e.g. "dev"
	InputLoc    string   // instrument or test area under Env
	RefLoc      []string // truth location below InputLoc, e.g. ["test1", "truth"]

	WorkDir string        // fixtures are copied here; defaults to "."
	Root    string        // store root; defaults to Root()
	Timeout time.Duration // per request; defaults to DefaultTimeout
	Decode  Decoder       // required by CompareOutputs

	Rtol           float64
	Atol           float64
	IgnoreKeywords []string
	IgnoreFields   []string

	// Parallelism bounds GetDataAll; zero means 4.
	Parallelism int

	once   sync.Once
	client *resty.Client
}

// NewSuite returns a suite with the default tolerances and ignored keywords.
func NewSuite(inputsRoot, env, inputLoc string) *Suite {
	return &Suite{
		InputsRoot:     inputsRoot,
		Env:            env,
		InputLoc:       inputLoc,
		Rtol:           1e-5,
		IgnoreKeywords: append([]string(nil), DefaultIgnoreKeywords...),
	}
}

func (s *Suite) root() string {
	if s.Root != "" {
		return s.Root
	}
	return Root()
}

func (s *Suite) workDir() string {
	if s.WorkDir != "" {
		return s.WorkDir
	}
	return "."
}

func (s *Suite) httpClient() *resty.Client {
	s.once.Do(func() {
		s.client = newClient(s.Timeout)
	})
	return s.client
}

// RepoPath is [inputs_root, env, input_loc], empty parts dropped.
func (s *Suite) RepoPath() []string {
	return nonEmpty(s.InputsRoot, s.Env, s.InputLoc)
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetData copies the fixture at RepoPath()/parts into the work directory and
// returns the local path.
func (s *Suite) GetData(ctx context.Context, parts ...string) (string, error) {
	return s.fetch(ctx, s.workDir(), true, append(s.RepoPath(), parts...)...)
}

// DataPath returns the fixture path without copying it when the root is
// local. URL roots are always downloaded.
func (s *Suite) DataPath(ctx context.Context, parts ...string) (string, error) {
	return s.fetch(ctx, s.workDir(), false, append(s.RepoPath(), parts...)...)
}

// GetDataAll fetches several fixtures concurrently. Results keep the order
// of specs; the first failure cancels the rest. Specs that would land on the
// same file in the work directory are rejected before anything is fetched.
func (s *Suite) GetDataAll(ctx context.Context, specs ...[]string) ([]string, error) {
	seen := make(map[string]int, len(specs))
	for i, spec := range specs {
		base := path.Base(path.Join(spec...))
		if j, ok := seen[base]; ok {
			return nil, fmt.Errorf("%w: specs %d and %d both fetch to %s", ErrBigdata, j, i, base)
		}
		seen[base] = i
	}

	limit := s.Parallelism
	if limit <= 0 {
		limit = 4
	}
	out := make([]string, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, spec := range specs {
		g.Go(func() error {
			p, err := s.GetData(gctx, spec...)
			if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// fetch resolves parts against the store root and copies or downloads the
// file into dir.
func (s *Suite) fetch(ctx context.Context, dir string, docopy bool, parts ...string) (string, error) {
	root := s.root()
	logger := ctxlog.FromContext(ctx).With("root", root)

	switch {
	case fsutil.Exists(root):
		src := filepath.Join(append([]string{root}, parts...)...)
		if !fsutil.Exists(src) {
			return "", notFound(src)
		}
		if !docopy {
			return src, nil
		}
		dst := filepath.Join(dir, filepath.Base(src))
		if err := fsutil.CopyFile(dst, src); err != nil {
			return "", fmt.Errorf("%w: failed to copy %s: %w", ErrBigdata, src, err)
		}
		logger.Debug("Copied local fixture.", "src", src, "dest", dst)
		return dst, nil

	case IsURL(root):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		src := joinURL(root, parts...)
		dst := filepath.Join(dir, path.Base(src))
		if err := download(ctx, s.httpClient(), src, dst); err != nil {
			return "", err
		}
		return dst, nil

	default:
		return "", fmt.Errorf("%w: path cannot be found: %s", ErrBigdata, root)
	}
}

// DataGlob lists fixtures under RepoPath()/parts matching glob. The returned
// paths are relative to RepoPath(), so they can be passed back to GetData.
func (s *Suite) DataGlob(ctx context.Context, parts []string, glob string) ([]string, error) {
	if glob == "" {
		glob = "*"
	}
	root := s.root()

	switch {
	case fsutil.Exists(root):
		base := filepath.Join(append([]string{root}, s.RepoPath()...)...)
		dir := filepath.Join(append([]string{base}, parts...)...)
		matches, err := fsutil.Glob(dir, glob)
		if err != nil {
			return nil, fmt.Errorf("%w: bad glob %q: %w", ErrBigdata, glob, err)
		}
		out := make([]string, 0, len(matches))
		for _, m := range matches {
			rel, err := filepath.Rel(base, m)
			if err != nil {
				return nil, err
			}
			out = append(out, filepath.ToSlash(rel))
		}
		return out, nil

	case IsURL(root):
		repoPath := s.RepoPath()
		if len(repoPath) == 0 {
			return nil, fmt.Errorf("%w: inputs root is not set", ErrBigdata)
		}
		repo := repoPath[0]
		patternParts := make([]string, 0, len(repoPath)+len(parts))
		patternParts = append(patternParts, repoPath[1:]...)
		patternParts = append(patternParts, parts...)
		patternParts = append(patternParts, glob)
		files, err := searchPattern(ctx, s.httpClient(), root, repo, path.Join(patternParts...))
		if err != nil {
			return nil, err
		}
		prefix := path.Join(repoPath[1:]...)
		out := make([]string, 0, len(files))
		for _, f := range files {
			if prefix != "" {
				f = strings.TrimPrefix(f, prefix+"/")
			}
			out = append(out, f)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: path cannot be found: %s", ErrBigdata, root)
	}
}
