package bigdata

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/vk/exptosource/internal/ctxlog"
	"resty.dev/v3"
)

// DefaultTimeout bounds every request to the store.
const DefaultTimeout = 5 * time.Minute

// newClient returns a resty client over a pooled http.Client.
func newClient(timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return resty.NewWithClient(&http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	})
}

// joinURL joins a root URL and path parts with single slashes.
func joinURL(root string, parts ...string) string {
	return strings.TrimRight(root, "/") + "/" + strings.TrimLeft(path.Join(parts...), "/")
}

// download fetches src into dst.
func download(ctx context.Context, client *resty.Client, src, dst string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Downloading fixture.", "url", src, "dest", dst)

	resp, err := client.R().SetContext(ctx).Get(src)
	if err != nil {
		return fmt.Errorf("%w: failed to download %s: %w", ErrBigdata, src, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: failed to download %s: %s", ErrBigdata, src, resp.Status())
	}
	if err := os.WriteFile(dst, resp.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	logger.Info("Downloaded fixture.", "url", src, "bytes", len(resp.Bytes()))
	return nil
}

// searchResult is the body of an Artifactory pattern search.
type searchResult struct {
	RepoURI       string   `json:"repoUri"`
	SourcePattern string   `json:"sourcePattern"`
	Files         []string `json:"files"`
}

// searchPattern runs api/search/pattern for repo:pattern and returns the
// matching paths, relative to the repository.
func searchPattern(ctx context.Context, client *resty.Client, root, repo, pattern string) ([]string, error) {
	query := repo + ":" + pattern
	var result searchResult

	req := client.R().
		SetContext(ctx).
		SetQueryParam("pattern", query).
		SetResult(&result)
	if key := apiKey(ctx); key != "" {
		req.SetHeader(apiKeyHeader, key)
	}

	resp, err := req.Get(joinURL(root, "api/search/pattern"))
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", ErrBigdata, query, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: search %s: %s", ErrBigdata, query, resp.Status())
	}
	ctxlog.FromContext(ctx).Debug("Artifactory search complete.", "pattern", query, "matches", len(result.Files))
	return result.Files, nil
}
