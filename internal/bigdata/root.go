package bigdata

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/vk/exptosource/internal/ctxlog"
)

const (
	// DefaultRoot is used when TEST_BIGDATA is unset.
	DefaultRoot = "https://bytesalad.stsci.edu/artifactory"
	// DefaultAPIKeyFile is read when API_KEY_FILE is unset.
	DefaultAPIKeyFile = "/eng/ssb2/keys/svc_rodata.key"

	rootEnv       = "TEST_BIGDATA"
	apiKeyFileEnv = "API_KEY_FILE"
	apiKeyHeader  = "X-JFrog-Art-Api"
)

// ErrBigdata marks failures to locate or fetch fixture data.
var ErrBigdata = errors.New("bigdata")

// Root returns the configured store root.
func Root() string {
	if root := os.Getenv(rootEnv); root != "" {
		return root
	}
	return DefaultRoot
}

// IsURL reports whether root is an http(s) URL.
func IsURL(root string) bool {
	u, err := url.Parse(root)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// apiKey reads the Artifactory API key. A missing or unreadable key file is
// not an error: requests go out anonymously, with a warning.
func apiKey(ctx context.Context) string {
	path := os.Getenv(apiKeyFileEnv)
	if path == "" {
		path = DefaultAPIKeyFile
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			ctxlog.FromContext(ctx).Warn("Anonymous Artifactory search requests are limited to 1000 results. Use an API key and define API_KEY_FILE to get full search results.", "key_file", path)
			return ""
		}
		ctxlog.FromContext(ctx).Warn("Could not read Artifactory API key.", "key_file", path, "error", err)
		return ""
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

func notFound(what string) error {
	return fmt.Errorf("%w: failed to find data: %s", ErrBigdata, what)
}
