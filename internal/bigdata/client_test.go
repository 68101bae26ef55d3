package bigdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreServer(t *testing.T, key string) (*httptest.Server, *[]string) {
	t.Helper()
	var patterns []string
	mux := http.NewServeMux()
	mux.HandleFunc("/jwst-pipeline/dev/nirspec/test1/input.hcl", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("a = 1\n"))
	})
	mux.HandleFunc("/api/search/pattern", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(apiKeyHeader) != key {
			http.Error(w, "bad key", http.StatusUnauthorized)
			return
		}
		patterns = append(patterns, r.URL.Query().Get("pattern"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"repoUri":       "http://store/jwst-pipeline",
			"sourcePattern": r.URL.Query().Get("pattern"),
			"files":         []string{"dev/nirspec/test1/a_cal.hcl", "dev/nirspec/test1/b_cal.hcl"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &patterns
}

func newURLSuite(t *testing.T, root string) *Suite {
	t.Helper()
	s := NewSuite("jwst-pipeline", "dev", "nirspec")
	s.Root = root
	s.WorkDir = filepath.Join(t.TempDir(), "work")
	return s
}

func TestSuite_GetData_URL(t *testing.T) {
	srv, _ := newStoreServer(t, "")
	s := newURLSuite(t, srv.URL+"/")

	got, err := s.GetData(context.Background(), "test1", "input.hcl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.WorkDir, "input.hcl"), got)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "a = 1\n", string(data))

	_, err = s.GetData(context.Background(), "test1", "missing.hcl")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBigdata)
	assert.Contains(t, err.Error(), "404")
}

func TestSuite_DataGlob_URL(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "svc.key")
	require.NoError(t, os.WriteFile(keyFile, []byte("secret-key\n"), 0o600))
	t.Setenv("API_KEY_FILE", keyFile)

	srv, patterns := newStoreServer(t, "secret-key")
	s := newURLSuite(t, srv.URL)

	got, err := s.DataGlob(context.Background(), []string{"test1"}, "*_cal.hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{"test1/a_cal.hcl", "test1/b_cal.hcl"}, got)
	assert.Equal(t, []string{"jwst-pipeline:dev/nirspec/test1/*_cal.hcl"}, *patterns)
}

func TestSuite_DataGlob_URLWithoutKey(t *testing.T) {
	t.Setenv("API_KEY_FILE", filepath.Join(t.TempDir(), "missing.key"))

	srv, _ := newStoreServer(t, "secret-key")
	s := newURLSuite(t, srv.URL)

	_, err := s.DataGlob(context.Background(), []string{"test1"}, "*")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBigdata)
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://host/a/b/c.hcl", joinURL("https://host/", "a", "b/", "c.hcl"))
	assert.Equal(t, "https://host/api/search/pattern", joinURL("https://host", "/api/search/pattern"))
}
