package cli

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/exptosource/internal/app"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		want     *app.Config
		wantExit bool
		wantCode int
		wantMsg  string
	}{
		{
			name: "paths with defaults",
			args: []string{"a.hcl", "dir"},
			want: &app.Config{
				Paths:       []string{"a.hcl", "dir"},
				OutputDir:   ".",
				MergePolicy: "incoming",
				LogFormat:   "text",
				LogLevel:    "info",
			},
		},
		{
			name: "all options",
			args: []string{"-output-dir", "out", "-merge-policy", "existing", "-list", "-log-format", "JSON", "-log-level", "Debug", "a.hcl"},
			want: &app.Config{
				Paths:       []string{"a.hcl"},
				OutputDir:   "out",
				MergePolicy: "existing",
				List:        true,
				LogFormat:   "json",
				LogLevel:    "debug",
			},
		},
		{
			name: "shorthand output dir",
			args: []string{"-o", "short", "a.hcl"},
			want: &app.Config{
				Paths:       []string{"a.hcl"},
				OutputDir:   "short",
				MergePolicy: "incoming",
				LogFormat:   "text",
				LogLevel:    "info",
			},
		},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "no paths prints usage", args: nil, wantExit: true},
		{name: "unknown flag", args: []string{"-nope", "a.hcl"}, wantCode: 2, wantMsg: "flag provided but not defined: -nope"},
		{name: "bad log format", args: []string{"-log-format", "xml", "a.hcl"}, wantCode: 2, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "trace", "a.hcl"}, wantCode: 2, wantMsg: "invalid log-level"},
		{name: "bad merge policy", args: []string{"-merge-policy", "newest", "a.hcl"}, wantCode: 2, wantMsg: "unknown merge policy"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			got, shouldExit, err := Parse(tc.args, out)

			if tc.wantCode != 0 {
				var exitErr *ExitError
				require.ErrorAs(t, err, &exitErr)
				assert.Equal(t, tc.wantCode, exitErr.Code)
				assert.Contains(t, exitErr.Message, tc.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantExit, shouldExit)
			if tc.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
