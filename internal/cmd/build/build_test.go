package build

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	"github.com/MatthewPierson90/cultionet/internal/logger"
)

func init() {
	logger.Init(false)
}

func TestNewCmdBuildFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want BuildOptions
	}{
		{
			name: "defaults",
			args: []string{},
			want: BuildOptions{Progress: "auto"},
		},
		{
			name: "force no-cache",
			args: []string{"--force", "--no-cache"},
			want: BuildOptions{Force: true, NoCache: true, Progress: "auto"},
		},
		{
			name: "tags and pull",
			args: []string{"-t", "cultionet:latest", "-t", "cultionet:dev", "--pull"},
			want: BuildOptions{Tags: []string{"cultionet:latest", "cultionet:dev"}, Pull: true, Progress: "auto"},
		},
		{
			name: "plain progress",
			args: []string{"--progress", "plain"},
			want: BuildOptions{Progress: "plain"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ios, _, _ := iostreams.NewTestIOStreams()
			f := &cmdutil.Factory{IOStreams: ios}

			var got *BuildOptions
			cmd := NewCmdBuild(f, func(_ context.Context, opts *BuildOptions) error {
				got = opts
				return nil
			})
			cmd.SetArgs(tt.args)
			cmd.SetOut(ios.Out)
			cmd.SetErr(ios.ErrOut)

			_, err := cmd.ExecuteC()
			require.NoError(t, err)
			require.NotNil(t, got)

			assert.Equal(t, tt.want.Tags, got.Tags)
			assert.Equal(t, tt.want.NoCache, got.NoCache)
			assert.Equal(t, tt.want.Pull, got.Pull)
			assert.Equal(t, tt.want.Force, got.Force)
			assert.Equal(t, tt.want.Progress, got.Progress)
		})
	}
}

func TestProgressPrinter(t *testing.T) {
	ios, _, errOut := iostreams.NewTestIOStreams()

	if fn := progressPrinter(ios, "none"); fn != nil {
		t.Error("none must disable progress output")
	}

	// Test streams are not TTYs, so auto suppresses output.
	if fn := progressPrinter(ios, "auto"); fn != nil {
		t.Error("auto must suppress progress without a terminal")
	}

	fn := progressPrinter(ios, "plain")
	require.NotNil(t, fn)
	fn("Step 1/6 : FROM nvidia/cuda")
	assert.Contains(t, errOut.String(), "Step 1/6")
}
