package verify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatthewPierson90/cultionet/internal/docker"
	"github.com/MatthewPierson90/cultionet/internal/lockfile"
	"github.com/MatthewPierson90/cultionet/internal/logger"
	"github.com/MatthewPierson90/cultionet/internal/resolver"
)

func init() {
	logger.Init(false)
}

// fakeRunner scripts command outputs by the joined command line.
// Unscripted commands exit 0 with empty output.
type fakeRunner struct {
	results map[string]docker.RunResult
	ran     []string
}

func (f *fakeRunner) RunCommand(_ context.Context, opts docker.RunCommandOpts) (docker.RunResult, error) {
	key := strings.Join(opts.Cmd, " ")
	f.ran = append(f.ran, key)
	if res, ok := f.results[key]; ok {
		return res, nil
	}
	return docker.RunResult{}, nil
}

func healthyRunner() *fakeRunner {
	return &fakeRunner{results: map[string]docker.RunResult{
		"gdal-config --version": {Stdout: "3.3.2\n"},
		`python3 -c import importlib.metadata as im; print(im.version("GDAL"))`:  {Stdout: "3.3.2\n"},
		"python3 -c import torch; print(torch.version.cuda or 'cpu')":            {Stdout: "11.3\n"},
		"dpkg-query -W -f ${Package}=${Version}\\n libgdal-dev gdal-bin":         {Stdout: "libgdal-dev=3.3.2\ngdal-bin=3.3.2\n"},
	}}
}

func options() Options {
	lock := lockfile.New()
	lock.Natives = map[string]string{"libgdal-dev": "3.3.2", "gdal-bin": "3.3.2"}
	return Options{
		Resolution: &resolver.Resolution{
			Toolkit:          "cu113",
			ToolkitRelease:   "11.3",
			Framework:        "torch",
			FrameworkVersion: "1.12.1",
		},
		Binding:    "GDAL",
		Extensions: []string{"torch-scatter", "torch-geometric"},
		Natives:    []string{"libgdal-dev", "gdal-bin"},
		Lock:       lock,
		EntryPoint: "cultionet",
	}
}

func TestRunAllPass(t *testing.T) {
	runner := healthyRunner()
	v := New(runner, "cultionet:env-0123456789ab")

	report, err := v.Run(context.Background(), options())
	require.NoError(t, err)

	assert.False(t, report.Failed())
	require.Len(t, report.Checks, 5)
	for _, c := range report.Checks {
		assert.Equal(t, StatusPass, c.Status, c.Name)
	}

	assert.Contains(t, runner.ran, "python3 -c import torch_scatter")
	assert.Contains(t, runner.ran, "cultionet --help")
}

func TestGeospatialMismatchFails(t *testing.T) {
	runner := healthyRunner()
	runner.results[`python3 -c import importlib.metadata as im; print(im.version("GDAL"))`] =
		docker.RunResult{Stdout: "3.4.0\n"}
	v := New(runner, "img")

	report, err := v.Run(context.Background(), options())
	require.NoError(t, err)

	assert.True(t, report.Failed())
	assert.Equal(t, StatusFail, report.Checks[0].Status)
	assert.Contains(t, report.Checks[0].Detail, "3.3.2")
	assert.Contains(t, report.Checks[0].Detail, "3.4.0")
}

func TestToolkitDisagreementFails(t *testing.T) {
	runner := healthyRunner()
	runner.results["python3 -c import torch; print(torch.version.cuda or 'cpu')"] =
		docker.RunResult{Stdout: "11.6\n"}
	v := New(runner, "img")

	report, err := v.Run(context.Background(), options())
	require.NoError(t, err)

	assert.True(t, report.Failed())
	assert.Equal(t, StatusFail, report.Checks[1].Status)
	assert.Contains(t, report.Checks[1].Detail, "torch-1.12.1+cu113")
}

func TestCPUToolkit(t *testing.T) {
	runner := healthyRunner()
	runner.results["python3 -c import torch; print(torch.version.cuda or 'cpu')"] =
		docker.RunResult{Stdout: "cpu\n"}
	v := New(runner, "img")

	opts := options()
	opts.Resolution.Toolkit = "cpu"
	opts.Resolution.ToolkitRelease = ""

	report, err := v.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, StatusPass, report.Checks[1].Status)
}

func TestExtensionImportFailure(t *testing.T) {
	runner := healthyRunner()
	runner.results["python3 -c import torch_scatter"] =
		docker.RunResult{ExitCode: 1, Stderr: "undefined symbol\n"}
	v := New(runner, "img")

	report, err := v.Run(context.Background(), options())
	require.NoError(t, err)

	assert.True(t, report.Failed())
	assert.Equal(t, StatusFail, report.Checks[2].Status)
	assert.Contains(t, report.Checks[2].Detail, "torch_scatter")
}

func TestEntryPointFailure(t *testing.T) {
	runner := healthyRunner()
	runner.results["cultionet --help"] = docker.RunResult{ExitCode: 2}
	v := New(runner, "img")

	report, err := v.Run(context.Background(), options())
	require.NoError(t, err)

	assert.True(t, report.Failed())
	assert.Equal(t, StatusFail, report.Checks[3].Status)
}

func TestEntryPointSkippedWhenUnset(t *testing.T) {
	runner := healthyRunner()
	v := New(runner, "img")

	opts := options()
	opts.EntryPoint = ""

	report, err := v.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, report.Checks, 4)
	assert.NotContains(t, runner.ran, " --help")
}

func TestNativeDriftWarnsOnly(t *testing.T) {
	runner := healthyRunner()
	runner.results["dpkg-query -W -f ${Package}=${Version}\\n libgdal-dev gdal-bin"] =
		docker.RunResult{Stdout: "libgdal-dev=3.4.1\ngdal-bin=3.3.2\n"}
	v := New(runner, "img")

	report, err := v.Run(context.Background(), options())
	require.NoError(t, err)

	assert.False(t, report.Failed(), "drift must not fail the report")
	drift := report.Checks[4]
	assert.Equal(t, StatusWarn, drift.Status)
	assert.Contains(t, drift.Detail, "libgdal-dev 3.3.2 -> 3.4.1")
}

func TestCollectNatives(t *testing.T) {
	runner := healthyRunner()
	v := New(runner, "img")

	versions, err := v.CollectNatives(context.Background(), []string{"libgdal-dev", "gdal-bin"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"libgdal-dev": "3.3.2",
		"gdal-bin":    "3.3.2",
	}, versions)
}

func TestTruncateVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3.3.2\n", "3.3.2"},
		{"3.3.2.1", "3.3.2"},
		{"3.3", "3.3"},
	}
	for _, tt := range tests {
		if got := truncateVersion(tt.in, 3); got != tt.want {
			t.Errorf("truncateVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
