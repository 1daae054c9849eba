package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	"github.com/MatthewPierson90/cultionet/internal/logger"
)

func init() {
	logger.Init(false)
}

const sampleManifest = `[metadata]
name = cultionet
version = attr: cultionet.__version__

[options]
python_requires = >=3.8.0,<3.9.0
install_requires =
    attrs>=21.0
    frozendict>=2.2.0
    numpy>=1.21.0

[options.entry_points]
console_scripts =
    cultionet = cultionet.scripts.cultionet:main
`

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "setup.cfg")
	if err := os.WriteFile(path, []byte(sampleManifest), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestManifestRun(t *testing.T) {
	ios, out, _ := iostreams.NewTestIOStreams()
	opts := &ManifestOptions{
		IOStreams: ios,
		Path:      writeManifest(t),
	}

	if err := manifestRun(opts); err != nil {
		t.Fatalf("manifestRun failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{
		"cultionet",
		"cultionet = cultionet.scripts.cultionet:main",
		"attrs>=21.0",
		"requires (3)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestManifestRunJSON(t *testing.T) {
	ios, out, _ := iostreams.NewTestIOStreams()
	opts := &ManifestOptions{
		IOStreams: ios,
		Path:      writeManifest(t),
		JSON:      true,
	}

	if err := manifestRun(opts); err != nil {
		t.Fatalf("manifestRun failed: %v", err)
	}
	if !strings.Contains(out.String(), "\"Name\": \"cultionet\"") {
		t.Errorf("expected JSON keys in output, got %q", out.String())
	}
}

func TestManifestRunMissingFile(t *testing.T) {
	ios, _, _ := iostreams.NewTestIOStreams()
	opts := &ManifestOptions{
		IOStreams: ios,
		Path:      filepath.Join(t.TempDir(), "absent.cfg"),
	}

	if err := manifestRun(opts); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}
