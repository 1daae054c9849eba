package plan

import (
	"errors"
	"strings"
	"testing"

	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/logger"
	"github.com/MatthewPierson90/cultionet/internal/resolver"
)

func init() {
	logger.Init(false)
}

func defaultPlan(t *testing.T) *Plan {
	t.Helper()
	cfg := config.DefaultConfig()
	res, err := resolver.Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	p, err := New(cfg, res)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func stepByKind(p *Plan, kind StepKind) (Step, bool) {
	for _, s := range p.Steps {
		if s.Kind == kind {
			return s, true
		}
	}
	return Step{}, false
}

func TestNewCanonicalOrder(t *testing.T) {
	p := defaultPlan(t)

	want := []StepKind{
		StepNative,
		StepBindings,
		StepToolchain,
		StepFramework,
		StepExtensions,
		StepGeospatial,
		StepSources,
	}
	if len(p.Steps) != len(want) {
		t.Fatalf("len(Steps) = %d, want %d", len(p.Steps), len(want))
	}
	for i, kind := range want {
		if p.Steps[i].Kind != kind {
			t.Errorf("Steps[%d].Kind = %q, want %q", i, p.Steps[i].Kind, kind)
		}
	}
}

func TestFrameworkStepUsesResolvedIndex(t *testing.T) {
	p := defaultPlan(t)

	fw, ok := stepByKind(p, StepFramework)
	if !ok {
		t.Fatal("plan should contain a framework step")
	}
	cmd := strings.Join(fw.Commands, "\n")
	if !strings.Contains(cmd, "torch==1.12.1") {
		t.Errorf("framework command missing exact version: %q", cmd)
	}
	if !strings.Contains(cmd, "https://download.pytorch.org/whl/cu113") {
		t.Errorf("framework command missing toolkit index: %q", cmd)
	}
}

func TestExtensionStepEmbedsTriple(t *testing.T) {
	p := defaultPlan(t)

	ext, ok := stepByKind(p, StepExtensions)
	if !ok {
		t.Fatal("plan should contain an extensions step")
	}
	cmd := strings.Join(ext.Commands, "\n")
	if !strings.Contains(cmd, "torch-1.12.1+cu113") {
		t.Errorf("extension index must embed the resolved triple: %q", cmd)
	}
	if !strings.Contains(cmd, "torch-scatter") || !strings.Contains(cmd, "torch-geometric") {
		t.Errorf("extension command missing packages: %q", cmd)
	}
}

func TestGeospatialStepDerivesVersion(t *testing.T) {
	p := defaultPlan(t)

	geo, ok := stepByKind(p, StepGeospatial)
	if !ok {
		t.Fatal("plan should contain a geospatial step")
	}
	cmd := strings.Join(geo.Commands, "\n")
	if !strings.Contains(cmd, "$(gdal-config --version") {
		t.Errorf("binding version must be queried at build time, got %q", cmd)
	}
	if !geo.CompilesNative {
		t.Error("geospatial step must be flagged as compiling against native headers")
	}

	// Property: no hard-coded GDAL version anywhere in the plan.
	for _, s := range p.Steps {
		for _, c := range s.Commands {
			if strings.Contains(c, "GDAL==3") || strings.Contains(c, "GDAL==2") {
				t.Errorf("plan contains a hard-coded binding version: %q", c)
			}
		}
	}
}

func TestNewRejectsDeclaredBindingVersion(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Geospatial.Derive = false
	res, err := resolver.Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := New(cfg, res); err == nil {
		t.Error("New() should reject non-derived geospatial binding versions")
	}
}

func TestSourceSpec(t *testing.T) {
	tests := []struct {
		name string
		src  config.SourceConfig
		want string
	}{
		{
			"pinned",
			config.SourceConfig{Repo: "https://github.com/jgrss/geowombat.git", Ref: "main", Pin: "abc123"},
			"git+https://github.com/jgrss/geowombat.git@abc123",
		},
		{
			"branch ref",
			config.SourceConfig{Repo: "https://github.com/jgrss/tsaug.git", Ref: "dev"},
			"git+https://github.com/jgrss/tsaug.git@dev",
		},
		{
			"floating",
			config.SourceConfig{Repo: "https://github.com/jgrss/cultionet.git"},
			"git+https://github.com/jgrss/cultionet.git",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SourceSpec(tt.src); got != tt.want {
				t.Errorf("SourceSpec() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateBindingsMustPrecedeNativeCompiles(t *testing.T) {
	p := defaultPlan(t)

	// Move the bindings step to the end
	var reordered []Step
	var bindings Step
	for _, s := range p.Steps {
		if s.Kind == StepBindings {
			bindings = s
			continue
		}
		reordered = append(reordered, s)
	}
	p.Steps = append(reordered, bindings)

	err := p.Validate()
	if err == nil {
		t.Fatal("Validate() should reject bindings after native-compiling steps")
	}
	var orderErr *OrderError
	if !errors.As(err, &orderErr) {
		t.Fatalf("error type = %T, want *OrderError", err)
	}
	if !strings.Contains(err.Error(), "path bindings") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateExtensionsAfterFramework(t *testing.T) {
	p := defaultPlan(t)

	for i := range p.Steps {
		if p.Steps[i].Kind == StepFramework {
			p.Steps[i].Kind = StepExtensions
		} else if p.Steps[i].Kind == StepExtensions {
			p.Steps[i].Kind = StepFramework
		}
	}

	if err := p.Validate(); err == nil {
		t.Error("Validate() should reject extensions installing before the framework")
	}
}

func TestValidateDuplicateStage(t *testing.T) {
	p := defaultPlan(t)
	p.Steps = append(p.Steps, Step{Kind: StepFramework, Name: "again"})

	if err := p.Validate(); err == nil {
		t.Error("Validate() should reject duplicated stages")
	}
}
