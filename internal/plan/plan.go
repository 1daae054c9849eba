// Package plan turns a validated configuration and a resolved version
// triple into the ordered, non-reorderable provisioning procedure the
// image build executes. Each step renders to one image layer; every step
// is fail-fast and the whole procedure is strictly sequential.
package plan

import (
	"fmt"
	"strings"

	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/logger"
	"github.com/MatthewPierson90/cultionet/internal/resolver"
)

// StepKind identifies one stage of the provisioning procedure.
type StepKind string

const (
	StepNative     StepKind = "native"     // OS-level geospatial libraries
	StepBindings   StepKind = "bindings"   // include/link/exec path bindings
	StepToolchain  StepKind = "toolchain"  // Python build tooling
	StepFramework  StepKind = "framework"  // accelerator-matched framework
	StepExtensions StepKind = "extensions" // framework-extension packages
	StepGeospatial StepKind = "geospatial" // derived-version native binding
	StepSources    StepKind = "sources"    // version-control sources
)

// Step is one layer of the provisioning procedure.
type Step struct {
	Kind StepKind
	Name string

	// Commands are the shell commands for a RUN layer. Empty for the
	// bindings step, which renders as ENV.
	Commands []string

	// Env holds the bindings for an ENV layer.
	Env []config.Binding

	// CompilesNative marks steps that compile source against the native
	// geospatial headers. Such steps must run after both the native
	// install and the path bindings.
	CompilesNative bool
}

// Plan is the ordered provisioning procedure.
type Plan struct {
	Steps []Step

	// Resolution is the version triple the plan was built against.
	Resolution *resolver.Resolution
}

// New builds the canonical ordered plan from a config and its resolution.
// Source pins, when present on cfg (filled in from the lockfile), replace
// branch refs with immutable revisions.
func New(cfg *config.Config, res *resolver.Resolution) (*Plan, error) {
	p := &Plan{Resolution: res}

	p.Steps = append(p.Steps, nativeStep(cfg))
	p.Steps = append(p.Steps, Step{
		Kind: StepBindings,
		Name: "bind toolchain paths",
		Env:  cfg.Bindings,
	})
	p.Steps = append(p.Steps, Step{
		Kind:     StepToolchain,
		Name:     "upgrade Python build tooling",
		Commands: []string{"pip install --user -U pip setuptools wheel"},
	})
	p.Steps = append(p.Steps, Step{
		Kind: StepFramework,
		Name: fmt.Sprintf("install %s==%s (%s)", res.Framework, res.FrameworkVersion, res.Toolkit),
		Commands: []string{fmt.Sprintf(
			"pip install --user %s==%s --extra-index-url %s",
			res.Framework, res.FrameworkVersion, res.FrameworkIndex,
		)},
	})
	if len(cfg.Extensions.Packages) > 0 {
		p.Steps = append(p.Steps, Step{
			Kind: StepExtensions,
			Name: "install framework extensions",
			Commands: []string{fmt.Sprintf(
				"pip install --user %s -f %s",
				strings.Join(cfg.Extensions.Packages, " "), res.ExtensionIndex,
			)},
		})
	}
	geo, err := geospatialStep(cfg)
	if err != nil {
		return nil, err
	}
	p.Steps = append(p.Steps, geo)
	if len(cfg.Sources) > 0 {
		p.Steps = append(p.Steps, sourcesStep(cfg))
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Int("steps", len(p.Steps)).
		Str("triple", res.Triple()).
		Msg("provisioning plan built")

	return p, nil
}

func nativeStep(cfg *config.Config) Step {
	cmds := []string{"apt update -y"}
	if cfg.Native.PPA != "" {
		cmds = append(cmds,
			"apt install -y software-properties-common",
			fmt.Sprintf("add-apt-repository -y %s", cfg.Native.PPA),
			"apt update -y",
		)
	}
	cmds = append(cmds, fmt.Sprintf(
		"DEBIAN_FRONTEND=noninteractive apt install -y %s python3-pip",
		strings.Join(cfg.Native.Packages, " "),
	))
	return Step{
		Kind:     StepNative,
		Name:     "install native geospatial libraries",
		Commands: cmds,
	}
}

// geospatialStep builds the query-then-install layer: the binding version
// is read from the installed library at build time, never declared, so it
// cannot drift from the native install.
func geospatialStep(cfg *config.Config) (Step, error) {
	if !cfg.Geospatial.Derive {
		return Step{}, fmt.Errorf("geospatial binding %q requires derive mode; a declared binding version can drift from the installed library", cfg.Geospatial.Binding)
	}
	return Step{
		Kind: StepGeospatial,
		Name: fmt.Sprintf("install %s binding at the installed library version", cfg.Geospatial.Binding),
		Commands: []string{fmt.Sprintf(
			"pip install --user %s==$(gdal-config --version | cut -d. -f1-3)",
			cfg.Geospatial.Binding,
		)},
		CompilesNative: true,
	}, nil
}

func sourcesStep(cfg *config.Config) Step {
	cmds := make([]string, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		cmds = append(cmds, fmt.Sprintf("pip install --user %s", SourceSpec(src)))
	}
	return Step{
		Kind:     StepSources,
		Name:     "install version-control sources",
		Commands: cmds,
		// Source installs may build native extensions against the
		// geospatial headers, so they carry the same ordering constraint.
		CompilesNative: true,
	}
}

// SourceSpec renders the pip VCS requirement for a source: pinned revision
// when available, branch ref otherwise, bare repo URL as the last resort.
func SourceSpec(src config.SourceConfig) string {
	switch {
	case src.Pin != "":
		return fmt.Sprintf("git+%s@%s", src.Repo, src.Pin)
	case src.Ref != "":
		return fmt.Sprintf("git+%s@%s", src.Repo, src.Ref)
	default:
		return fmt.Sprintf("git+%s", src.Repo)
	}
}
