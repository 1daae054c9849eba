// Package verify runs post-build checks inside a built environment
// image. Every check executes a one-off command in a container and
// inspects its output, so a passing report means the runtime actually
// holds the versions the resolution promised, not just that the build
// exited zero.
package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/MatthewPierson90/cultionet/internal/docker"
	"github.com/MatthewPierson90/cultionet/internal/lockfile"
	"github.com/MatthewPierson90/cultionet/internal/logger"
	"github.com/MatthewPierson90/cultionet/internal/resolver"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check is one verification result.
type Check struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report collects the checks run against one image.
type Report struct {
	Image  string  `json:"image"`
	Checks []Check `json:"checks"`
}

// Failed reports whether any check failed. Warnings do not fail a report.
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

// CommandRunner executes a one-off command inside an image.
// *docker.Client satisfies it; tests substitute a fixture.
type CommandRunner interface {
	RunCommand(ctx context.Context, opts docker.RunCommandOpts) (docker.RunResult, error)
}

// Options selects which checks run and what they compare against.
type Options struct {
	Resolution *resolver.Resolution
	Binding    string   // geospatial binding distribution name ("GDAL")
	Extensions []string // extension package names
	Natives    []string // native package names to query for drift
	Lock       *lockfile.Lockfile
	EntryPoint string // console command to smoke-test; empty skips
}

// Verifier runs checks against one built image.
type Verifier struct {
	runner CommandRunner
	image  string
}

func New(runner CommandRunner, image string) *Verifier {
	return &Verifier{runner: runner, image: image}
}

// Run executes all applicable checks. An error return means a check
// could not execute at all; check failures land in the report.
func (v *Verifier) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{Image: v.image}

	checks := []func(context.Context, Options) (Check, error){
		v.checkGeospatialRoundTrip,
		v.checkToolkitAgreement,
		v.checkExtensionImports,
		v.checkEntryPoint,
		v.checkNativeDrift,
	}
	for _, check := range checks {
		c, err := check(ctx, opts)
		if err != nil {
			return nil, err
		}
		if c.Name == "" {
			continue // check not applicable
		}
		report.Checks = append(report.Checks, c)

		logger.Debug().
			Str("check", c.Name).
			Str("status", string(c.Status)).
			Str("detail", c.Detail).
			Msg("verification check finished")
	}

	return report, nil
}

func (v *Verifier) run(ctx context.Context, cmd ...string) (docker.RunResult, error) {
	return v.runner.RunCommand(ctx, docker.RunCommandOpts{
		Image: v.image,
		Cmd:   cmd,
	})
}

// checkGeospatialRoundTrip compares the native library version reported
// by gdal-config with the installed Python binding's distribution
// version. The build derives the binding version from the same query, so
// any disagreement means the image was not built the way it claims.
func (v *Verifier) checkGeospatialRoundTrip(ctx context.Context, opts Options) (Check, error) {
	const name = "geospatial binding matches native library"

	native, err := v.run(ctx, "gdal-config", "--version")
	if err != nil {
		return Check{}, err
	}
	if native.ExitCode != 0 {
		return Check{Name: name, Status: StatusFail,
			Detail: "gdal-config not available: " + native.Combined()}, nil
	}
	nativeVersion := truncateVersion(native.Combined(), 3)

	binding, err := v.run(ctx, "python3", "-c",
		fmt.Sprintf("import importlib.metadata as im; print(im.version(%q))", opts.Binding))
	if err != nil {
		return Check{}, err
	}
	if binding.ExitCode != 0 {
		return Check{Name: name, Status: StatusFail,
			Detail: fmt.Sprintf("binding %s not installed: %s", opts.Binding, binding.Combined())}, nil
	}
	bindingVersion := truncateVersion(binding.Combined(), 3)

	if nativeVersion != bindingVersion {
		return Check{Name: name, Status: StatusFail,
			Detail: fmt.Sprintf("native %s != binding %s", nativeVersion, bindingVersion)}, nil
	}
	return Check{Name: name, Status: StatusPass, Detail: nativeVersion}, nil
}

// checkToolkitAgreement asks the framework which toolkit release it was
// built against and compares with the resolved one.
func (v *Verifier) checkToolkitAgreement(ctx context.Context, opts Options) (Check, error) {
	const name = "framework toolkit matches resolution"
	res := opts.Resolution

	fw := res.Framework
	probe, err := v.run(ctx, "python3", "-c",
		fmt.Sprintf("import %s; print(%s.version.cuda or 'cpu')", fw, fw))
	if err != nil {
		return Check{}, err
	}
	if probe.ExitCode != 0 {
		return Check{Name: name, Status: StatusFail,
			Detail: fw + " not importable: " + probe.Combined()}, nil
	}

	reported := probe.Combined()
	want := res.ToolkitRelease
	if res.Toolkit == "cpu" {
		want = "cpu"
	}
	if reported != want {
		return Check{Name: name, Status: StatusFail,
			Detail: fmt.Sprintf("%s reports toolkit %s, resolution is %s (%s)",
				fw, reported, want, res.Triple())}, nil
	}
	return Check{Name: name, Status: StatusPass, Detail: res.Triple()}, nil
}

// checkExtensionImports imports each extension module. A link error
// against a mismatched framework build surfaces here as an import
// failure.
func (v *Verifier) checkExtensionImports(ctx context.Context, opts Options) (Check, error) {
	const name = "extension imports"
	if len(opts.Extensions) == 0 {
		return Check{}, nil
	}

	var failed []string
	for _, pkg := range opts.Extensions {
		module := strings.ReplaceAll(pkg, "-", "_")
		res, err := v.run(ctx, "python3", "-c", "import "+module)
		if err != nil {
			return Check{}, err
		}
		if res.ExitCode != 0 {
			failed = append(failed, module)
		}
	}

	if len(failed) > 0 {
		return Check{Name: name, Status: StatusFail,
			Detail: "failed to import: " + strings.Join(failed, ", ")}, nil
	}
	return Check{Name: name, Status: StatusPass,
		Detail: fmt.Sprintf("%d modules importable", len(opts.Extensions))}, nil
}

// checkEntryPoint invokes the console command with --help. The command
// existing and exiting zero is the whole check; project behavior beyond
// that is out of scope.
func (v *Verifier) checkEntryPoint(ctx context.Context, opts Options) (Check, error) {
	const name = "console entry point responds"
	if opts.EntryPoint == "" {
		return Check{}, nil
	}

	res, err := v.run(ctx, opts.EntryPoint, "--help")
	if err != nil {
		return Check{}, err
	}
	if res.ExitCode != 0 {
		return Check{Name: name, Status: StatusFail,
			Detail: fmt.Sprintf("%s --help exited %d", opts.EntryPoint, res.ExitCode)}, nil
	}
	return Check{Name: name, Status: StatusPass, Detail: opts.EntryPoint + " --help"}, nil
}

// checkNativeDrift compares installed native package versions with the
// ones recorded in the lockfile. The OS package source is not pinnable,
// so drift is a warning, never a failure.
func (v *Verifier) checkNativeDrift(ctx context.Context, opts Options) (Check, error) {
	const name = "native package drift"
	if opts.Lock == nil || len(opts.Lock.Natives) == 0 || len(opts.Natives) == 0 {
		return Check{}, nil
	}

	observed, err := v.CollectNatives(ctx, opts.Natives)
	if err != nil {
		return Check{}, err
	}

	var drifted []string
	for pkg, recorded := range opts.Lock.Natives {
		current, ok := observed[pkg]
		if !ok {
			drifted = append(drifted, pkg+" (missing)")
			continue
		}
		if current != recorded {
			drifted = append(drifted, fmt.Sprintf("%s %s -> %s", pkg, recorded, current))
		}
	}

	if len(drifted) > 0 {
		return Check{Name: name, Status: StatusWarn,
			Detail: strings.Join(drifted, "; ")}, nil
	}
	return Check{Name: name, Status: StatusPass,
		Detail: fmt.Sprintf("%d packages match the lockfile", len(opts.Lock.Natives))}, nil
}

// CollectNatives queries the installed versions of the given native
// packages inside the image, so the lockfile can record them after a
// build.
func (v *Verifier) CollectNatives(ctx context.Context, packages []string) (map[string]string, error) {
	cmd := append([]string{"dpkg-query", "-W", "-f", "${Package}=${Version}\\n"}, packages...)
	res, err := v.run(ctx, cmd...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("dpkg-query exited %d: %s", res.ExitCode, res.Combined())
	}

	versions := map[string]string{}
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pkg, version, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		versions[pkg] = version
	}
	return versions, nil
}

// truncateVersion reduces a dotted version to at most n leading parts,
// matching the `cut -d. -f1-3` the build step applies.
func truncateVersion(v string, n int) string {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) > n {
		parts = parts[:n]
	}
	return strings.Join(parts, ".")
}
