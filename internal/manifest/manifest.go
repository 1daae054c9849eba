// Package manifest resolves the project's static packaging metadata: the
// package identity, its ordered dependency constraints, its source layout,
// and its single console entry point. Parsing is deterministic; resolving
// the same manifest twice yields deeply equal results.
package manifest

import (
	"fmt"
	"os"
	"strings"
)

// Manifest is the normalized packaging metadata.
type Manifest struct {
	// Name is the distribution name.
	Name string

	// VersionAttr is the source attribute the version is read from
	// (e.g. "cultionet.__version__"). The version is resolved from the
	// source tree at install time, never declared twice.
	VersionAttr string

	// Version is a literal version, set only when the manifest declares
	// one instead of an attribute lookup.
	Version string

	LicenseFiles []string
	Classifiers  []string

	// Requires is the ordered dependency list. Order is preserved from
	// the manifest; it is part of the resolved identity.
	Requires []Requirement

	// PythonRequires is the interpreter constraint, if declared.
	PythonRequires string

	// Packages describes source discovery.
	Packages PackageDiscovery

	// EntryPoints maps group name ("console_scripts") to its bindings.
	EntryPoints map[string][]EntryPoint

	// PackageData maps package names to non-code inclusion globs.
	PackageData map[string][]string
}

// Requirement is one dependency constraint.
type Requirement struct {
	// Name is the bare distribution name.
	Name string

	// Constraint is the version constraint (">=1.22.0,<2"), empty when
	// unconstrained.
	Constraint string
}

// String renders the requirement in manifest form.
func (r Requirement) String() string {
	return r.Name + r.Constraint
}

// PackageDiscovery describes where packages are found and what is excluded.
type PackageDiscovery struct {
	Find    bool // packages = find:
	Where   string
	Exclude []string
}

// EntryPoint is one name-to-callable binding.
type EntryPoint struct {
	// Name is the console command name.
	Name string

	// Target is the "module.path:callable" the name binds to.
	Target string
}

// ParseFile reads and resolves the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return m, nil
}

// ConsoleEntryPoint returns the single console command binding.
// It errors unless exactly one console_scripts entry exists: zero means
// the package installs no command, more than one means the name-to-callable
// mapping is ambiguous.
func (m *Manifest) ConsoleEntryPoint() (EntryPoint, error) {
	scripts := m.EntryPoints["console_scripts"]
	switch len(scripts) {
	case 0:
		return EntryPoint{}, fmt.Errorf("manifest declares no console entry point")
	case 1:
		return scripts[0], nil
	default:
		names := make([]string, len(scripts))
		for i, ep := range scripts {
			names[i] = ep.Name
		}
		return EntryPoint{}, fmt.Errorf("manifest declares %d console entry points (%s), want exactly one",
			len(scripts), strings.Join(names, ", "))
	}
}

// Requirement returns the constraint declared for a dependency name, or
// false when the manifest does not require it.
func (m *Manifest) Requirement(name string) (Requirement, bool) {
	for _, req := range m.Requires {
		if strings.EqualFold(req.Name, name) {
			return req, true
		}
	}
	return Requirement{}, false
}
