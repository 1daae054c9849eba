package resolver

import "fmt"

// Resolution is a fully agreed version triple plus the package sources
// derived from it. Every field is final: the renderer and builder consume
// it verbatim, and the verifier checks the built image against it.
type Resolution struct {
	// Toolkit is the accelerator toolkit tag (e.g. "cu113") shared by the
	// base image, the framework build, and the extension wheel index.
	Toolkit string

	// ToolkitRelease is the dotted toolkit release ("11.3") embedded in
	// the base image reference.
	ToolkitRelease string

	// BaseImage is the full base image reference.
	BaseImage string

	// Framework is the framework package name ("torch").
	Framework string

	// FrameworkVersion is the exact framework version ("1.12.1").
	FrameworkVersion string

	// FrameworkIndex is the toolkit-specific package index the framework
	// installs from.
	FrameworkIndex string

	// ExtensionIndex is the wheel index for the framework-extension
	// packages, parameterized by FrameworkVersion and Toolkit.
	ExtensionIndex string
}

// Triple renders the toolkit/framework agreement as a single string, the
// form the extension index embeds ("torch-1.12.1+cu113").
func (r *Resolution) Triple() string {
	return fmt.Sprintf("%s-%s+%s", r.Framework, r.FrameworkVersion, r.Toolkit)
}

// MismatchError reports a cross-ecosystem version disagreement detected
// before any installation runs. Left undetected, these surface only as
// runtime link or import failures in the built image.
type MismatchError struct {
	Field    string // which declaration disagrees
	Declared string // what the configuration says
	Derived  string // what the resolution requires
	Reason   string
}

func (e *MismatchError) Error() string {
	if e.Declared == "" {
		return fmt.Sprintf("version mismatch in %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("version mismatch in %s: declared %q but resolution requires %q (%s)",
		e.Field, e.Declared, e.Derived, e.Reason)
}

// UnsupportedError reports a toolkit or framework version with no entry in
// the compatibility matrix.
type UnsupportedError struct {
	Toolkit   string
	Framework string // empty when the toolkit itself is unknown
	Supported []string
}

func (e *UnsupportedError) Error() string {
	if e.Framework == "" {
		return fmt.Sprintf("unsupported accelerator toolkit %q (known: %v)", e.Toolkit, e.Supported)
	}
	return fmt.Sprintf("framework version %q has no build for toolkit %q (supported: %v)",
		e.Framework, e.Toolkit, e.Supported)
}
