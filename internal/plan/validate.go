package plan

import "fmt"

// OrderError reports a provisioning order that violates a build
// invariant. The procedure is non-reorderable; any violation aborts
// before a single layer is built.
type OrderError struct {
	Step   StepKind
	Reason string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("invalid step order at %q: %s", e.Step, e.Reason)
}

// Validate checks the ordering invariants of the procedure:
//
//   - the path bindings are established before any step that compiles
//     against the native headers;
//   - the native libraries are installed before anything compiles against
//     them and before the binding install queries their version;
//   - the framework precedes its extensions, which link against it;
//   - each stage appears at most once.
func (p *Plan) Validate() error {
	pos := map[StepKind]int{}
	for i, s := range p.Steps {
		if prev, dup := pos[s.Kind]; dup {
			return &OrderError{Step: s.Kind, Reason: fmt.Sprintf("duplicated at positions %d and %d", prev, i)}
		}
		pos[s.Kind] = i
	}

	bindings, haveBindings := pos[StepBindings]
	native, haveNative := pos[StepNative]

	for _, s := range p.Steps {
		if !s.CompilesNative {
			continue
		}
		if !haveBindings {
			return &OrderError{Step: s.Kind, Reason: "compiles against native headers but no path bindings step exists"}
		}
		if pos[s.Kind] < bindings {
			return &OrderError{Step: s.Kind, Reason: "compiles against native headers before the path bindings are set"}
		}
		if !haveNative || pos[s.Kind] < native {
			return &OrderError{Step: s.Kind, Reason: "compiles against native headers before the native libraries are installed"}
		}
	}

	if ext, ok := pos[StepExtensions]; ok {
		fw, haveFw := pos[StepFramework]
		if !haveFw {
			return &OrderError{Step: StepExtensions, Reason: "extensions link against the framework but no framework step exists"}
		}
		if ext < fw {
			return &OrderError{Step: StepExtensions, Reason: "extensions must install after the framework they link against"}
		}
	}

	if geo, ok := pos[StepGeospatial]; ok {
		if !haveNative || geo < native {
			return &OrderError{Step: StepGeospatial, Reason: "binding version is queried from the native library, which must be installed first"}
		}
	}

	return nil
}
