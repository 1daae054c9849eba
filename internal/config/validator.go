package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MatthewPierson90/cultionet/internal/logger"
)

// toolkitTagPattern matches accelerator toolkit tags like cu113 or cpu.
var toolkitTagPattern = regexp.MustCompile(`^(cu\d{2,3}|cpu)$`)

// Validator validates a Config for correctness
type Validator struct {
	errors   []error
	warnings []string
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors:   []error{},
		warnings: []string{},
	}
}

// Validate checks the configuration for errors and returns all found issues
func (v *Validator) Validate(cfg *Config) error {
	v.errors = []error{}
	v.warnings = []string{}

	v.validateVersion(cfg)
	v.validateBase(cfg)
	v.validateNative(cfg)
	v.validateBindings(cfg)
	v.validateFramework(cfg)
	v.validateExtensions(cfg)
	v.validateGeospatial(cfg)
	v.validateSources(cfg)

	if len(v.errors) > 0 {
		return &MultiValidationError{Errors: v.errors}
	}
	return nil
}

func (v *Validator) addError(field, message string, value interface{}) {
	v.errors = append(v.errors, &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	})
}

func (v *Validator) addWarning(field, message string) {
	warning := fmt.Sprintf("%s: %s", field, message)
	v.warnings = append(v.warnings, warning)
	logger.Warn().
		Str("field", field).
		Msg(message)
}

// Warnings returns the list of validation warnings
func (v *Validator) Warnings() []string {
	return v.warnings
}

func (v *Validator) validateVersion(cfg *Config) {
	if cfg.Version == "" {
		v.addError("version", "is required", nil)
		return
	}
	if cfg.Version != "1" {
		v.addError("version", "must be '1' (only supported version)", cfg.Version)
	}
}

func (v *Validator) validateBase(cfg *Config) {
	if cfg.Base.Toolkit == "" {
		v.addError("base.toolkit", "is required", nil)
		return
	}
	if !toolkitTagPattern.MatchString(cfg.Base.Toolkit) {
		v.addError("base.toolkit", "must be a toolkit tag like 'cu113' or 'cpu'", cfg.Base.Toolkit)
	}
	if cfg.Base.OS == "" && cfg.Base.Image == "" {
		v.addError("base.os", "either 'os' or 'image' is required", nil)
	}
}

func (v *Validator) validateNative(cfg *Config) {
	if len(cfg.Native.Packages) == 0 {
		v.addError("native.packages", "at least one native package is required", nil)
		return
	}
	for i, pkg := range cfg.Native.Packages {
		if strings.TrimSpace(pkg) == "" {
			v.addError(fmt.Sprintf("native.packages[%d]", i), "package name must not be empty", pkg)
		}
		if strings.ContainsAny(pkg, ";&|") {
			v.addError(fmt.Sprintf("native.packages[%d]", i), "package name must not contain shell metacharacters", pkg)
		}
	}
	// Native versions come from the package source and are not pinned;
	// the lockfile records what was observed so verify can flag drift.
	v.addWarning("native.packages", "native package versions are not pinned; run 'cultienv lock' after a build to record them")
}

func (v *Validator) validateBindings(cfg *Config) {
	seen := map[string]int{}
	for i, b := range cfg.Bindings {
		if b.Key == "" {
			v.addError(fmt.Sprintf("bindings[%d].key", i), "is required", nil)
			continue
		}
		if prev, dup := seen[b.Key]; dup {
			v.addError(fmt.Sprintf("bindings[%d].key", i),
				fmt.Sprintf("duplicates bindings[%d]", prev), b.Key)
		}
		seen[b.Key] = i
		if b.Value == "" {
			v.addError(fmt.Sprintf("bindings[%d].value", i), "is required", b.Key)
		}
	}
}

func (v *Validator) validateFramework(cfg *Config) {
	if cfg.Framework.Package == "" {
		v.addError("framework.package", "is required", nil)
	}
	if cfg.Framework.Version == "" {
		v.addError("framework.version", "is required", nil)
		return
	}
	// A local version tag (torch "1.12.1+cu113") duplicates what the index
	// already encodes; the resolver derives it.
	if strings.Contains(cfg.Framework.Version, "+") {
		v.addError("framework.version",
			"must not carry a local toolkit tag; the toolkit comes from base.toolkit", cfg.Framework.Version)
	}
}

func (v *Validator) validateExtensions(cfg *Config) {
	if len(cfg.Extensions.Packages) == 0 {
		v.addWarning("extensions.packages", "no framework-extension packages declared")
	}
	for i, pkg := range cfg.Extensions.Packages {
		if strings.TrimSpace(pkg) == "" {
			v.addError(fmt.Sprintf("extensions.packages[%d]", i), "package name must not be empty", pkg)
		}
	}
}

func (v *Validator) validateGeospatial(cfg *Config) {
	if cfg.Geospatial.Binding == "" {
		v.addError("geospatial.binding", "is required", nil)
	}
	// A declared binding version can skew against the installed library;
	// the derived form is the only supported mode.
	if !cfg.Geospatial.Derive {
		v.addError("geospatial.derive",
			"must be true; the binding version is always derived from the installed library", cfg.Geospatial.Derive)
	}
}

func (v *Validator) validateSources(cfg *Config) {
	for i, src := range cfg.Sources {
		if src.Name == "" {
			v.addError(fmt.Sprintf("sources[%d].name", i), "is required", nil)
		}
		if src.Repo == "" {
			v.addError(fmt.Sprintf("sources[%d].repo", i), "is required", src.Name)
			continue
		}
		if !strings.HasPrefix(src.Repo, "https://") && !strings.HasPrefix(src.Repo, "git@") {
			v.addError(fmt.Sprintf("sources[%d].repo", i), "must be an https:// or git@ URL", src.Repo)
		}
		if src.Pin == "" {
			v.addWarning(fmt.Sprintf("sources[%d]", i),
				fmt.Sprintf("%s is unpinned and will track the %s branch tip; run 'cultienv lock'", src.Name, refOrHead(src.Ref)))
		}
	}
}

func refOrHead(ref string) string {
	if ref == "" {
		return "default"
	}
	return ref
}

// MultiValidationError holds multiple validation errors
type MultiValidationError struct {
	Errors []error
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d configuration errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidationErrors returns the individual errors
func (e *MultiValidationError) ValidationErrors() []error {
	return e.Errors
}
