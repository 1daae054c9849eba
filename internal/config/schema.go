package config

// Config represents the root configuration structure for cultienv.yaml.
// It describes the full provisioning recipe for the cultionet runtime
// environment: base image, native geospatial libraries, toolchain path
// bindings, the accelerator-matched deep-learning framework and its
// extension packages, the derived geospatial binding, and the
// version-control sources installed last.
type Config struct {
	Version    string           `yaml:"version" mapstructure:"version"`
	Project    string           `yaml:"project" mapstructure:"project"`
	Base       BaseConfig       `yaml:"base" mapstructure:"base"`
	Native     NativeConfig     `yaml:"native" mapstructure:"native"`
	Bindings   []Binding        `yaml:"bindings,omitempty" mapstructure:"bindings"`
	Framework  FrameworkConfig  `yaml:"framework" mapstructure:"framework"`
	Extensions ExtensionsConfig `yaml:"extensions" mapstructure:"extensions"`
	Geospatial GeospatialConfig `yaml:"geospatial" mapstructure:"geospatial"`
	Sources    []SourceConfig   `yaml:"sources,omitempty" mapstructure:"sources"`
	Manifest   string           `yaml:"manifest,omitempty" mapstructure:"manifest"`
	Logging    LoggingConfig    `yaml:"logging,omitempty" mapstructure:"logging"`
}

// BaseConfig identifies the base image and the accelerator toolkit it ships.
// Toolkit is the short tag ("cu113"); Image is the full reference and is
// defaulted from Toolkit+OS when empty.
type BaseConfig struct {
	Toolkit string `yaml:"toolkit" mapstructure:"toolkit"`
	OS      string `yaml:"os" mapstructure:"os"`
	Image   string `yaml:"image,omitempty" mapstructure:"image"`
}

// NativeConfig lists the OS-level geospatial libraries installed first.
// Versions are whatever the package source provides; the lockfile records
// observed versions after a build.
type NativeConfig struct {
	PPA      string   `yaml:"ppa,omitempty" mapstructure:"ppa"`
	Packages []string `yaml:"packages" mapstructure:"packages"`
}

// Binding is one environment-scoped key/value pair that wires native
// install locations into the build toolchain (include path, library
// search path, executable path). Bindings must be established before any
// step that compiles against the native headers.
type Binding struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Value string `yaml:"value" mapstructure:"value"`
}

// FrameworkConfig selects the deep-learning framework build.
// Index is the toolkit-specific package source; when empty it is derived
// from the Base toolkit tag.
type FrameworkConfig struct {
	Package string `yaml:"package" mapstructure:"package"`
	Version string `yaml:"version" mapstructure:"version"`
	Index   string `yaml:"index,omitempty" mapstructure:"index"`
}

// ExtensionsConfig lists the framework-extension packages and the wheel
// index they install from. The index URL is parameterized by both the
// framework version and the toolkit tag; when declared explicitly it must
// byte-match the derived URL or resolution fails.
type ExtensionsConfig struct {
	Packages []string `yaml:"packages" mapstructure:"packages"`
	Index    string   `yaml:"index,omitempty" mapstructure:"index"`
}

// GeospatialConfig describes the Python binding for the native geospatial
// core library. When Derive is true the binding version is queried from
// the installed library at build time rather than declared.
type GeospatialConfig struct {
	Binding string `yaml:"binding" mapstructure:"binding"`
	Derive  bool   `yaml:"derive" mapstructure:"derive"`
}

// SourceConfig is one version-control source installed after everything
// else. Ref is a branch name; Pin (normally filled in from the lockfile)
// is an immutable commit SHA that takes precedence over Ref.
type SourceConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	Repo string `yaml:"repo" mapstructure:"repo"`
	Ref  string `yaml:"ref,omitempty" mapstructure:"ref"`
	Pin  string `yaml:"pin,omitempty" mapstructure:"pin"`
}

// LoggingConfig controls file logging behavior.
type LoggingConfig struct {
	FileEnabled *bool `yaml:"file_enabled,omitempty" mapstructure:"file_enabled"`
	MaxSizeMB   int   `yaml:"max_size_mb,omitempty" mapstructure:"max_size_mb"`
	MaxAgeDays  int   `yaml:"max_age_days,omitempty" mapstructure:"max_age_days"`
	MaxBackups  int   `yaml:"max_backups,omitempty" mapstructure:"max_backups"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}
