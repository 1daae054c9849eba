// Package lockfile pins the floating inputs of the provisioning
// procedure: version-control branch tips become immutable commit SHAs,
// the base image reference becomes a registry digest, and native package
// versions observed in a built image are recorded for drift detection.
package lockfile

import (
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"

	"github.com/MatthewPierson90/cultionet/internal/logger"
)

// FormatVersion is the current lockfile schema version.
const FormatVersion = 1

// Lockfile is the persisted reproducibility snapshot.
type Lockfile struct {
	// Version is the lockfile format version, allowing future schema
	// migrations.
	Version int `yaml:"version"`

	// GeneratedAt records when the pins were resolved.
	GeneratedAt time.Time `yaml:"generated_at"`

	// BaseImage pins the base image reference to a registry digest.
	BaseImage ImagePin `yaml:"base_image"`

	// Sources maps source names to pinned commit SHAs.
	Sources map[string]SourcePin `yaml:"sources"`

	// Natives records the native package versions observed in the last
	// built image. These are informational: the OS package source is not
	// pinnable, so verify warns on drift instead of failing.
	Natives map[string]string `yaml:"natives,omitempty"`
}

// ImagePin is a digest-pinned image reference.
type ImagePin struct {
	Reference string        `yaml:"reference"`
	Digest    digest.Digest `yaml:"digest"`
}

// Pinned renders the digest-qualified reference Docker accepts.
func (p ImagePin) Pinned() string {
	if p.Digest == "" {
		return p.Reference
	}
	return p.Reference + "@" + p.Digest.String()
}

// SourcePin is an immutable revision for one version-control source.
type SourcePin struct {
	Repo     string `yaml:"repo"`
	Ref      string `yaml:"ref"`
	Revision string `yaml:"revision"`
}

// New returns an empty lockfile at the current format version.
func New() *Lockfile {
	return &Lockfile{
		Version:     FormatVersion,
		GeneratedAt: time.Now().UTC(),
		Sources:     map[string]SourcePin{},
		Natives:     map[string]string{},
	}
}

// Read loads a lockfile from path.
func Read(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}

	var lf Lockfile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse lockfile %s: %w", path, err)
	}
	if lf.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported lockfile version %d (supported: %d)", lf.Version, FormatVersion)
	}
	return &lf, nil
}

// Exists reports whether a lockfile is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Write persists the lockfile to path under an advisory file lock, so
// concurrent cultienv invocations cannot interleave partial writes.
func (lf *Lockfile) Write(path string) error {
	fl := flock.New(path + ".flock")
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lockfile lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("lockfile %s is held by another cultienv process", path)
	}
	defer fl.Unlock()

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("failed to marshal lockfile: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}

	logger.Debug().
		Str("path", path).
		Int("sources", len(lf.Sources)).
		Msg("lockfile written")

	return nil
}
