package cmdutil

import (
	"context"

	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/docker"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	"github.com/MatthewPierson90/cultionet/internal/lockfile"
)

// Factory provides shared dependencies for CLI commands.
// It is a dependency injection container: the struct defines what
// dependencies exist (the contract), while internal/cmd/factory
// wires the real implementations.
//
// Closure fields are set by the factory constructor and use lazy
// initialization internally. Commands extract only the fields they
// need into per-command Options structs.
type Factory struct {
	// Configuration from flags (set before command execution)
	WorkDir    string
	ConfigPath string // --config override for the cultienv.yaml location
	Debug      bool

	// Version info (set at build time via ldflags)
	Version string
	Commit  string

	// IO streams for input/output (for testability)
	IOStreams *iostreams.IOStreams

	// Dependency providers (closures wired by factory constructor)
	Client      func(context.Context) (*docker.Client, error)
	CloseClient func()

	ConfigLoader func() *config.Loader
	Config       func() (*config.Config, error)

	// Lockfile reads cultienv.lock next to the config; returns
	// (nil, nil) when no lockfile has been written yet.
	Lockfile func() (*lockfile.Lockfile, error)

	// RefLister and DigestResolver are the network backends for the
	// lock command. Tests swap in fixtures.
	RefLister      func() lockfile.RefLister
	DigestResolver func() lockfile.DigestResolver
}
