// Package factory wires the real implementations behind the
// cmdutil.Factory dependency contract.
package factory

import (
	"context"
	"os"
	"sync"

	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/docker"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	"github.com/MatthewPierson90/cultionet/internal/lockfile"
)

// New creates a fully-wired Factory with lazy-initialized dependency
// closures. Called exactly once at the CLI entry point
// (internal/cultienv/cmd.go). Tests should NOT import this package;
// construct &cmdutil.Factory{} directly.
func New(version, commit string) *cmdutil.Factory {
	ios := iostreams.NewIOStreams()

	if !ios.IsOutputTTY() || os.Getenv("NO_COLOR") != "" {
		ios.SetColorEnabled(false)
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	f := &cmdutil.Factory{
		WorkDir:   wd,
		Version:   version,
		Commit:    commit,
		IOStreams: ios,
	}

	// --- Lazy dependency closures ---

	// Docker client
	var (
		clientOnce sync.Once
		client     *docker.Client
		clientErr  error
	)
	f.Client = func(ctx context.Context) (*docker.Client, error) {
		clientOnce.Do(func() {
			client, clientErr = docker.NewClient(ctx)
		})
		return client, clientErr
	}
	f.CloseClient = func() {
		if client != nil {
			client.Close()
		}
	}

	// Config. The loader is resolved after flag parsing so --config can
	// override the location.
	var (
		loaderOnce sync.Once
		loader     *config.Loader
		configData *config.Config
		configErr  error
	)
	f.ConfigLoader = func() *config.Loader {
		loaderOnce.Do(func() {
			if f.ConfigPath != "" {
				loader = config.NewLoaderWithPath(f.ConfigPath)
			} else {
				loader = config.NewLoader(f.WorkDir)
			}
		})
		return loader
	}
	f.Config = func() (*config.Config, error) {
		if configData != nil || configErr != nil {
			return configData, configErr
		}
		configData, configErr = f.ConfigLoader().Load()
		return configData, configErr
	}

	// Lockfile next to the config; nil when none has been written.
	f.Lockfile = func() (*lockfile.Lockfile, error) {
		path := f.ConfigLoader().LockPath()
		if !lockfile.Exists(path) {
			return nil, nil
		}
		return lockfile.Read(path)
	}

	// Network backends for the lock command.
	f.RefLister = func() lockfile.RefLister {
		return lockfile.RemoteLister{}
	}
	f.DigestResolver = func() lockfile.DigestResolver {
		return lockfile.RegistryResolver{}
	}

	return f
}
