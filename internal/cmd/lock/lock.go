// Package lock pins the floating inputs of the build.
package lock

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	"github.com/MatthewPierson90/cultionet/internal/lockfile"
	"github.com/MatthewPierson90/cultionet/internal/resolver"
)

// LockOptions contains the options for the lock command.
type LockOptions struct {
	IOStreams      *iostreams.IOStreams
	Config         func() (*config.Config, error)
	ConfigLoader   func() *config.Loader
	Lockfile       func() (*lockfile.Lockfile, error)
	RefLister      func() lockfile.RefLister
	DigestResolver func() lockfile.DigestResolver
}

// NewCmdLock creates the lock command.
func NewCmdLock(f *cmdutil.Factory, runF func(context.Context, *LockOptions) error) *cobra.Command {
	opts := &LockOptions{
		IOStreams:      f.IOStreams,
		Config:         f.Config,
		ConfigLoader:   f.ConfigLoader,
		Lockfile:       f.Lockfile,
		RefLister:      f.RefLister,
		DigestResolver: f.DigestResolver,
	}

	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Pin branch sources and the base image in cultienv.lock",
		Long: `Resolves every version-control source's branch tip to an immutable
commit SHA and the base image reference to a registry digest, then
writes cultienv.lock next to the configuration.

Native package versions observed during a build are preserved from an
existing lockfile; run 'cultienv build' to record them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return lockRun(cmd.Context(), opts)
		},
	}

	return cmd
}

func lockRun(ctx context.Context, opts *LockOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	res, err := resolver.Resolve(cfg)
	if err != nil {
		return err
	}

	lf := lockfile.New()

	// Keep natives recorded by a previous build. An unreadable lockfile
	// means they are lost, which the user should hear about.
	existing, err := opts.Lockfile()
	switch {
	case err != nil:
		fmt.Fprintf(ios.ErrOut, "%s Could not read existing lockfile, previously recorded native versions are discarded: %s\n",
			cs.WarningIcon(), err)
	case existing != nil:
		lf.Natives = existing.Natives
	}

	if err := lf.PinSources(cfg.Sources, opts.RefLister()); err != nil {
		return fmt.Errorf("failed to pin sources: %w", err)
	}
	for _, src := range cfg.Sources {
		pin := lf.Sources[src.Name]
		fmt.Fprintf(ios.Out, "%s %s %s -> %.12s\n", cs.SuccessIcon(), src.Name, pin.Ref, pin.Revision)
	}

	if err := lf.PinBaseImage(ctx, res.BaseImage, opts.DigestResolver()); err != nil {
		return fmt.Errorf("failed to pin base image: %w", err)
	}
	fmt.Fprintf(ios.Out, "%s %s\n", cs.SuccessIcon(), lf.BaseImage.Pinned())

	path := opts.ConfigLoader().LockPath()
	if err := lf.Write(path); err != nil {
		return err
	}

	fmt.Fprintf(ios.Out, "%s Wrote %s\n", cs.SuccessIcon(), path)
	return nil
}
