// Package build renders the Dockerfile and builds the environment image.
package build

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	plancmd "github.com/MatthewPierson90/cultionet/internal/cmd/plan"
	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/docker"
	"github.com/MatthewPierson90/cultionet/internal/dockerfile"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	"github.com/MatthewPierson90/cultionet/internal/lockfile"
	"github.com/MatthewPierson90/cultionet/internal/verify"
)

// BuildOptions contains the options for the build command.
type BuildOptions struct {
	IOStreams    *iostreams.IOStreams
	Config       func() (*config.Config, error)
	ConfigLoader func() *config.Loader
	Lockfile     func() (*lockfile.Lockfile, error)
	Client       func(context.Context) (*docker.Client, error)

	Tags     []string // -t, --tag (extra tags)
	NoCache  bool     // --no-cache
	Pull     bool     // --pull
	Force    bool     // --force (rebuild even when unchanged)
	Progress string   // --progress (auto, plain, none)
}

// NewCmdBuild creates the build command.
func NewCmdBuild(f *cmdutil.Factory, runF func(context.Context, *BuildOptions) error) *cobra.Command {
	opts := &BuildOptions{
		IOStreams:    f.IOStreams,
		Config:       f.Config,
		ConfigLoader: f.ConfigLoader,
		Lockfile:     f.Lockfile,
		Client:       f.Client,
	}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the environment image from cultienv.yaml",
		Long: `Renders the Dockerfile for the validated provisioning plan and builds
it, tagging the result with a content-addressed tag derived from the
rendered bytes. When an image with that tag already exists the build
is skipped; use --force to rebuild anyway.

After a fresh build the observed native package versions are recorded
in cultienv.lock (when one exists) for later drift detection.`,
		Example: `  # Build the environment image
  cultienv build

  # Rebuild from scratch
  cultienv build --force --no-cache

  # Apply an extra tag
  cultienv build -t cultionet:latest`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return buildRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Tags, "tag", "t", nil, "Extra tags to apply (format: name:tag)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Do not use cache when building the image")
	cmd.Flags().BoolVar(&opts.Pull, "pull", false, "Always attempt to pull a newer version of the base image")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Rebuild even when the content-addressed tag already exists")
	cmd.Flags().StringVar(&opts.Progress, "progress", "auto", "Build output (auto, plain, none)")

	return cmd
}

func buildRun(ctx context.Context, opts *BuildOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	p, warnings, err := plancmd.Build(opts.Config, opts.Lockfile)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.WarningIcon(), w)
	}

	gen := dockerfile.NewGenerator(p, cfg.Project, "")
	rendered, err := gen.Generate()
	if err != nil {
		return err
	}
	hash := dockerfile.ContentHash(rendered)
	imageRef := docker.ImageRef(cfg.Project, hash)

	client, err := opts.Client(ctx)
	if err != nil {
		return err
	}

	buildContext, err := gen.BuildContext()
	if err != nil {
		return err
	}

	fmt.Fprintf(ios.ErrOut, "%s Building %s (%s)\n", cs.InfoIcon(), imageRef, p.Resolution.Triple())

	built, err := client.EnsureImage(ctx, imageRef, opts.Force, buildContext, docker.BuildImageOpts{
		NoCache:    opts.NoCache,
		Pull:       opts.Pull,
		OnProgress: progressPrinter(ios, opts.Progress),
	})
	if err != nil {
		return err
	}

	if built {
		fmt.Fprintf(ios.Out, "%s Built %s\n", cs.SuccessIcon(), imageRef)
		if err := recordNatives(ctx, opts, client, cfg, imageRef); err != nil {
			fmt.Fprintf(ios.ErrOut, "%s Could not record native versions: %s\n", cs.WarningIcon(), err)
		}
	} else {
		fmt.Fprintf(ios.Out, "%s %s is up to date\n", cs.SuccessIcon(), imageRef)
	}

	for _, tag := range opts.Tags {
		if err := client.TagImage(ctx, imageRef, tag); err != nil {
			return err
		}
		fmt.Fprintf(ios.Out, "%s Tagged %s\n", cs.SuccessIcon(), tag)
	}

	return nil
}

// progressPrinter maps the --progress flag to a line callback. "auto"
// shows build steps only on a terminal.
func progressPrinter(ios *iostreams.IOStreams, mode string) docker.BuildProgressFunc {
	switch mode {
	case "none":
		return nil
	case "auto":
		if !ios.IsStderrTTY() {
			return nil
		}
	}
	return func(line string) {
		fmt.Fprintln(ios.ErrOut, line)
	}
}

// recordNatives stores the built image's native package versions in an
// existing lockfile so the verifier can report drift later.
func recordNatives(ctx context.Context, opts *BuildOptions, client *docker.Client, cfg *config.Config, imageRef string) error {
	lock, err := opts.Lockfile()
	if err != nil || lock == nil {
		return err
	}
	if len(cfg.Native.Packages) == 0 {
		return nil
	}

	v := verify.New(client, imageRef)
	natives, err := v.CollectNatives(ctx, cfg.Native.Packages)
	if err != nil {
		return err
	}

	lock.Natives = natives
	return lock.Write(opts.ConfigLoader().LockPath())
}
