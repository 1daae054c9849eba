// Package verify runs the post-build checks against a built image.
package verify

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	plancmd "github.com/MatthewPierson90/cultionet/internal/cmd/plan"
	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/docker"
	"github.com/MatthewPierson90/cultionet/internal/dockerfile"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	"github.com/MatthewPierson90/cultionet/internal/lockfile"
	"github.com/MatthewPierson90/cultionet/internal/manifest"
	"github.com/MatthewPierson90/cultionet/internal/resolver"
	imgverify "github.com/MatthewPierson90/cultionet/internal/verify"
)

// VerifyOptions contains the options for the verify command.
type VerifyOptions struct {
	IOStreams    *iostreams.IOStreams
	Config       func() (*config.Config, error)
	ConfigLoader func() *config.Loader
	Lockfile     func() (*lockfile.Lockfile, error)
	Client       func(context.Context) (*docker.Client, error)

	Image string // --image override; defaults to the content-addressed ref
	JSON  bool
}

// NewCmdVerify creates the verify command.
func NewCmdVerify(f *cmdutil.Factory, runF func(context.Context, *VerifyOptions) error) *cobra.Command {
	opts := &VerifyOptions{
		IOStreams:    f.IOStreams,
		Config:       f.Config,
		ConfigLoader: f.ConfigLoader,
		Lockfile:     f.Lockfile,
		Client:       f.Client,
	}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a built environment image",
		Long: `Runs checks inside the built image: the geospatial binding version
must round-trip through gdal-config, the framework must report the
resolved toolkit release, every extension module must import, and the
project's console entry point must respond to --help.

Native package drift against cultienv.lock is reported as a warning.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(cmd.Context(), opts)
			}
			return verifyRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Image, "image", "", "Image reference to verify (defaults to the current content-addressed tag)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output the report as JSON")

	return cmd
}

func verifyRun(ctx context.Context, opts *VerifyOptions) error {
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

	imageRef := opts.Image
	if imageRef == "" {
		imageRef, err = currentImageRef(opts, cfg)
		if err != nil {
			return err
		}
	}

	client, err := opts.Client(ctx)
	if err != nil {
		return err
	}

	exists, err := client.ImageExists(ctx, imageRef)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintf(ios.ErrOut, "%s Image %s not found; run 'cultienv build' first\n",
			cs.FailureIcon(), imageRef)
		return cmdutil.SilentError
	}

	lock, err := opts.Lockfile()
	if err != nil {
		return err
	}

	verifier := imgverify.New(client, imageRef)
	report, err := verifier.Run(ctx, imgverify.Options{
		Resolution: res,
		Binding:    cfg.Geospatial.Binding,
		Extensions: cfg.Extensions.Packages,
		Natives:    cfg.Native.Packages,
		Lock:       lock,
		EntryPoint: entryPointName(opts, cfg),
	})
	if err != nil {
		return err
	}

	if opts.JSON {
		return cmdutil.OutputJSON(ios, report)
	}

	fmt.Fprintf(ios.Out, "Verifying %s\n\n", cs.Bold(imageRef))
	for _, c := range report.Checks {
		icon := cs.SuccessIcon()
		switch c.Status {
		case imgverify.StatusWarn:
			icon = cs.WarningIcon()
		case imgverify.StatusFail:
			icon = cs.FailureIcon()
		}
		fmt.Fprintf(ios.Out, "%s %s", icon, c.Name)
		if c.Detail != "" {
			fmt.Fprintf(ios.Out, " (%s)", c.Detail)
		}
		fmt.Fprintln(ios.Out)
	}

	if report.Failed() {
		return cmdutil.SilentError
	}
	return nil
}

// currentImageRef recomputes the content-addressed reference the build
// command would use for the current config and lockfile.
func currentImageRef(opts *VerifyOptions, cfg *config.Config) (string, error) {
	p, _, err := plancmd.Build(opts.Config, opts.Lockfile)
	if err != nil {
		return "", err
	}
	gen := dockerfile.NewGenerator(p, cfg.Project, "")
	rendered, err := gen.Generate()
	if err != nil {
		return "", err
	}
	return docker.ImageRef(cfg.Project, dockerfile.ContentHash(rendered)), nil
}

// entryPointName resolves the console command from the packaging
// manifest; an unreadable or ambiguous manifest just skips the check.
func entryPointName(opts *VerifyOptions, cfg *config.Config) string {
	if cfg.Manifest == "" {
		return ""
	}
	path := cfg.Manifest
	if loader := opts.ConfigLoader(); loader != nil {
		path = filepath.Join(loader.WorkDir(), cfg.Manifest)
	}
	m, err := manifest.ParseFile(path)
	if err != nil {
		return ""
	}
	ep, err := m.ConsoleEntryPoint()
	if err != nil {
		return ""
	}
	return ep.Name
}
