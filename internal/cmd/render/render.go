// Package render writes the generated Dockerfile.
package render

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	plancmd "github.com/MatthewPierson90/cultionet/internal/cmd/plan"
	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/dockerfile"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	"github.com/MatthewPierson90/cultionet/internal/lockfile"
)

// RenderOptions contains the options for the render command.
type RenderOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
	Lockfile  func() (*lockfile.Lockfile, error)

	Output string // -o, --output; empty means stdout
}

// NewCmdRender creates the render command.
func NewCmdRender(f *cmdutil.Factory, runF func(*RenderOptions) error) *cobra.Command {
	opts := &RenderOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Lockfile:  f.Lockfile,
	}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the Dockerfile for the provisioning plan",
		Long: `Generates the Dockerfile the build command would use and writes it
to stdout or to a file.

The output is deterministic: the same configuration and lockfile
always render byte-identical output, and the content hash printed by
'cultienv build' is computed over exactly these bytes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(opts)
			}
			return renderRun(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write the Dockerfile to a file instead of stdout")

	return cmd
}

func renderRun(opts *RenderOptions) error {
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

	if opts.Output == "" {
		_, err := ios.Out.Write(rendered)
		return err
	}

	if err := os.WriteFile(opts.Output, rendered, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.Output, err)
	}
	fmt.Fprintf(ios.ErrOut, "%s Wrote %s (%s)\n", cs.SuccessIcon(), opts.Output,
		dockerfile.ContentHash(rendered))
	return nil
}
