// Package resolve prints the resolved version triple for the configured
// environment, or the mismatch that prevents one from existing.
package resolve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	"github.com/MatthewPierson90/cultionet/internal/resolver"
)

// ResolveOptions contains the options for the resolve command.
type ResolveOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)

	JSON bool
}

// NewCmdResolve creates the resolve command.
func NewCmdResolve(f *cmdutil.Factory, runF func(*ResolveOptions) error) *cobra.Command {
	opts := &ResolveOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
	}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the toolkit/framework/extension version agreement",
		Long: `Checks the configured toolkit tag, framework version, and extension
index against the compatibility matrix and prints the resolved triple.

Resolution fails fast: an unknown toolkit, an unsupported framework
version, or a declared index that differs from the derived one is an
error, never a silent substitution.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(opts)
			}
			return resolveRun(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output the resolution as JSON")

	return cmd
}

func resolveRun(opts *ResolveOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	res, err := resolver.Resolve(cfg)
	if err != nil {
		fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.FailureIcon(), err)
		return cmdutil.SilentError
	}

	if opts.JSON {
		return cmdutil.OutputJSON(ios, res)
	}

	fmt.Fprintf(ios.Out, "%s %s\n", cs.SuccessIcon(), cs.Bold(res.Triple()))
	fmt.Fprintf(ios.Out, "  toolkit:    %s (release %s)\n", res.Toolkit, res.ToolkitRelease)
	fmt.Fprintf(ios.Out, "  base image: %s\n", res.BaseImage)
	fmt.Fprintf(ios.Out, "  framework:  %s %s\n", res.Framework, res.FrameworkVersion)
	fmt.Fprintf(ios.Out, "  framework index: %s\n", res.FrameworkIndex)
	fmt.Fprintf(ios.Out, "  extension index: %s\n", res.ExtensionIndex)
	return nil
}
