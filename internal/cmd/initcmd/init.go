// Package initcmd scaffolds a default cultienv.yaml.
package initcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
)

// InitOptions contains the options for the init command.
type InitOptions struct {
	IOStreams *iostreams.IOStreams
	WorkDir   string

	Force bool
}

// NewCmdInit creates the init command.
func NewCmdInit(f *cmdutil.Factory, runF func(*InitOptions) error) *cobra.Command {
	opts := &InitOptions{
		IOStreams: f.IOStreams,
	}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default cultienv.yaml to the current directory",
		Long: `Writes a commented default configuration describing the upstream
cultionet environment: CUDA 11.3 base image, ubuntugis native packages,
torch 1.12.1 with the matching PyG extension wheels, a derived GDAL
binding, and the git-sourced project dependencies.

Edit the file and run 'cultienv resolve' to check the version choices.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.WorkDir = f.WorkDir
			if runF != nil {
				return runF(opts)
			}
			return initRun(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing cultienv.yaml")

	return cmd
}

func initRun(opts *InitOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	loader := config.NewLoader(opts.WorkDir)
	if loader.Exists() && !opts.Force {
		fmt.Fprintf(ios.ErrOut, "%s %s already exists (use --force to overwrite)\n",
			cs.WarningIcon(), loader.ConfigPath())
		return cmdutil.SilentError
	}

	path, err := config.WriteDefault(opts.WorkDir)
	if err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	fmt.Fprintf(ios.Out, "%s Wrote %s\n", cs.SuccessIcon(), path)
	fmt.Fprintf(ios.Out, "%s Run 'cultienv resolve' to check the version matrix\n", cs.InfoIcon())
	return nil
}
