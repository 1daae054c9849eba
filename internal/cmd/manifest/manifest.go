// Package manifest prints the normalized packaging manifest.
package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	pkgmanifest "github.com/MatthewPierson90/cultionet/internal/manifest"
)

// ManifestOptions contains the options for the manifest command.
type ManifestOptions struct {
	IOStreams    *iostreams.IOStreams
	Config       func() (*config.Config, error)
	ConfigLoader func() *config.Loader

	Path string // positional override for the manifest location
	JSON bool
}

// NewCmdManifest creates the manifest command.
func NewCmdManifest(f *cmdutil.Factory, runF func(*ManifestOptions) error) *cobra.Command {
	opts := &ManifestOptions{
		IOStreams:    f.IOStreams,
		Config:       f.Config,
		ConfigLoader: f.ConfigLoader,
	}

	cmd := &cobra.Command{
		Use:   "manifest [path]",
		Short: "Parse and print the project packaging manifest",
		Long: `Parses the setup.cfg-shaped packaging manifest referenced by the
configuration (or an explicit path) and prints the normalized view:
project name, version attribute, ordered dependency constraints,
package discovery, and the console entry point.

Parsing the same manifest twice always yields the same result; the
console entry point must be unique or the command fails.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Path = args[0]
			}
			if runF != nil {
				return runF(opts)
			}
			return manifestRun(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output the manifest as JSON")

	return cmd
}

func manifestRun(opts *ManifestOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	path := opts.Path
	if path == "" {
		cfg, err := opts.Config()
		if err != nil {
			return err
		}
		if cfg.Manifest == "" {
			return cmdutil.FlagErrorf("no manifest configured; pass a path or set 'manifest' in cultienv.yaml")
		}
		path = filepath.Join(opts.ConfigLoader().WorkDir(), cfg.Manifest)
	}

	m, err := pkgmanifest.ParseFile(path)
	if err != nil {
		return err
	}

	entry, err := m.ConsoleEntryPoint()
	if err != nil {
		fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.FailureIcon(), err)
		return cmdutil.SilentError
	}

	if opts.JSON {
		return cmdutil.OutputJSON(ios, m)
	}

	fmt.Fprintf(ios.Out, "%s %s\n", cs.Bold(m.Name), m.VersionAttr)
	fmt.Fprintf(ios.Out, "entry point: %s = %s\n", entry.Name, entry.Target)
	if m.PythonRequires != "" {
		fmt.Fprintf(ios.Out, "python: %s\n", m.PythonRequires)
	}
	fmt.Fprintf(ios.Out, "\nrequires (%d):\n", len(m.Requires))
	for _, r := range m.Requires {
		fmt.Fprintf(ios.Out, "  %s\n", r)
	}
	return nil
}
