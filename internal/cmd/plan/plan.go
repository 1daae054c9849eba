// Package plan prints the ordered provisioning plan.
package plan

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/iostreams"
	"github.com/MatthewPierson90/cultionet/internal/lockfile"
	buildplan "github.com/MatthewPierson90/cultionet/internal/plan"
	"github.com/MatthewPierson90/cultionet/internal/resolver"
)

// PlanOptions contains the options for the plan command.
type PlanOptions struct {
	IOStreams *iostreams.IOStreams
	Config    func() (*config.Config, error)
	Lockfile  func() (*lockfile.Lockfile, error)

	JSON bool
}

// NewCmdPlan creates the plan command.
func NewCmdPlan(f *cmdutil.Factory, runF func(*PlanOptions) error) *cobra.Command {
	opts := &PlanOptions{
		IOStreams: f.IOStreams,
		Config:    f.Config,
		Lockfile:  f.Lockfile,
	}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the ordered provisioning plan",
		Long: `Builds and validates the ordered step plan: native libraries, path
bindings, Python toolchain, framework, extensions, the derived
geospatial binding, and version-control sources.

When a cultienv.lock exists, source steps render pinned commit
revisions instead of branch refs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runF != nil {
				return runF(opts)
			}
			return planRun(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output the plan as JSON")

	return cmd
}

func planRun(opts *PlanOptions) error {
	ios := opts.IOStreams
	cs := ios.ColorScheme()

	p, warnings, err := Build(opts.Config, opts.Lockfile)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.WarningIcon(), w)
	}

	if opts.JSON {
		return cmdutil.OutputJSON(ios, p)
	}

	fmt.Fprintf(ios.Out, "%s %s (%d steps)\n", cs.SuccessIcon(),
		cs.Bold(p.Resolution.Triple()), len(p.Steps))
	for i, step := range p.Steps {
		fmt.Fprintf(ios.Out, "\n%d. %s [%s]\n", i+1, step.Name, step.Kind)
		for _, b := range step.Env {
			fmt.Fprintf(ios.Out, "   ENV %s=%s\n", b.Key, b.Value)
		}
		for _, c := range step.Commands {
			fmt.Fprintf(ios.Out, "   RUN %s\n", c)
		}
	}
	return nil
}

// Build loads and validates the config, resolves versions, applies
// lockfile pins, and returns the plan together with any validation
// warnings. Shared with the render, build, and verify commands so every
// surface rejects the same inputs. buildplan.New validates step ordering
// itself before returning.
func Build(configFn func() (*config.Config, error), lockFn func() (*lockfile.Lockfile, error)) (*buildplan.Plan, []string, error) {
	cfg, err := configFn()
	if err != nil {
		return nil, nil, err
	}

	v := config.NewValidator()
	if err := v.Validate(cfg); err != nil {
		return nil, nil, err
	}

	res, err := resolver.Resolve(cfg)
	if err != nil {
		return nil, v.Warnings(), err
	}

	if lockFn != nil {
		lock, err := lockFn()
		if err != nil {
			return nil, v.Warnings(), err
		}
		if lock != nil {
			cfg.Sources = lock.ApplyPins(cfg.Sources)
			if lock.BaseImage.Digest != "" && lock.BaseImage.Reference == res.BaseImage {
				res.BaseImage = lock.BaseImage.Pinned()
			}
		}
	}

	p, err := buildplan.New(cfg, res)
	if err != nil {
		return nil, v.Warnings(), err
	}
	return p, v.Warnings(), nil
}
