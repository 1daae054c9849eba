// Package root assembles the cultienv command tree.
package root

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	buildcmd "github.com/MatthewPierson90/cultionet/internal/cmd/build"
	"github.com/MatthewPierson90/cultionet/internal/cmd/initcmd"
	lockcmd "github.com/MatthewPierson90/cultionet/internal/cmd/lock"
	manifestcmd "github.com/MatthewPierson90/cultionet/internal/cmd/manifest"
	plancmd "github.com/MatthewPierson90/cultionet/internal/cmd/plan"
	rendercmd "github.com/MatthewPierson90/cultionet/internal/cmd/render"
	resolvecmd "github.com/MatthewPierson90/cultionet/internal/cmd/resolve"
	verifycmd "github.com/MatthewPierson90/cultionet/internal/cmd/verify"
	versioncmd "github.com/MatthewPierson90/cultionet/internal/cmd/version"
	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/logger"
)

// NewCmdRoot creates the root command for the cultienv CLI.
func NewCmdRoot(f *cmdutil.Factory, version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cultienv <command>",
		Short: "Build and verify the cultionet runtime environment",
		Long: `Cultienv builds the GPU geospatial environment the cultionet project
runs in: a CUDA base image with native geospatial libraries, an
accelerator-matched deep-learning framework with its extension wheels,
a derived GDAL binding, and pinned git sources.

Quick start:
  cultienv init      # Write a default cultienv.yaml
  cultienv resolve   # Check the toolkit/framework/extension agreement
  cultienv lock      # Pin branch sources and the base image
  cultienv build     # Build the environment image
  cultienv verify    # Check the built image from the inside`,
		SilenceUsage: true,
		Annotations: map[string]string{
			"versionInfo": versioncmd.Format(version, commit),
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initializeLogger(f)

			logger.Debug().
				Str("version", f.Version).
				Bool("debug", f.Debug).
				Msg("cultienv starting")

			return nil
		},
		Version: f.Version,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&f.Debug, "debug", "D", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&f.ConfigPath, "config", "", "Path to cultienv.yaml (default: ./cultienv.yaml)")

	// Version template
	cmd.SetVersionTemplate(versioncmd.Format(version, commit))

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		if err == pflag.ErrHelp {
			return err
		}
		return cmdutil.FlagErrorWrap(err)
	})

	cmd.AddCommand(initcmd.NewCmdInit(f, nil))
	cmd.AddCommand(resolvecmd.NewCmdResolve(f, nil))
	cmd.AddCommand(plancmd.NewCmdPlan(f, nil))
	cmd.AddCommand(rendercmd.NewCmdRender(f, nil))
	cmd.AddCommand(lockcmd.NewCmdLock(f, nil))
	cmd.AddCommand(buildcmd.NewCmdBuild(f, nil))
	cmd.AddCommand(verifycmd.NewCmdVerify(f, nil))
	cmd.AddCommand(manifestcmd.NewCmdManifest(f, nil))
	cmd.AddCommand(versioncmd.NewCmdVersion(f, version, commit))

	return cmd
}

// initializeLogger sets up rotated file logging from the configuration
// when one is loadable, falling back to console-only logging.
func initializeLogger(f *cmdutil.Factory) {
	cfg, err := f.Config()
	if err != nil {
		logger.Init(f.Debug)
		logger.Debug().Err(err).Msg("file logging unavailable: no loadable configuration")
		return
	}

	logsDir, err := defaultLogsDir()
	if err != nil {
		logger.Init(f.Debug)
		logger.Warn().Err(err).Msg("file logging unavailable: no logs directory")
		return
	}

	logCfg := &logger.LoggingConfig{
		FileEnabled: cfg.Logging.FileEnabled,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxAgeDays:  cfg.Logging.MaxAgeDays,
		MaxBackups:  cfg.Logging.MaxBackups,
	}
	if err := logger.InitWithFile(f.Debug, logsDir, logCfg); err != nil {
		logger.Init(f.Debug)
		logger.Warn().Err(err).Msg("file logging unavailable")
	}
}

func defaultLogsDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "cultienv", "logs"), nil
}
