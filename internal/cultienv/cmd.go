// Package cultienv is the CLI entry point: it wires the factory, runs
// the command tree, and maps errors to exit codes.
package cultienv

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MatthewPierson90/cultionet/internal/cmd/factory"
	"github.com/MatthewPierson90/cultionet/internal/cmd/root"
	"github.com/MatthewPierson90/cultionet/internal/cmdutil"
	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/docker"
	"github.com/MatthewPierson90/cultionet/internal/logger"
)

// Build-time variables injected via ldflags
var (
	Version = "dev"
	Commit  = "none"
)

const (
	exitOk    = 0
	exitError = 1
	exitUsage = 2
)

// Main is the entry point for the cultienv CLI.
func Main() int {
	// Ensure logs are flushed on exit
	defer logger.CloseFileWriter()

	f := factory.New(Version, Commit)
	defer f.CloseClient()

	rootCmd := root.NewCmdRoot(f, Version, Commit)
	rootCmd.SetOut(f.IOStreams.Out)
	rootCmd.SetErr(f.IOStreams.ErrOut)
	rootCmd.SilenceErrors = true

	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return exitOk
	}

	return printError(f, cmd, err)
}

// printError renders an execution error and picks the exit code.
func printError(f *cmdutil.Factory, cmd *cobra.Command, err error) int {
	ios := f.IOStreams
	cs := ios.ColorScheme()

	var exitErr *cmdutil.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if errors.Is(err, cmdutil.SilentError) {
		return exitError
	}

	var flagErr *cmdutil.FlagError
	if errors.As(err, &flagErr) {
		fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.FailureIcon(), flagErr.Error())
		fmt.Fprint(ios.ErrOut, cmd.UsageString())
		return exitUsage
	}

	var dockerErr *docker.DockerError
	if errors.As(err, &dockerErr) {
		fmt.Fprint(ios.ErrOut, dockerErr.FormatUserError())
		return exitError
	}

	var validationErr *config.MultiValidationError
	if errors.As(err, &validationErr) {
		fmt.Fprintf(ios.ErrOut, "%s Configuration validation failed\n", cs.FailureIcon())
		fmt.Fprintln(ios.ErrOut, validationErr)
		return exitError
	}

	if config.IsConfigNotFound(err) {
		fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.FailureIcon(), err)
		fmt.Fprintf(ios.ErrOut, "Run 'cultienv init' to create one.\n")
		return exitError
	}

	fmt.Fprintf(ios.ErrOut, "%s %s\n", cs.FailureIcon(), err)
	cmdutil.PrintHelpHint(ios, cmd.CommandPath())
	return exitError
}
