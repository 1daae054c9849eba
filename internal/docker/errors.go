package docker

import (
	"fmt"
	"strings"
)

// DockerError wraps an SDK error with a human-readable message and
// remediation steps for the command layer to render.
type DockerError struct {
	Op        string
	Err       error
	Message   string
	NextSteps []string
}

func (e *DockerError) Error() string {
	return e.Message
}

func (e *DockerError) Unwrap() error {
	return e.Err
}

// FormatUserError formats the error for display with next steps.
func (e *DockerError) FormatUserError() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", e.Message))

	if e.Err != nil {
		sb.WriteString(fmt.Sprintf("  Details: %s\n", e.Err.Error()))
	}

	if len(e.NextSteps) > 0 {
		sb.WriteString("\nNext Steps:\n")
		for i, step := range e.NextSteps {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	return sb.String()
}

// ErrDaemonNotRunning reports an unreachable Docker daemon.
func ErrDaemonNotRunning(err error) *DockerError {
	return &DockerError{
		Op:      "connect",
		Err:     err,
		Message: "Cannot connect to Docker daemon",
		NextSteps: []string{
			"Ensure Docker is installed",
			"Start Docker Desktop (macOS/Windows) or run 'sudo systemctl start docker' (Linux)",
			"Check if Docker socket is accessible: ls -la /var/run/docker.sock",
		},
	}
}

// ErrBuildFailed reports a failed image build.
func ErrBuildFailed(err error) *DockerError {
	return &DockerError{
		Op:      "build",
		Err:     err,
		Message: "Failed to build environment image",
		NextSteps: []string{
			"Re-run with --debug to see the full build output",
			"Check network access to the package indexes and PPA mirrors",
			"Run 'cultienv render' to inspect the generated Dockerfile",
		},
	}
}
