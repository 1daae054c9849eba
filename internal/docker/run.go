package docker

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"

	"github.com/MatthewPierson90/cultionet/internal/logger"
)

// RunCommandOpts describes a one-off command execution inside an image.
type RunCommandOpts struct {
	Image string
	Cmd   []string
	Env   []string
}

// RunResult carries the outcome of a one-off command.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Combined returns stdout and stderr joined, trimmed.
func (r RunResult) Combined() string {
	return strings.TrimSpace(r.Stdout + r.Stderr)
}

// RunCommand creates a container from the image, runs the command to
// completion, captures its output, and removes the container. A non-zero
// exit code is reported in the result, not as an error; errors mean the
// command could not be run at all.
func (c *Client) RunCommand(ctx context.Context, opts RunCommandOpts) (RunResult, error) {
	name := "cultienv-run-" + uuid.NewString()[:8]

	resp, err := c.APIClient.ContainerCreate(ctx, &container.Config{
		Image: opts.Image,
		Cmd:   opts.Cmd,
		Env:   opts.Env,
	}, nil, nil, nil, name)
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to create container from %s: %w", opts.Image, err)
	}

	defer func() {
		if err := c.APIClient.ContainerRemove(context.WithoutCancel(ctx), resp.ID, container.RemoveOptions{Force: true}); err != nil {
			logger.Debug().Err(err).Str("container", resp.ID).Msg("failed to remove run container")
		}
	}()

	if err := c.APIClient.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return RunResult{}, fmt.Errorf("failed to start container %s: %w", name, err)
	}

	statusCh, errCh := c.APIClient.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)

	var exitCode int
	select {
	case err := <-errCh:
		if err != nil {
			return RunResult{}, fmt.Errorf("failed waiting for container %s: %w", name, err)
		}
	case status := <-statusCh:
		if status.Error != nil {
			return RunResult{}, fmt.Errorf("container %s failed: %s", name, status.Error.Message)
		}
		exitCode = int(status.StatusCode)
	case <-ctx.Done():
		return RunResult{}, ctx.Err()
	}

	logs, err := c.APIClient.ContainerLogs(ctx, resp.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return RunResult{}, fmt.Errorf("failed to read logs from %s: %w", name, err)
	}
	defer logs.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, logs); err != nil {
		return RunResult{}, fmt.Errorf("failed to demux logs from %s: %w", name, err)
	}

	logger.Debug().
		Str("image", opts.Image).
		Strs("cmd", opts.Cmd).
		Int("exit_code", exitCode).
		Msg("one-off command finished")

	return RunResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}
