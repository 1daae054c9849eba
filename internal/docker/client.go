// Package docker wraps the Docker SDK with the small surface the
// environment builder needs: image builds from a generated context,
// content-addressed tag bookkeeping, and one-off command execution
// inside built images for verification.
package docker

import (
	"context"
	"fmt"
	"io"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/MatthewPierson90/cultionet/internal/logger"
)

// LabelPrefix namespaces every label the builder applies to images it
// creates. Keep in sync with the Dockerfile generator's LABEL lines.
const LabelPrefix = "net.cultionet.cultienv"

// APIClient is the subset of the Docker SDK client used by this package.
// *client.Client satisfies it; tests substitute a fake.
type APIClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImageBuild(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error)
	ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error)
	ImageTag(ctx context.Context, source, target string) error
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	Close() error
}

// Client is the environment builder's Docker gateway.
type Client struct {
	// APIClient is exported so tests can swap in a fake after
	// constructing a Client directly.
	APIClient APIClient
}

// NewClient connects to the Docker daemon from the environment
// (DOCKER_HOST et al.) and verifies the connection with a ping.
func NewClient(ctx context.Context) (*Client, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, ErrDaemonNotRunning(err)
	}

	c := &Client{APIClient: cli}
	if err := c.HealthCheck(ctx); err != nil {
		cli.Close()
		return nil, err
	}
	return c, nil
}

// HealthCheck pings the daemon.
func (c *Client) HealthCheck(ctx context.Context) error {
	ping, err := c.APIClient.Ping(ctx)
	if err != nil {
		return ErrDaemonNotRunning(err)
	}
	logger.Debug().Str("api_version", ping.APIVersion).Msg("docker daemon reachable")
	return nil
}

// Close closes the underlying Docker connection.
func (c *Client) Close() error {
	return c.APIClient.Close()
}

// ImageExists reports whether an image with the given reference is
// present in the local daemon.
func (c *Client) ImageExists(ctx context.Context, imageRef string) (bool, error) {
	_, _, err := c.APIClient.ImageInspectWithRaw(ctx, imageRef)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect image %s: %w", imageRef, err)
	}
	return true, nil
}

// ImageLabels returns the labels of a local image.
func (c *Client) ImageLabels(ctx context.Context, imageRef string) (map[string]string, error) {
	info, _, err := c.APIClient.ImageInspectWithRaw(ctx, imageRef)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect image %s: %w", imageRef, err)
	}
	if info.Config == nil {
		return nil, nil
	}
	return info.Config.Labels, nil
}

// TagImage applies an additional tag to an existing image.
func (c *Client) TagImage(ctx context.Context, source, target string) error {
	if err := c.APIClient.ImageTag(ctx, source, target); err != nil {
		return fmt.Errorf("failed to tag %s as %s: %w", source, target, err)
	}
	logger.Debug().Str("source", source).Str("target", target).Msg("image tagged")
	return nil
}

// ImageRef derives the content-addressed reference for a project's
// environment image: "<project>:env-<hash>". Rebuilding an unchanged
// Dockerfile lands on the same reference, which is how unchanged builds
// are skipped.
func ImageRef(project, contentHash string) string {
	return fmt.Sprintf("%s:env-%s", project, contentHash)
}
