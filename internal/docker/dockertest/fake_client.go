// Package dockertest provides a function-field fake for the docker
// package's APIClient interface. Each method the docker package calls
// has a corresponding Fn field: set it to script behavior, leave it nil
// to fail loud on unexpected calls. Every invocation is recorded in
// Calls for assertion.
package dockertest

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// FakeAPIClient implements docker.APIClient with scriptable methods.
type FakeAPIClient struct {
	mu    sync.Mutex
	Calls []string

	PingFn                func(ctx context.Context) (types.Ping, error)
	ImageBuildFn          func(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error)
	ImageInspectWithRawFn func(ctx context.Context, imageID string) (types.ImageInspect, []byte, error)
	ImageTagFn            func(ctx context.Context, source, target string) error
	ContainerCreateFn     func(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStartFn      func(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWaitFn       func(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogsFn       func(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemoveFn     func(ctx context.Context, containerID string, options container.RemoveOptions) error
	CloseFn               func() error
}

func (f *FakeAPIClient) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, method)
}

// Called reports whether the named method was invoked.
func (f *FakeAPIClient) Called(method string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c == method {
			return true
		}
	}
	return false
}

func (f *FakeAPIClient) Ping(ctx context.Context) (types.Ping, error) {
	f.record("Ping")
	if f.PingFn == nil {
		return types.Ping{APIVersion: "1.44"}, nil
	}
	return f.PingFn(ctx)
}

func (f *FakeAPIClient) ImageBuild(ctx context.Context, buildContext io.Reader, options types.ImageBuildOptions) (types.ImageBuildResponse, error) {
	f.record("ImageBuild")
	if f.ImageBuildFn == nil {
		panic(notImplemented("ImageBuild"))
	}
	return f.ImageBuildFn(ctx, buildContext, options)
}

func (f *FakeAPIClient) ImageInspectWithRaw(ctx context.Context, imageID string) (types.ImageInspect, []byte, error) {
	f.record("ImageInspectWithRaw")
	if f.ImageInspectWithRawFn == nil {
		panic(notImplemented("ImageInspectWithRaw"))
	}
	return f.ImageInspectWithRawFn(ctx, imageID)
}

func (f *FakeAPIClient) ImageTag(ctx context.Context, source, target string) error {
	f.record("ImageTag")
	if f.ImageTagFn == nil {
		panic(notImplemented("ImageTag"))
	}
	return f.ImageTagFn(ctx, source, target)
}

func (f *FakeAPIClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error) {
	f.record("ContainerCreate")
	if f.ContainerCreateFn == nil {
		panic(notImplemented("ContainerCreate"))
	}
	return f.ContainerCreateFn(ctx, config, hostConfig, networkingConfig, platform, containerName)
}

func (f *FakeAPIClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	f.record("ContainerStart")
	if f.ContainerStartFn == nil {
		panic(notImplemented("ContainerStart"))
	}
	return f.ContainerStartFn(ctx, containerID, options)
}

func (f *FakeAPIClient) ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	f.record("ContainerWait")
	if f.ContainerWaitFn == nil {
		panic(notImplemented("ContainerWait"))
	}
	return f.ContainerWaitFn(ctx, containerID, condition)
}

func (f *FakeAPIClient) ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error) {
	f.record("ContainerLogs")
	if f.ContainerLogsFn == nil {
		panic(notImplemented("ContainerLogs"))
	}
	return f.ContainerLogsFn(ctx, containerID, options)
}

func (f *FakeAPIClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	f.record("ContainerRemove")
	if f.ContainerRemoveFn == nil {
		panic(notImplemented("ContainerRemove"))
	}
	return f.ContainerRemoveFn(ctx, containerID, options)
}

func (f *FakeAPIClient) Close() error {
	f.record("Close")
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

func notImplemented(method string) string {
	return fmt.Sprintf("dockertest: not implemented: %s", method)
}
