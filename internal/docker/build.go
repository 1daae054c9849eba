package docker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/go-units"

	"github.com/MatthewPierson90/cultionet/internal/logger"
)

// BuildProgressFunc receives one trimmed line of build output per event.
type BuildProgressFunc func(line string)

// BuildImageOpts contains options for building an environment image.
type BuildImageOpts struct {
	Tags           []string          // -t, --tag (multiple allowed)
	Labels         map[string]string // merged into the build
	NoCache        bool              // --no-cache
	Pull           bool              // --pull (always attempt to pull base)
	SuppressOutput bool              // -q
	OnProgress     BuildProgressFunc // optional per-line callback
}

// BuildImage builds an image from a tar build context and streams the
// daemon's response. The response is a JSON event stream; an error event
// anywhere in the stream fails the build even though the HTTP call
// succeeded.
func (c *Client) BuildImage(ctx context.Context, buildContext io.Reader, opts BuildImageOpts) error {
	options := types.ImageBuildOptions{
		Tags:           opts.Tags,
		Dockerfile:     "Dockerfile",
		Remove:         true,
		NoCache:        opts.NoCache,
		PullParent:     opts.Pull,
		Labels:         opts.Labels,
		SuppressOutput: opts.SuppressOutput,
	}

	resp, err := c.APIClient.ImageBuild(ctx, buildContext, options)
	if err != nil {
		return ErrBuildFailed(err)
	}
	defer resp.Body.Close()

	if err := c.processBuildOutput(resp.Body, opts.OnProgress); err != nil {
		return err
	}

	c.logImageSize(ctx, opts.Tags)
	return nil
}

// EnsureImage builds the image only when its content-addressed reference
// is not already present. Force rebuilds regardless. The returned bool
// reports whether a build ran.
func (c *Client) EnsureImage(ctx context.Context, imageRef string, force bool, buildContext io.Reader, opts BuildImageOpts) (bool, error) {
	if !force {
		exists, err := c.ImageExists(ctx, imageRef)
		if err != nil {
			return false, err
		}
		if exists {
			logger.Info().Str("image", imageRef).Msg("image up to date, skipping build")
			return false, nil
		}
	}

	opts.Tags = append([]string{imageRef}, opts.Tags...)
	if err := c.BuildImage(ctx, buildContext, opts); err != nil {
		return false, err
	}
	return true, nil
}

// buildEvent is one JSON event in the daemon's build response stream.
type buildEvent struct {
	Stream      string `json:"stream"`
	Error       string `json:"error"`
	ErrorDetail struct {
		Message string `json:"message"`
	} `json:"errorDetail"`
}

func (c *Client) processBuildOutput(reader io.Reader, onProgress BuildProgressFunc) error {
	scanner := bufio.NewScanner(reader)
	// Build output lines can exceed the default 64K token limit when a
	// pip install dumps a long resolution trace.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var parseErrors int
	for scanner.Scan() {
		var event buildEvent

		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			parseErrors++
			logger.Debug().
				Err(err).
				Str("raw", string(scanner.Bytes())).
				Msg("failed to parse build output event")
			if parseErrors > 10 {
				return fmt.Errorf("build output stream appears corrupted: %d consecutive parse failures", parseErrors)
			}
			continue
		}
		parseErrors = 0

		if event.Error != "" {
			return ErrBuildFailed(fmt.Errorf("%s", event.Error))
		}
		if event.ErrorDetail.Message != "" {
			return ErrBuildFailed(fmt.Errorf("%s", event.ErrorDetail.Message))
		}

		if line := strings.TrimSpace(event.Stream); line != "" {
			logger.Debug().Msg(line)
			if onProgress != nil {
				onProgress(line)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading build output: %w", err)
	}

	logger.Debug().Msg("image build complete")
	return nil
}

// logImageSize reports the size of the first built tag. Informational
// only; inspection failures are swallowed.
func (c *Client) logImageSize(ctx context.Context, tags []string) {
	if len(tags) == 0 {
		return
	}
	info, _, err := c.APIClient.ImageInspectWithRaw(ctx, tags[0])
	if err != nil {
		return
	}
	logger.Info().
		Str("image", tags[0]).
		Str("size", units.HumanSize(float64(info.Size))).
		Msg("image built")
}
