package dockertest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types"
)

// NotFoundError returns an error that containerd's errdefs classifies as
// not-found, matching what the daemon returns for a missing image.
func NotFoundError(ref string) error {
	return fmt.Errorf("no such image: %s: %w", ref, cerrdefs.ErrNotFound)
}

// StreamEvent renders one build stream JSON event line.
func StreamEvent(line string) string {
	b, _ := json.Marshal(map[string]string{"stream": line + "\n"})
	return string(b)
}

// ErrorEvent renders one build error JSON event line.
func ErrorEvent(msg string) string {
	b, _ := json.Marshal(map[string]any{
		"error":       msg,
		"errorDetail": map[string]string{"message": msg},
	})
	return string(b)
}

// BuildResponse assembles an ImageBuildResponse whose body is the given
// newline-delimited JSON event lines.
func BuildResponse(events ...string) types.ImageBuildResponse {
	return types.ImageBuildResponse{
		Body: io.NopCloser(strings.NewReader(strings.Join(events, "\n"))),
	}
}
