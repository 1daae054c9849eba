// Package dockerfile renders the provisioning plan as a Dockerfile and
// assembles the tar build context the Docker engine consumes.
package dockerfile

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"text/template"

	"github.com/MatthewPierson90/cultionet/internal/plan"
)

// LabelPrefix namespaces the image labels cultienv applies.
const LabelPrefix = "net.cultionet.cultienv"

// GenerateContext holds the data for Dockerfile template rendering
type GenerateContext struct {
	BaseImage   string
	LabelPrefix string
	Project     string
	Toolkit     string
	Triple      string
	Entrypoint  string
	Steps       []plan.Step
}

// Generator creates Dockerfiles from a provisioning plan
type Generator struct {
	plan       *plan.Plan
	project    string
	entrypoint string
}

// NewGenerator creates a new Dockerfile generator for a plan.
// entrypoint is the console command the image runs by default.
func NewGenerator(p *plan.Plan, project, entrypoint string) *Generator {
	if entrypoint == "" {
		entrypoint = "bash"
	}
	return &Generator{
		plan:       p,
		project:    project,
		entrypoint: entrypoint,
	}
}

// Generate renders the Dockerfile for the plan.
func (g *Generator) Generate() ([]byte, error) {
	ctx := GenerateContext{
		BaseImage:   g.plan.Resolution.BaseImage,
		LabelPrefix: LabelPrefix,
		Project:     g.project,
		Toolkit:     g.plan.Resolution.Toolkit,
		Triple:      g.plan.Resolution.Triple(),
		Entrypoint:  g.entrypoint,
		Steps:       g.plan.Steps,
	}

	tmpl, err := template.New("Dockerfile").Parse(DockerfileTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Dockerfile template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, fmt.Errorf("failed to render Dockerfile template: %w", err)
	}

	return buf.Bytes(), nil
}

// BuildContext creates a tar archive containing the rendered Dockerfile.
func (g *Generator) BuildContext() (io.Reader, error) {
	dockerfile, err := g.Generate()
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)

	if err := addFileToTar(tw, "Dockerfile", dockerfile); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}

	return buf, nil
}

// ContentHash computes a SHA-256 hash of the rendered Dockerfile bytes,
// returning a 12-character hex prefix. Identical configuration and pins
// render identical bytes, so the hash is a content-addressed identifier
// for detecting when a rebuild is needed.
func ContentHash(dockerfile []byte) string {
	sum := sha256.Sum256(dockerfile)
	return hex.EncodeToString(sum[:])[:12]
}

// addFileToTar adds a file to a tar archive
func addFileToTar(tw *tar.Writer, name string, content []byte) error {
	header := &tar.Header{
		Name: name,
		Mode: 0644,
		Size: int64(len(content)),
	}

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}

	if _, err := tw.Write(content); err != nil {
		return fmt.Errorf("failed to write tar content for %s: %w", name, err)
	}

	return nil
}
