package lockfile

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v6/plumbing"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/logger"
)

func init() {
	logger.Init(false)
}

const (
	mainSHA = "1111111111111111111111111111111111111111"
	devSHA  = "2222222222222222222222222222222222222222"
)

// fakeLister serves a fixed ref set for every repository.
type fakeLister struct {
	refs []*plumbing.Reference
	err  error
}

func (f fakeLister) ListRefs(string) ([]*plumbing.Reference, error) {
	return f.refs, f.err
}

func defaultRefs() []*plumbing.Reference {
	return []*plumbing.Reference{
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main")),
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), plumbing.NewHash(mainSHA)),
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("dev"), plumbing.NewHash(devSHA)),
	}
}

func TestPinSourcesDefaultBranch(t *testing.T) {
	lf := New()
	sources := []config.SourceConfig{
		{Name: "geowombat", Repo: "https://github.com/jgrss/geowombat.git"},
	}

	err := lf.PinSources(sources, fakeLister{refs: defaultRefs()})
	require.NoError(t, err)

	pin, ok := lf.Sources["geowombat"]
	require.True(t, ok)
	assert.Equal(t, "main", pin.Ref)
	assert.Equal(t, mainSHA, pin.Revision)
}

func TestPinSourcesNamedBranch(t *testing.T) {
	lf := New()
	sources := []config.SourceConfig{
		{Name: "tsaug", Repo: "https://github.com/jgrss/tsaug.git", Ref: "dev"},
	}

	err := lf.PinSources(sources, fakeLister{refs: defaultRefs()})
	require.NoError(t, err)
	assert.Equal(t, devSHA, lf.Sources["tsaug"].Revision)
}

func TestPinSourcesMissingBranch(t *testing.T) {
	lf := New()
	sources := []config.SourceConfig{
		{Name: "tsaug", Repo: "https://github.com/jgrss/tsaug.git", Ref: "nope"},
	}

	err := lf.PinSources(sources, fakeLister{refs: defaultRefs()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestPinSourcesFailFast(t *testing.T) {
	lf := New()
	sources := []config.SourceConfig{
		{Name: "a", Repo: "https://example.com/a.git"},
		{Name: "b", Repo: "https://example.com/b.git"},
	}

	err := lf.PinSources(sources, fakeLister{err: fmt.Errorf("network down")})
	require.Error(t, err)
	assert.Empty(t, lf.Sources, "no partial pins should be recorded")
}

func TestApplyPins(t *testing.T) {
	lf := New()
	lf.Sources["geowombat"] = SourcePin{Revision: mainSHA}

	sources := []config.SourceConfig{
		{Name: "geowombat", Repo: "https://github.com/jgrss/geowombat.git", Ref: "main"},
		{Name: "unpinned", Repo: "https://example.com/x.git"},
	}

	pinned := lf.ApplyPins(sources)
	assert.Equal(t, mainSHA, pinned[0].Pin)
	assert.Empty(t, pinned[1].Pin)
	assert.Empty(t, sources[0].Pin, "input slice must not be mutated")
}

type fakeDigestResolver struct {
	digest digest.Digest
	err    error
}

func (f fakeDigestResolver) ResolveDigest(context.Context, string) (digest.Digest, error) {
	return f.digest, f.err
}

func TestPinBaseImage(t *testing.T) {
	lf := New()
	want := digest.Digest("sha256:9f2c1d42347dcb1a24a4766f29fbe6eb9a09c3d2b1e0ee22dc47a5a3dd44b874")

	err := lf.PinBaseImage(context.Background(), "nvidia/cuda:11.3.1-cudnn8-devel-ubuntu20.04",
		fakeDigestResolver{digest: want})
	require.NoError(t, err)

	assert.Equal(t, want, lf.BaseImage.Digest)
	assert.Equal(t, "nvidia/cuda:11.3.1-cudnn8-devel-ubuntu20.04@"+want.String(), lf.BaseImage.Pinned())
}

func TestPinBaseImageInvalidDigest(t *testing.T) {
	lf := New()
	err := lf.PinBaseImage(context.Background(), "x:y", fakeDigestResolver{digest: "not-a-digest"})
	require.Error(t, err)
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cultienv.lock")

	lf := New()
	lf.BaseImage = ImagePin{
		Reference: "nvidia/cuda:11.3.1-cudnn8-devel-ubuntu20.04",
		Digest:    "sha256:9f2c1d42347dcb1a24a4766f29fbe6eb9a09c3d2b1e0ee22dc47a5a3dd44b874",
	}
	lf.Sources["geowombat"] = SourcePin{
		Repo:     "https://github.com/jgrss/geowombat.git",
		Ref:      "main",
		Revision: mainSHA,
	}
	lf.Natives["libgdal-dev"] = "3.3.2"

	require.NoError(t, lf.Write(path))
	require.True(t, Exists(path))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, lf.BaseImage, got.BaseImage)
	assert.Equal(t, lf.Sources, got.Sources)
	assert.Equal(t, lf.Natives, got.Natives)
}

func TestReadRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cultienv.lock")

	lf := New()
	lf.Version = 99
	require.NoError(t, lf.Write(path))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported lockfile version")
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.lock"))
	require.Error(t, err)
	assert.False(t, Exists(filepath.Join(t.TempDir(), "absent.lock")))
}
