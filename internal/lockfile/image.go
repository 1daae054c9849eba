package lockfile

import (
	"context"
	"fmt"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/opencontainers/go-digest"

	"github.com/MatthewPierson90/cultionet/internal/logger"
)

// DigestResolver resolves an image reference to its registry digest.
// Tests substitute a fixture for the network implementation.
type DigestResolver interface {
	ResolveDigest(ctx context.Context, imageRef string) (digest.Digest, error)
}

// RegistryResolver resolves digests against the actual registry via a
// manifest HEAD request; no layers are pulled.
type RegistryResolver struct{}

func (RegistryResolver) ResolveDigest(ctx context.Context, imageRef string) (digest.Digest, error) {
	ref, err := name.ParseReference(imageRef)
	if err != nil {
		return "", fmt.Errorf("invalid image reference %q: %w", imageRef, err)
	}

	desc, err := remote.Head(ref, remote.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to resolve digest for %s: %w", imageRef, err)
	}

	return digest.Digest(desc.Digest.String()), nil
}

// PinBaseImage resolves and records the digest for the base image
// reference, so rebuilds use the identical image even after the tag moves.
func (lf *Lockfile) PinBaseImage(ctx context.Context, imageRef string, resolver DigestResolver) error {
	dgst, err := resolver.ResolveDigest(ctx, imageRef)
	if err != nil {
		return err
	}
	if err := dgst.Validate(); err != nil {
		return fmt.Errorf("registry returned invalid digest for %s: %w", imageRef, err)
	}

	lf.BaseImage = ImagePin{Reference: imageRef, Digest: dgst}

	logger.Info().
		Str("image", imageRef).
		Str("digest", dgst.String()).
		Msg("pinned base image")

	return nil
}
