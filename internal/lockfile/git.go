package lockfile

import (
	"fmt"

	gogit "github.com/go-git/go-git/v6"
	gitconfig "github.com/go-git/go-git/v6/config"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/storage/memory"

	"github.com/MatthewPierson90/cultionet/internal/config"
	"github.com/MatthewPierson90/cultionet/internal/logger"
)

// RefLister resolves remote references for a repository URL.
// The default implementation queries the remote over the network; tests
// substitute a fixture.
type RefLister interface {
	ListRefs(repoURL string) ([]*plumbing.Reference, error)
}

// RemoteLister lists references from the actual remote (git ls-remote).
type RemoteLister struct{}

func (RemoteLister) ListRefs(repoURL string) ([]*plumbing.Reference, error) {
	remote := gogit.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{repoURL},
	})
	refs, err := remote.List(&gogit.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list refs for %s: %w", repoURL, err)
	}
	return refs, nil
}

// PinSources resolves each source's branch tip to an immutable commit SHA
// and records it. A source that already names a ref pins that ref's tip;
// otherwise the remote HEAD target is used. Resolution is fail-fast: one
// unreachable source aborts the whole pin operation.
func (lf *Lockfile) PinSources(sources []config.SourceConfig, lister RefLister) error {
	for _, src := range sources {
		pin, err := pinSource(src, lister)
		if err != nil {
			return err
		}
		lf.Sources[src.Name] = pin

		logger.Info().
			Str("source", src.Name).
			Str("ref", pin.Ref).
			Str("revision", pin.Revision).
			Msg("pinned source")
	}
	return nil
}

func pinSource(src config.SourceConfig, lister RefLister) (SourcePin, error) {
	refs, err := lister.ListRefs(src.Repo)
	if err != nil {
		return SourcePin{}, err
	}

	byName := map[plumbing.ReferenceName]*plumbing.Reference{}
	for _, ref := range refs {
		byName[ref.Name()] = ref
	}

	want := src.Ref
	if want == "" {
		// Follow the remote HEAD to its branch target
		head, ok := byName[plumbing.HEAD]
		if !ok {
			return SourcePin{}, fmt.Errorf("source %s: remote has no HEAD", src.Name)
		}
		if head.Type() == plumbing.SymbolicReference {
			target, ok := byName[head.Target()]
			if !ok {
				return SourcePin{}, fmt.Errorf("source %s: HEAD targets unknown ref %s", src.Name, head.Target())
			}
			return SourcePin{Repo: src.Repo, Ref: target.Name().Short(), Revision: target.Hash().String()}, nil
		}
		return SourcePin{Repo: src.Repo, Ref: "HEAD", Revision: head.Hash().String()}, nil
	}

	branchRef, ok := byName[plumbing.NewBranchReferenceName(want)]
	if !ok {
		return SourcePin{}, fmt.Errorf("source %s: branch %q not found on remote", src.Name, want)
	}
	return SourcePin{Repo: src.Repo, Ref: want, Revision: branchRef.Hash().String()}, nil
}

// ApplyPins copies resolved revisions onto the matching config sources so
// the plan renders immutable revisions instead of branch refs.
func (lf *Lockfile) ApplyPins(sources []config.SourceConfig) []config.SourceConfig {
	pinned := make([]config.SourceConfig, len(sources))
	copy(pinned, sources)
	for i, src := range pinned {
		if pin, ok := lf.Sources[src.Name]; ok && pin.Revision != "" {
			pinned[i].Pin = pin.Revision
		}
	}
	return pinned
}
