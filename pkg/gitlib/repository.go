package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Repository wraps a libgit2 repository handle. Handles are not safe for
// concurrent use; callers that parallelize open one handle per worker.
type Repository struct {
	repo *git2go.Repository
	path string
}

// Open opens the git repository at the given path.
func Open(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Head returns the hash the HEAD reference points at.
func (r *Repository) Head() (Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Hash{}, fmt.Errorf("get HEAD: %w", err)
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

// LookupCommit returns the commit with the given hash.
func (r *Repository) LookupCommit(hash Hash) (*Commit, error) {
	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup commit: %w", err)
	}

	return &Commit{commit: commit, repo: r}, nil
}

// LookupBlob returns the blob with the given hash.
func (r *Repository) LookupBlob(hash Hash) (*Blob, error) {
	blob, err := r.repo.LookupBlob(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup blob: %w", err)
	}

	return &Blob{blob: blob}, nil
}

// LookupTree returns the tree with the given hash.
func (r *Repository) LookupTree(hash Hash) (*Tree, error) {
	tree, err := r.repo.LookupTree(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup tree: %w", err)
	}

	return &Tree{tree: tree, repo: r}, nil
}

// HeadHashes returns the commit hashes reachable from HEAD, newest first.
// maxCount caps the result when positive.
//
// Topological order on top of time order keeps parents after their
// descendants even when branch timestamps disagree.
func (r *Repository) HeadHashes(maxCount int) ([]Hash, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}
	defer walk.Free()

	head, err := r.Head()
	if err != nil {
		return nil, err
	}

	if err := walk.Push(head.ToOid()); err != nil {
		return nil, fmt.Errorf("push HEAD to revwalk: %w", err)
	}

	walk.Sorting(git2go.SortTime | git2go.SortTopological)

	var hashes []Hash

	iterErr := walk.Iterate(func(commit *git2go.Commit) bool {
		hashes = append(hashes, HashFromOid(commit.Id()))
		commit.Free()

		return maxCount <= 0 || len(hashes) < maxCount
	})
	if iterErr != nil {
		return nil, fmt.Errorf("revwalk iterate: %w", iterErr)
	}

	return hashes, nil
}

// diffTreeToTree computes the libgit2 diff between two trees. Either side may
// be nil.
func (r *Repository) diffTreeToTree(oldTree, newTree *Tree) (*git2go.Diff, error) {
	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff options: %w", err)
	}

	var oldT, newT *git2go.Tree
	if oldTree != nil {
		oldT = oldTree.tree
	}

	if newTree != nil {
		newT = newTree.tree
	}

	diff, err := r.repo.DiffTreeToTree(oldT, newT, &opts)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	return diff, nil
}
