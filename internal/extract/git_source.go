package extract

import (
	"fmt"

	"github.com/faultline-sh/faultline/pkg/gitlib"
)

// gitSource adapts a gitlib repository handle to the CommitSource contract.
type gitSource struct {
	repo *gitlib.Repository
}

// GitFactory returns a Factory that opens the repository at path. Every call
// yields an independent libgit2 handle, so sources from one factory can be
// used on different workers.
func GitFactory(path string) Factory {
	return func() (CommitSource, error) {
		repo, err := gitlib.Open(path)
		if err != nil {
			return nil, err
		}

		return &gitSource{repo: repo}, nil
	}
}

func (s *gitSource) CommitHashes(maxCount int) ([]gitlib.Hash, error) {
	return s.repo.HeadHashes(maxCount)
}

func (s *gitSource) Commit(hash gitlib.Hash) (CommitInfo, error) {
	commit, err := s.repo.LookupCommit(hash)
	if err != nil {
		return CommitInfo{}, err
	}
	defer commit.Free()

	return CommitInfo{
		Hash:      hash,
		Message:   commit.Message(),
		Author:    commit.Author().Email,
		Timestamp: commit.Committer().When,
		Parents:   commit.ParentHashes(),
	}, nil
}

func (s *gitSource) ParentDelta(hash, parent gitlib.Hash) ([]Delta, error) {
	oldTree, err := s.commitTree(parent)
	if err != nil {
		return nil, err
	}
	defer oldTree.Free()

	newTree, err := s.commitTree(hash)
	if err != nil {
		return nil, err
	}
	defer newTree.Free()

	changes, err := s.repo.TreeDelta(oldTree, newTree)
	if err != nil {
		return nil, err
	}

	deltas := make([]Delta, 0, len(changes))
	for _, change := range changes {
		deltas = append(deltas, deltaFromChange(change))
	}

	return deltas, nil
}

func (s *gitSource) Snapshot(hash gitlib.Hash) ([]SnapshotFile, error) {
	tree, err := s.commitTree(hash)
	if err != nil {
		return nil, err
	}
	defer tree.Free()

	files, err := tree.Files()
	if err != nil {
		return nil, err
	}

	snapshot := make([]SnapshotFile, 0, len(files))
	for _, f := range files {
		snapshot = append(snapshot, SnapshotFile{Path: f.Path, Blob: f.Hash})
	}

	return snapshot, nil
}

func (s *gitSource) BlobText(hash gitlib.Hash) (string, error) {
	blob, err := s.repo.LookupBlob(hash)
	if err != nil {
		return "", err
	}
	defer blob.Free()

	return blob.Text()
}

func (s *gitSource) Close() error {
	s.repo.Free()

	return nil
}

func (s *gitSource) commitTree(hash gitlib.Hash) (*gitlib.Tree, error) {
	commit, err := s.repo.LookupCommit(hash)
	if err != nil {
		return nil, err
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("tree of %s: %w", hash, err)
	}

	return tree, nil
}

// deltaFromChange maps a gitlib change onto the pipeline's delta kinds.
func deltaFromChange(change gitlib.Change) Delta {
	delta := Delta{
		OldPath: change.From.Path,
		NewPath: change.To.Path,
		OldBlob: change.From.Hash,
		NewBlob: change.To.Hash,
	}

	switch change.Action {
	case gitlib.Insert:
		delta.Kind = DeltaNew
	case gitlib.Delete:
		delta.Kind = DeltaDeleted
	case gitlib.Rename:
		delta.Kind = DeltaRenamed
	case gitlib.Modify:
		delta.Kind = DeltaModified
	}

	return delta
}
