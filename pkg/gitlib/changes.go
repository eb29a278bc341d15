package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Action is the kind of change a tree delta describes.
type Action int

const (
	// Insert indicates a new file.
	Insert Action = iota
	// Delete indicates a removed file.
	Delete
	// Modify indicates a file changed in place.
	Modify
	// Rename indicates a file whose path changed. From and To may carry
	// different blob hashes when the content changed too.
	Rename
)

// ChangeEntry is one side of a change.
type ChangeEntry struct {
	Path string
	Hash Hash
}

// Change is a single file change between two trees.
type Change struct {
	Action Action
	From   ChangeEntry
	To     ChangeEntry
}

// Changes is a collection of tree changes.
type Changes []Change

// TreeDelta computes the file changes between two trees, with libgit2 rename
// detection enabled. Equal tree hashes short-circuit to no changes.
func (r *Repository) TreeDelta(oldTree, newTree *Tree) (Changes, error) {
	if oldTree != nil && newTree != nil && oldTree.Hash() == newTree.Hash() {
		return Changes{}, nil
	}

	diff, err := r.diffTreeToTree(oldTree, newTree)
	if err != nil {
		return nil, err
	}
	defer func() { _ = diff.Free() }()

	findOpts, err := git2go.DefaultDiffFindOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff find options: %w", err)
	}

	findOpts.Flags = git2go.DiffFindRenames

	if err := diff.FindSimilar(&findOpts); err != nil {
		return nil, fmt.Errorf("detect renames: %w", err)
	}

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("get num deltas: %w", err)
	}

	changes := make(Changes, 0, numDeltas)

	for i := range numDeltas {
		delta, deltaErr := diff.Delta(i)
		if deltaErr != nil {
			continue
		}

		change, ok := changeFromDelta(delta)
		if ok {
			changes = append(changes, change)
		}
	}

	return changes, nil
}

// changeFromDelta maps a libgit2 delta onto a Change, dropping delta kinds
// that carry no content change.
func changeFromDelta(delta git2go.DiffDelta) (Change, bool) {
	from := ChangeEntry{Path: delta.OldFile.Path, Hash: HashFromOid(delta.OldFile.Oid)}
	to := ChangeEntry{Path: delta.NewFile.Path, Hash: HashFromOid(delta.NewFile.Oid)}

	switch delta.Status {
	case git2go.DeltaAdded:
		return Change{Action: Insert, To: to}, true
	case git2go.DeltaDeleted:
		return Change{Action: Delete, From: from}, true
	case git2go.DeltaRenamed:
		return Change{Action: Rename, From: from, To: to}, true
	case git2go.DeltaModified, git2go.DeltaCopied:
		return Change{Action: Modify, From: from, To: to}, true
	default:
		return Change{}, false
	}
}

// InitialChanges expands an initial commit's tree into pure insertions.
func InitialChanges(tree *Tree) (Changes, error) {
	if tree == nil {
		return nil, nil
	}

	files, err := tree.Files()
	if err != nil {
		return nil, err
	}

	changes := make(Changes, 0, len(files))
	for _, f := range files {
		changes = append(changes, Change{
			Action: Insert,
			To:     ChangeEntry{Path: f.Path, Hash: f.Hash},
		})
	}

	return changes, nil
}
