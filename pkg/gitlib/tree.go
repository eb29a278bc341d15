package gitlib

import (
	git2go "github.com/libgit2/git2go/v34"
)

// Tree wraps a libgit2 tree.
type Tree struct {
	tree *git2go.Tree
	repo *Repository
}

// Hash returns the tree hash.
func (t *Tree) Hash() Hash {
	return HashFromOid(t.tree.Id())
}

// Free releases the tree resources.
func (t *Tree) Free() {
	if t.tree != nil {
		t.tree.Free()
		t.tree = nil
	}
}

// TreeFile is one blob reachable from a tree, with its repository-relative
// path.
type TreeFile struct {
	Path string
	Hash Hash
}

// Files returns all blobs in the tree, walking subtrees recursively in entry
// order.
func (t *Tree) Files() ([]TreeFile, error) {
	var files []TreeFile

	err := walkTree(t.repo, t.tree, "", func(path string, entry *git2go.TreeEntry) {
		files = append(files, TreeFile{Path: path, Hash: HashFromOid(entry.Id)})
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// walkTree calls cb for every blob entry under tree, depth first.
func walkTree(repo *Repository, tree *git2go.Tree, prefix string, cb func(path string, entry *git2go.TreeEntry)) error {
	count := tree.EntryCount()

	for i := uint64(0); i < count; i++ {
		entry := tree.EntryByIndex(i)
		if entry == nil {
			continue
		}

		path := entry.Name
		if prefix != "" {
			path = prefix + "/" + path
		}

		switch entry.Type {
		case git2go.ObjectBlob:
			cb(path, entry)
		case git2go.ObjectTree:
			subtree, err := repo.repo.LookupTree(entry.Id)
			if err != nil {
				continue // Skip subtrees we cannot look up.
			}

			walkErr := walkTree(repo, subtree, path, cb)
			subtree.Free()

			if walkErr != nil {
				return walkErr
			}
		default:
			// Submodules and other entry kinds carry no file content.
		}
	}

	return nil
}
