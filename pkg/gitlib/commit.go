package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Commit wraps a libgit2 commit.
type Commit struct {
	commit *git2go.Commit
	repo   *Repository
}

// Hash returns the commit hash.
func (c *Commit) Hash() Hash {
	return HashFromOid(c.commit.Id())
}

// Message returns the full commit message.
func (c *Commit) Message() string {
	return c.commit.Message()
}

// Author returns the author signature.
func (c *Commit) Author() Signature {
	sig := c.commit.Author()

	return Signature{Name: sig.Name, Email: sig.Email, When: sig.When}
}

// Committer returns the committer signature.
func (c *Commit) Committer() Signature {
	sig := c.commit.Committer()

	return Signature{Name: sig.Name, Email: sig.Email, When: sig.When}
}

// NumParents returns the number of parent commits.
func (c *Commit) NumParents() int {
	return int(c.commit.ParentCount())
}

// ParentHash returns the hash of the nth parent.
func (c *Commit) ParentHash(n int) Hash {
	return HashFromOid(c.commit.ParentId(uint(n)))
}

// ParentHashes returns all parent hashes in order.
func (c *Commit) ParentHashes() []Hash {
	parents := make([]Hash, c.NumParents())
	for i := range parents {
		parents[i] = c.ParentHash(i)
	}

	return parents
}

// Tree returns the tree of this commit's snapshot.
func (c *Commit) Tree() (*Tree, error) {
	tree, err := c.commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get commit tree: %w", err)
	}

	return &Tree{tree: tree, repo: c.repo}, nil
}

// Free releases the commit resources.
func (c *Commit) Free() {
	if c.commit != nil {
		c.commit.Free()
		c.commit = nil
	}
}
