// Package model defines the change-set aggregate produced by history
// extraction: per-commit structural diffs at file, class and method
// granularity, plus the repository snapshot they belong to.
package model

import "time"

// Op classifies a structural change. Every diff carries exactly one Op.
type Op uint8

const (
	// OpAdded marks an entity present only in the newer version.
	OpAdded Op = iota + 1
	// OpRemoved marks an entity present only in the older version.
	OpRemoved
	// OpModified marks an entity present in both versions with changed content.
	OpModified
	// OpRenamed marks a file whose path changed between versions.
	OpRenamed
)

// String returns the lowercase tag for the operation.
func (op Op) String() string {
	switch op {
	case OpAdded:
		return "added"
	case OpRemoved:
		return "removed"
	case OpModified:
		return "modified"
	case OpRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Diff is one classified change record. Implementations are value types and
// immutable once created.
type Diff interface {
	// Operation returns the single operation tag of this diff.
	Operation() Op
	// TouchedPath returns the file path this diff contributes to downstream
	// per-file aggregation. For renames it is the new path.
	TouchedPath() string
}

// FileDiff records a file-level change. PathA is the old path, PathB the new
// one; both are set only for renames.
type FileDiff struct {
	PathA string
	PathB string
	Op    Op
}

// Operation returns the operation tag.
func (d FileDiff) Operation() Op { return d.Op }

// TouchedPath returns the new path when present, the old path otherwise.
func (d FileDiff) TouchedPath() string {
	if d.PathB != "" {
		return d.PathB
	}

	return d.PathA
}

// ClassDiff records a class-level change inside one file. ClassA and ClassB
// hold the dot-joined class path on each side; identity is name based.
type ClassDiff struct {
	Path   string
	ClassA string
	ClassB string
	Op     Op
}

// Operation returns the operation tag.
func (d ClassDiff) Operation() Op { return d.Op }

// TouchedPath returns the containing file path.
func (d ClassDiff) TouchedPath() string { return d.Path }

// Name returns the class path regardless of which side it was observed on.
func (d ClassDiff) Name() string {
	if d.ClassB != "" {
		return d.ClassB
	}

	return d.ClassA
}

// MethodDiff records a method-level change. Identity is the (class path,
// method name) pair; parameter signatures are deliberately ignored, so
// overloads sharing a name collapse to one identity.
type MethodDiff struct {
	Path    string
	Class   string
	MethodA string
	MethodB string
	Op      Op
}

// Operation returns the operation tag.
func (d MethodDiff) Operation() Op { return d.Op }

// TouchedPath returns the containing file path.
func (d MethodDiff) TouchedPath() string { return d.Path }

// Name returns the method name regardless of which side it was observed on.
func (d MethodDiff) Name() string {
	if d.MethodB != "" {
		return d.MethodB
	}

	return d.MethodA
}

// Commit is one extracted history entry. It is created once by the extraction
// pipeline and immutable afterward. Commits contributing zero diffs are never
// materialized.
type Commit struct {
	ID        string
	Message   string
	Author    string
	Timestamp time.Time
	Diffs     []Diff
}

// TouchedPaths returns the deduplicated set of file paths this commit's diffs
// contribute to.
func (c *Commit) TouchedPaths() map[string]struct{} {
	paths := make(map[string]struct{}, len(c.Diffs))
	for _, d := range c.Diffs {
		paths[d.TouchedPath()] = struct{}{}
	}

	return paths
}

// Repository is the assembled extraction result: commits in chronologically
// ascending order plus the snapshot context the risk pass needs.
type Repository struct {
	Commits     []*Commit
	CreatedAt   time.Time
	EvaluatedAt time.Time
	// Files holds the paths present in the newest snapshot, in scope for
	// analysis. Risk scores are seeded from this set.
	Files map[string]struct{}
}
