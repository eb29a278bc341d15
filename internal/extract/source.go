package extract

import (
	"time"

	"github.com/faultline-sh/faultline/pkg/gitlib"
)

// DeltaKind is the tree-delta classification the pipeline consumes.
type DeltaKind uint8

const (
	// DeltaNew is a file absent from the parent snapshot.
	DeltaNew DeltaKind = iota + 1
	// DeltaDeleted is a file absent from the child snapshot.
	DeltaDeleted
	// DeltaRenamed is a file whose path changed; content may have changed too.
	DeltaRenamed
	// DeltaModified is a file changed in place.
	DeltaModified
)

// Delta is one file change between a commit and one of its parents.
type Delta struct {
	Kind    DeltaKind
	OldPath string
	NewPath string
	OldBlob gitlib.Hash
	NewBlob gitlib.Hash
}

// CommitInfo is the metadata of one commit.
type CommitInfo struct {
	Hash      gitlib.Hash
	Message   string
	Author    string
	Timestamp time.Time
	Parents   []gitlib.Hash
}

// SnapshotFile is one file of a commit snapshot.
type SnapshotFile struct {
	Path string
	Blob gitlib.Hash
}

// CommitSource is the read-only view of a version-control history the
// pipeline extracts from. Implementations need not be safe for concurrent
// use: each worker obtains its own source from a Factory.
type CommitSource interface {
	// CommitHashes lists the history newest first, capped at maxCount when
	// positive.
	CommitHashes(maxCount int) ([]gitlib.Hash, error)
	// Commit returns the metadata of one commit.
	Commit(hash gitlib.Hash) (CommitInfo, error)
	// ParentDelta enumerates the tree delta between parent and commit.
	ParentDelta(hash, parent gitlib.Hash) ([]Delta, error)
	// Snapshot lists every file in the commit's tree.
	Snapshot(hash gitlib.Hash) ([]SnapshotFile, error)
	// BlobText returns a blob's decoded text content. Binary or undecodable
	// blobs return an error.
	BlobText(hash gitlib.Hash) (string, error)
	// Close releases the source.
	Close() error
}

// Factory opens an independent CommitSource. The concurrent pipeline calls it
// once per worker so no handle is shared across goroutines.
type Factory func() (CommitSource, error)
