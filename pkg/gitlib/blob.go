package gitlib

import (
	"bytes"
	"errors"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrBinary is returned when a blob holds binary rather than text content.
var ErrBinary = errors.New("binary blob")

// binarySniffLen bounds the NUL scan, matching git's own heuristic window.
const binarySniffLen = 8000

// Blob wraps a libgit2 blob.
type Blob struct {
	blob *git2go.Blob
}

// Hash returns the blob hash.
func (b *Blob) Hash() Hash {
	return HashFromOid(b.blob.Id())
}

// Size returns the blob size in bytes.
func (b *Blob) Size() int64 {
	return b.blob.Size()
}

// Contents returns the raw blob contents.
func (b *Blob) Contents() []byte {
	return b.blob.Contents()
}

// Text returns the blob contents decoded as text, or ErrBinary when the
// content looks binary.
func (b *Blob) Text() (string, error) {
	data := b.Contents()

	window := data
	if len(window) > binarySniffLen {
		window = window[:binarySniffLen]
	}

	if bytes.IndexByte(window, 0) >= 0 {
		return "", ErrBinary
	}

	return string(data), nil
}

// Free releases the blob resources.
func (b *Blob) Free() {
	if b.blob != nil {
		b.blob.Free()
		b.blob = nil
	}
}
