package chunkstore

import (
	"errors"
	"fmt"

	"github.com/latticeview/latticeview/lattice"
)

var (
	// ErrNotComputable is returned by a Classifier for points where no label can be
	// computed.  Such points are recorded as lattice.Unclassifiable.
	ErrNotComputable = errors.New("point is not computable")

	// ErrChunkNotFound is returned when no record exists for a chunk.
	ErrChunkNotFound = errors.New("chunk not found")

	// ErrCorruptChunk is returned when a chunk record exists but cannot be decoded or
	// breaks the record invariants.
	ErrCorruptChunk = errors.New("corrupt chunk record")

	// ErrBadExtent is returned for chunk extents that are not 2d or 3d with positive
	// components, or for chunk indices whose dimensionality doesn't match the extent.
	ErrBadExtent = errors.New("bad chunk extent")
)

// ChunkError records an error and the chunk that caused it.
type ChunkError struct {
	Index lattice.ChunkPoint
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %s: %v", e.Index, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

func corruptf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorruptChunk, fmt.Sprintf(format, args...))
}
