package chunkstore

import (
	"github.com/latticeview/latticeview/lattice"
)

// Classifier labels lattice points.  Implementations must be safe for concurrent
// use since a chunk is classified by many goroutines.  Returning any error,
// conventionally ErrNotComputable, records the point as lattice.Unclassifiable.
type Classifier interface {
	Classify(p lattice.Point) (lattice.Label, error)
}

// ClassifierFunc adapts an ordinary function to the Classifier interface.
type ClassifierFunc func(p lattice.Point) (lattice.Label, error)

// Classify calls f(p).
func (f ClassifierFunc) Classify(p lattice.Point) (lattice.Label, error) {
	return f(p)
}
