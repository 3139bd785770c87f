package chunkstore

import (
	"github.com/latticeview/latticeview/lattice"
)

// NextFrontier returns the next chunk to compute given the computed chunks of a
// dims-dimensional store.  The origin comes first.  Afterwards the bounding box of
// the computed chunks is scanned in lexicographic order (first axis slowest) and the
// first missing chunk is returned.  A complete box grows by returning the chunk one
// step below its minimum corner on every axis.  Indices of other dimensionality
// are ignored.
func NextFrontier(computed lattice.ChunkSet, dims uint8) lattice.ChunkPoint {
	var lo, hi []int32
	for c := range computed {
		if c.NumDims() != dims {
			continue
		}
		if lo == nil {
			lo, hi = lattice.PointSlice(c), lattice.PointSlice(c)
			continue
		}
		for dim := uint8(0); dim < dims; dim++ {
			v := c.Value(dim)
			if v < lo[dim] {
				lo[dim] = v
			}
			if v > hi[dim] {
				hi[dim] = v
			}
		}
	}
	if lo == nil {
		return lattice.ZeroChunkPoint(dims)
	}

	cur := make([]int32, dims)
	copy(cur, lo)
	for {
		c, _ := lattice.NewChunkPoint(cur)
		if !computed.Has(c) {
			return c
		}
		// Advance the odometer, last axis fastest.
		dim := int(dims) - 1
		for ; dim >= 0; dim-- {
			if cur[dim] < hi[dim] {
				cur[dim]++
				break
			}
			cur[dim] = lo[dim]
		}
		if dim < 0 {
			break
		}
	}

	for dim := range lo {
		lo[dim]--
	}
	c, _ := lattice.NewChunkPoint(lo)
	return c
}
