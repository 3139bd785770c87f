package view

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"sync"

	"github.com/DmitriyVTitov/size"
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/latticeview/latticeview/chunkstore"
	"github.com/latticeview/latticeview/lattice"
)

// sliceKey identifies a memoized cross-section of a chunk.
type sliceKey struct {
	axis  uint8
	depth int32
}

// Chunk is a loaded chunk ready for display.  Label membership is held as one bitmap of
// in-chunk offsets per non-default label.  The label data is immutable; rendered slices
// are memoized per (axis, depth) and built at most once.
type Chunk struct {
	index        lattice.ChunkPoint3d
	extent       lattice.Point3d
	dims         uint8
	defaultLabel lattice.Label
	palette      lattice.Palette

	labels  []lattice.Label
	members []*roaring.Bitmap

	mu     sync.Mutex
	slices map[sliceKey]*image.RGBA
}

// NewChunk builds a displayable chunk from the inverse index of a computed chunk.
// 2d chunks are treated as a single plane of depth one.
func NewChunk(index lattice.ChunkPoint, extent lattice.Point, data chunkstore.InverseIndex,
	palette lattice.Palette, defaultLabel lattice.Label) (*Chunk, error) {

	if err := lattice.ValidateExtent(extent); err != nil {
		return nil, err
	}
	if index.NumDims() != extent.NumDims() {
		return nil, fmt.Errorf("chunk %s does not match %d-d extent %s", index, extent.NumDims(), extent)
	}
	if extent.Prod() > math.MaxUint32 {
		return nil, fmt.Errorf("chunk extent %s holds too many points to index", extent)
	}
	if palette == nil {
		palette = lattice.DefaultPalette
	}
	c := &Chunk{
		index:        lattice.LiftChunk3d(index),
		extent:       lattice.LiftExtent3d(extent),
		dims:         extent.NumDims(),
		defaultLabel: defaultLabel,
		palette:      palette,
		slices:       make(map[sliceKey]*image.RGBA),
	}
	for _, label := range data.Labels() {
		if label == defaultLabel {
			continue
		}
		bm := roaring.New()
		for _, pt := range data[label] {
			if pt.NumDims() != extent.NumDims() {
				return nil, fmt.Errorf("chunk %s: point %s under label %q has wrong dimensionality", index, pt, label)
			}
			local := lattice.Lift3d(pt)
			for dim := 0; dim < 3; dim++ {
				if local[dim] < 0 || local[dim] >= c.extent[dim] {
					return nil, fmt.Errorf("chunk %s: point %s under label %q is outside extent %s", index, pt, label, extent)
				}
			}
			bm.Add(uint32(lattice.LinearOffset(local, c.extent)))
		}
		bm.RunOptimize()
		c.labels = append(c.labels, label)
		c.members = append(c.members, bm)
	}
	return c, nil
}

func (c *Chunk) String() string {
	if c.dims == 2 {
		return fmt.Sprintf("chunk (%d,%d) with %d labels", c.index[0], c.index[1], len(c.labels))
	}
	return fmt.Sprintf("chunk %s with %d labels", c.index, len(c.labels))
}

// Index returns the chunk index in lattice space, 2d indices lifted to 3d.
func (c *Chunk) Index() lattice.ChunkPoint3d { return c.index }

// shape returns the cross-section for a viewing axis.  2d chunks are always seen as XY.
func (c *Chunk) shape(axis uint8) lattice.DataShape {
	if c.dims == 2 {
		return lattice.XY
	}
	return lattice.ShapeForAxis(axis)
}

// Rect returns the chunk's projection onto the plane of the viewing axis in lattice units.
func (c *Chunk) Rect(axis uint8) image.Rectangle {
	return c.shape(axis).Rect(c.index, c.extent)
}

// DepthRange returns the half-open range of depths along the viewing axis covered by
// the chunk.  A 2d chunk covers every depth.
func (c *Chunk) DepthRange(axis uint8) (lo, hi int32) {
	if c.dims == 2 {
		return math.MinInt32, math.MaxInt32
	}
	return c.shape(axis).DepthRange(c.index, c.extent)
}

// labelAt returns the label at an in-chunk offset.
func (c *Chunk) labelAt(offset uint32) lattice.Label {
	for i, bm := range c.members {
		if bm.Contains(offset) {
			return c.labels[i]
		}
	}
	return c.defaultLabel
}

// Lookup returns the label at a view frame point (u, v, depth) for the given viewing
// axis.  It returns false if the point is not within this chunk.
func (c *Chunk) Lookup(viewPoint lattice.Point3d, axis uint8) (lattice.Label, bool) {
	p := c.shape(axis).Unpermute(viewPoint)
	if c.dims == 2 {
		p[2] = 0
	}
	if !lattice.InChunk(c.index, p, c.extent) {
		return "", false
	}
	local := p.Sub(c.index.MinPoint(c.extent))
	return c.labelAt(uint32(lattice.LinearOffset(local, c.extent))), true
}

// Slice returns the rendered cross-section at an in-chunk depth along the viewing axis.
// Pixel (u, v) holds the color of the in-chunk point with those plane coordinates.  The
// returned image must not be modified.
func (c *Chunk) Slice(axis uint8, depth int32) *image.RGBA {
	shape := c.shape(axis)
	if c.dims == 2 {
		axis, depth = 2, 0
	}
	key := sliceKey{axis % lattice.NumAxes, depth}

	c.mu.Lock()
	defer c.mu.Unlock()
	if img, found := c.slices[key]; found {
		return img
	}
	img := c.renderSlice(shape, depth)
	c.slices[key] = img
	return img
}

func (c *Chunk) renderSlice(shape lattice.DataShape, depth int32) *image.RGBA {
	w, h := shape.GetSize2D(c.extent)
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	bg := c.palette.Color(c.defaultLabel)
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	if depth < 0 || depth >= c.extent[shape.Depth()] {
		return img
	}
	for i, bm := range c.members {
		col := c.palette.Color(c.labels[i])
		it := bm.Iterator()
		for it.HasNext() {
			p := offsetPoint(it.Next(), c.extent)
			if p[shape.Depth()] != depth {
				continue
			}
			img.SetRGBA(int(p[shape.U()]), int(p[shape.V()]), col)
		}
	}
	return img
}

// offsetPoint is the inverse of lattice.LinearOffset for 3d extents.
func offsetPoint(offset uint32, extent lattice.Point3d) lattice.Point3d {
	o := int64(offset)
	var p lattice.Point3d
	for dim := 2; dim >= 0; dim-- {
		e := int64(extent[dim])
		p[dim] = int32(o % e)
		o /= e
	}
	return p
}

// Labels returns the non-default labels present in the chunk with their point counts.
func (c *Chunk) Labels() map[lattice.Label]uint64 {
	counts := make(map[lattice.Label]uint64, len(c.labels))
	for i, bm := range c.members {
		counts[c.labels[i]] = bm.GetCardinality()
	}
	return counts
}

// CachedSlices returns the number of memoized slices.
func (c *Chunk) CachedSlices() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slices)
}

// SizeBytes estimates the memory held by the chunk's bitmaps and memoized slices.
func (c *Chunk) SizeBytes() int {
	var n int
	for _, bm := range c.members {
		n += int(bm.GetSizeInBytes())
	}
	c.mu.Lock()
	n += size.Of(c.slices)
	c.mu.Unlock()
	return n
}
