package view

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/latticeview/latticeview/chunkstore"
	"github.com/latticeview/latticeview/lattice"
)

// ChunkSource is the part of a chunk store read by the compositor.
type ChunkSource interface {
	Extent() lattice.Point
	DefaultLabel() lattice.Label
	ListComputedChunks(ctx context.Context) (lattice.ChunkSet, error)
	GetChunkData(ctx context.Context, index lattice.ChunkPoint) (chunkstore.InverseIndex, error)
}

// Compositor assembles the cross-section visible through a viewport from the loaded
// chunks of a store.  Chunks never change once computed, so loaded chunks are kept and
// a refresh only loads chunks that are new.
type Compositor struct {
	source       ChunkSource
	palette      lattice.Palette
	extent       lattice.Point
	defaultLabel lattice.Label

	mu     sync.RWMutex
	chunks map[lattice.ChunkPoint]*Chunk
}

// NewCompositor returns a compositor over a chunk source with no chunks loaded yet.
func NewCompositor(source ChunkSource, palette lattice.Palette) *Compositor {
	if palette == nil {
		palette = lattice.DefaultPalette
	}
	return &Compositor{
		source:       source,
		palette:      palette,
		extent:       source.Extent(),
		defaultLabel: source.DefaultLabel(),
		chunks:       make(map[lattice.ChunkPoint]*Chunk),
	}
}

// Refresh loads every computed chunk that is not loaded yet and returns the number of
// chunks added.  Chunks that fail to load are skipped and reported together after the
// rest are loaded.
func (c *Compositor) Refresh(ctx context.Context) (int, error) {
	computed, err := c.source.ListComputedChunks(ctx)
	if err != nil {
		return 0, err
	}
	c.mu.RLock()
	var missing []lattice.ChunkPoint
	for _, index := range computed.Sorted() {
		if _, found := c.chunks[index]; !found {
			missing = append(missing, index)
		}
	}
	c.mu.RUnlock()
	if len(missing) == 0 {
		return 0, nil
	}

	timedLog := lattice.NewTimeLog()
	var errs []error
	loaded := make(map[lattice.ChunkPoint]*Chunk, len(missing))
	for _, index := range missing {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		data, err := c.source.GetChunkData(ctx, index)
		if err != nil {
			lattice.Warningf("Skipping chunk %s: %v\n", index, err)
			errs = append(errs, err)
			continue
		}
		chunk, err := NewChunk(index, c.extent, data, c.palette, c.defaultLabel)
		if err != nil {
			lattice.Warningf("Skipping chunk %s: %v\n", index, err)
			errs = append(errs, fmt.Errorf("chunk %s: %w", index, err))
			continue
		}
		loaded[index] = chunk
	}

	c.mu.Lock()
	for index, chunk := range loaded {
		c.chunks[index] = chunk
	}
	total := len(c.chunks)
	c.mu.Unlock()

	timedLog.Debugf("Loaded %d new chunks, %d total", len(loaded), total)
	return len(loaded), errors.Join(errs...)
}

// Add places an already built chunk in the compositor, replacing any chunk with the
// same index.
func (c *Compositor) Add(chunk *Chunk) {
	var index lattice.ChunkPoint = chunk.index
	if chunk.dims == 2 {
		index = lattice.ChunkPoint2d{chunk.index[0], chunk.index[1]}
	}
	c.mu.Lock()
	c.chunks[index] = chunk
	c.mu.Unlock()
}

// Background returns the color of the default label.
func (c *Compositor) Background() image.Image {
	return &image.Uniform{c.palette.Color(c.defaultLabel)}
}

// View renders the region of size lattice points centered on the view frame position
// pos = (u, v, depth) for the given viewing axis.  Row 0 of the result is the lowest v,
// i.e. the image is in lattice orientation; see FlipVertical for display.
func (c *Compositor) View(pos lattice.Point3d, size image.Point, axis uint8) *image.RGBA {
	screen := image.Rect(0, 0, size.X, size.Y).Add(image.Pt(int(pos[0])-size.X/2, int(pos[1])-size.Y/2))
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(img, img.Bounds(), c.Background(), image.Point{}, draw.Src)

	depth := pos[2]
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, chunk := range c.chunks {
		rect := chunk.Rect(axis)
		if !rect.Overlaps(screen) {
			continue
		}
		lo, hi := chunk.DepthRange(axis)
		if depth < lo || depth >= hi {
			continue
		}
		var local int32
		if chunk.dims == 3 {
			local = lattice.FloorMod(depth, chunk.extent[lattice.ShapeForAxis(axis).Depth()])
		}
		slice := chunk.Slice(axis, local)
		draw.Draw(img, rect.Sub(screen.Min), slice, image.Point{}, draw.Src)
	}
	return img
}

// Pick returns the label at a view frame point (u, v, depth) for the given viewing axis,
// or lattice.UnknownLabel if no loaded chunk holds the point.
func (c *Compositor) Pick(viewPoint lattice.Point3d, axis uint8) lattice.Label {
	var index lattice.ChunkPoint
	if c.extent.NumDims() == 2 {
		index = lattice.Point2d{viewPoint[0], viewPoint[1]}.Chunk(c.extent)
	} else {
		index = lattice.ShapeForAxis(axis).Unpermute(viewPoint).Chunk(c.extent)
	}
	c.mu.RLock()
	chunk, found := c.chunks[index]
	c.mu.RUnlock()
	if !found {
		return lattice.UnknownLabel
	}
	label, ok := chunk.Lookup(viewPoint, axis)
	if !ok {
		return lattice.UnknownLabel
	}
	return label
}

// Stats summarizes the memory held by loaded chunks.
type Stats struct {
	Chunks int
	Slices int
	Bytes  int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d chunks loaded, %d slices cached, %s", s.Chunks, s.Slices, humanize.Bytes(uint64(s.Bytes)))
}

// Stats returns the number of loaded chunks, memoized slices and their estimated size.
func (c *Compositor) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := Stats{Chunks: len(c.chunks)}
	for _, chunk := range c.chunks {
		stats.Slices += chunk.CachedSlices()
		stats.Bytes += chunk.SizeBytes()
	}
	return stats
}
