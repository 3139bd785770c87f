package view

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeview/latticeview/chunkstore"
	"github.com/latticeview/latticeview/lattice"
	"github.com/latticeview/latticeview/storage"
	_ "github.com/latticeview/latticeview/storage/filestore"
)

// memSource is a ChunkSource holding inverse indices in memory.
type memSource struct {
	extent  lattice.Point
	chunks  map[lattice.ChunkPoint]chunkstore.InverseIndex
	corrupt lattice.ChunkSet
	reads   int
}

func newMemSource(extent lattice.Point) *memSource {
	return &memSource{
		extent:  extent,
		chunks:  make(map[lattice.ChunkPoint]chunkstore.InverseIndex),
		corrupt: make(lattice.ChunkSet),
	}
}

func (s *memSource) Extent() lattice.Point       { return s.extent }
func (s *memSource) DefaultLabel() lattice.Label { return "0" }

func (s *memSource) ListComputedChunks(ctx context.Context) (lattice.ChunkSet, error) {
	set := make(lattice.ChunkSet)
	for index := range s.chunks {
		set.Add(index)
	}
	for index := range s.corrupt {
		set.Add(index)
	}
	return set, nil
}

func (s *memSource) GetChunkData(ctx context.Context, index lattice.ChunkPoint) (chunkstore.InverseIndex, error) {
	s.reads++
	if s.corrupt.Has(index) {
		return nil, &chunkstore.ChunkError{Index: index, Err: chunkstore.ErrCorruptChunk}
	}
	data, found := s.chunks[index]
	if !found {
		return nil, &chunkstore.ChunkError{Index: index, Err: chunkstore.ErrChunkNotFound}
	}
	return data, nil
}

func newTestCompositor(t *testing.T, src *memSource) *Compositor {
	comp := NewCompositor(src, testPalette)
	_, err := comp.Refresh(context.Background())
	require.NoError(t, err)
	return comp
}

func TestViewSingleChunk(t *testing.T) {
	src := newMemSource(lattice.Point3d{4, 4, 4})
	src.chunks[lattice.ChunkPoint3d{0, 0, 0}] = chunkstore.InverseIndex{"A": {lattice.Point3d{1, 2, 3}}}
	comp := newTestCompositor(t, src)

	img := comp.View(lattice.Point3d{2, 2, 3}, image.Pt(4, 4), 2)
	require.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
	require.Equal(t, map[image.Point]color.RGBA{image.Pt(1, 2): red}, coloredPixels(img, black))

	// Other depths of the same chunk show only background.
	require.Empty(t, coloredPixels(comp.View(lattice.Point3d{2, 2, 2}, image.Pt(4, 4), 2), black))

	// Along x the point is at u = y, v = z with depth x = 1.
	img = comp.View(lattice.Point3d{2, 2, 1}, image.Pt(4, 4), 0)
	require.Equal(t, map[image.Point]color.RGBA{image.Pt(2, 3): red}, coloredPixels(img, black))
}

func TestViewOffsetChunks(t *testing.T) {
	src := newMemSource(lattice.Point3d{4, 4, 4})
	src.chunks[lattice.ChunkPoint3d{1, 0, 0}] = chunkstore.InverseIndex{"A": {lattice.Point3d{0, 0, 3}}}
	src.chunks[lattice.ChunkPoint3d{-1, -1, -1}] = chunkstore.InverseIndex{"B": {lattice.Point3d{3, 3, 3}}}
	comp := newTestCompositor(t, src)

	// Lattice point (4, 0, 3) with the screen starting at (2, 0).
	img := comp.View(lattice.Point3d{4, 2, 3}, image.Pt(4, 4), 2)
	require.Equal(t, map[image.Point]color.RGBA{image.Pt(2, 0): red}, coloredPixels(img, black))

	// Lattice point (-1, -1, -1) with the screen starting at (-2, -2).
	img = comp.View(lattice.Point3d{0, 0, -1}, image.Pt(4, 4), 2)
	require.Equal(t, map[image.Point]color.RGBA{image.Pt(1, 1): blue}, coloredPixels(img, black))

	// A wide screen sees chunks on both sides of the origin at matching depth only.
	img = comp.View(lattice.Point3d{0, 0, 3}, image.Pt(16, 16), 2)
	require.Equal(t, map[image.Point]color.RGBA{image.Pt(12, 8): red}, coloredPixels(img, black))
}

func TestViewCulling(t *testing.T) {
	src := newMemSource(lattice.Point3d{4, 4, 4})
	src.chunks[lattice.ChunkPoint3d{0, 0, 0}] = chunkstore.InverseIndex{"A": {lattice.Point3d{0, 0, 0}}}
	comp := newTestCompositor(t, src)

	for _, pos := range []lattice.Point3d{
		{100, 100, 0},
		{-2, 2, 0}, // screen [-4,0) just left of the chunk
		{2, 6, 0},  // screen [4,8) just above
		{2, 2, 4},  // depth past the chunk
		{2, 2, -1}, // depth before the chunk
	} {
		img := comp.View(pos, image.Pt(4, 4), 2)
		require.Empty(t, coloredPixels(img, black), "camera %s", pos)
	}
	require.Equal(t, 0, comp.Stats().Slices)

	img := comp.View(lattice.Point3d{-1, 2, 0}, image.Pt(4, 4), 2)
	require.Equal(t, map[image.Point]color.RGBA{image.Pt(3, 0): red}, coloredPixels(img, black))
	require.Equal(t, 1, comp.Stats().Slices)
}

func TestPick(t *testing.T) {
	src := newMemSource(lattice.Point3d{4, 4, 4})
	src.chunks[lattice.ChunkPoint3d{0, 0, 0}] = chunkstore.InverseIndex{"A": {lattice.Point3d{1, 2, 3}}}
	comp := newTestCompositor(t, src)

	require.Equal(t, lattice.Label("A"), comp.Pick(lattice.Point3d{1, 2, 3}, 2))
	require.Equal(t, lattice.Label("A"), comp.Pick(lattice.Point3d{2, 3, 1}, 0))
	require.Equal(t, lattice.Label("A"), comp.Pick(lattice.Point3d{1, 3, 2}, 1))
	require.Equal(t, lattice.Label("0"), comp.Pick(lattice.Point3d{0, 0, 0}, 2))
	require.Equal(t, lattice.UnknownLabel, comp.Pick(lattice.Point3d{4, 0, 0}, 2))
	require.Equal(t, lattice.UnknownLabel, comp.Pick(lattice.Point3d{-1, 0, 0}, 2))
}

func TestRefreshSurfacesCorruptChunks(t *testing.T) {
	src := newMemSource(lattice.Point2d{2, 2})
	src.chunks[lattice.ChunkPoint2d{0, 0}] = chunkstore.InverseIndex{"A": {lattice.Point2d{1, 1}}}
	src.chunks[lattice.ChunkPoint2d{1, 0}] = chunkstore.InverseIndex{}
	src.corrupt.Add(lattice.ChunkPoint2d{0, 1})

	comp := NewCompositor(src, testPalette)
	added, err := comp.Refresh(context.Background())
	require.ErrorIs(t, err, chunkstore.ErrCorruptChunk)
	require.Equal(t, 2, added)
	require.Equal(t, 2, comp.Stats().Chunks)
	require.Equal(t, lattice.UnknownLabel, comp.Pick(lattice.Point3d{0, 2, 0}, 2))
	require.Equal(t, lattice.Label("A"), comp.Pick(lattice.Point3d{1, 1, 0}, 2))

	// Loaded chunks are not read again.
	reads := src.reads
	src.chunks[lattice.ChunkPoint2d{-1, 0}] = chunkstore.InverseIndex{"B": {lattice.Point2d{0, 0}}}
	added, err = comp.Refresh(context.Background())
	require.ErrorIs(t, err, chunkstore.ErrCorruptChunk)
	require.Equal(t, 1, added)
	require.Equal(t, reads+2, src.reads)
	require.Equal(t, lattice.Label("B"), comp.Pick(lattice.Point3d{-2, 0, 99}, 1))

	img := comp.View(lattice.Point3d{0, 0, 5}, image.Pt(4, 4), 2)
	require.Equal(t, map[image.Point]color.RGBA{
		image.Pt(0, 2): blue,
		image.Pt(3, 3): red,
	}, coloredPixels(img, black))
}

func TestCompositorWithChunkStore(t *testing.T) {
	ctx := context.Background()
	config := lattice.StoreConfig{Config: lattice.NewConfig(), Engine: "filestore"}
	config.Set("path", filepath.Join(t.TempDir(), "chunks"))
	backend, _, err := storage.NewStore(config)
	require.NoError(t, err)
	defer backend.Close()

	// Label points by their distance from the origin along x.
	classifier := chunkstore.ClassifierFunc(func(p lattice.Point) (lattice.Label, error) {
		x := p.Value(0)
		if x < 0 {
			x = -x
		}
		if x%3 == 0 {
			return "0", nil
		}
		return lattice.Label(fmt.Sprintf("x%d", x%3)), nil
	})
	store, err := chunkstore.New(backend, classifier, chunkstore.Options{Extent: lattice.Point2d{5, 5}})
	require.NoError(t, err)
	_, err = store.ComputeChunks(ctx, 4, 2)
	require.NoError(t, err)

	comp := NewCompositor(store, nil)
	added, err := comp.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, added)

	computed, err := store.ListComputedChunks(ctx)
	require.NoError(t, err)
	for index := range computed {
		lo := index.MinPoint(store.Extent())
		for dx := int32(0); dx < 5; dx++ {
			p := lattice.Point2d{lo.Value(0) + dx, lo.Value(1) + 2}
			want, _ := classifier.Classify(p)
			require.Equal(t, want, comp.Pick(lattice.Point3d{p[0], p[1], 0}, 2), "point %s", p)
		}
	}
	require.Equal(t, lattice.UnknownLabel, comp.Pick(lattice.Point3d{1000, 1000, 0}, 2))

	img := comp.View(lattice.Point3d{0, 0, 0}, image.Pt(40, 40), 2)
	require.Equal(t, image.Rect(0, 0, 40, 40), img.Bounds())
	require.Equal(t, lattice.DefaultPalette.Color("x1"), img.RGBAAt(21, 20))
	require.Equal(t, lattice.DefaultPalette.Color("0"), img.RGBAAt(20, 20))
}
