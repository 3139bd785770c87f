package lattice

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SimplePoint is the minimal view of a point in 2d or 3d lattice space.
type SimplePoint interface {
	// NumDims returns the dimensionality of this point.
	NumDims() uint8

	// Value returns the point's value for the specified dimension without checking dim bounds.
	Value(dim uint8) int32
}

// Point is an interface for 2d and 3d lattice points.  Types that implement the
// interface can optimize for particular dimensionality.
type Point interface {
	SimplePoint
	Chunkable

	// Add returns the addition of two points.
	Add(Point) Point

	// Sub returns the subtraction of the passed point from the receiver.
	Sub(Point) Point

	// Prod returns the product of the point elements.
	Prod() int64

	String() string
}

// Chunkable is an interface for points that can be partitioned into chunks.
type Chunkable interface {
	// Chunk returns a point in chunk space, the partition in which the given point falls.
	Chunk(size Point) ChunkPoint

	// PointInChunk returns a point in a particular chunk's space, with the first point
	// of the chunk as the origin.  Components are always non-negative.
	PointInChunk(size Point) Point
}

// ChunkPoint describes a particular chunk in chunk space.
type ChunkPoint interface {
	SimplePoint

	// MinPoint returns the minimum point within a chunk and first in an iteration.
	MinPoint(size Point) Point

	// MaxPoint returns the maximum point within a chunk and last in an iteration.
	MaxPoint(size Point) Point

	String() string
}

// floorDiv and floorMod give mathematical division and modulus for positive divisors.
func floorDiv(a, b int32) int32 {
	q := int64(a) / int64(b)
	if int64(a)%int64(b) < 0 {
		q--
	}
	return int32(q)
}

func floorMod(a, b int32) int32 {
	m := int64(a) % int64(b)
	if m < 0 {
		m += int64(b)
	}
	return int32(m)
}

// FloorDiv returns a / b rounded toward negative infinity for positive b.
func FloorDiv(a, b int32) int32 {
	return floorDiv(a, b)
}

// FloorMod returns a mod b in [0, b) for positive b.
func FloorMod(a, b int32) int32 {
	return floorMod(a, b)
}

// ChunkIndexOf returns the chunk owning the point and the point's offset within that
// chunk given the per-axis chunk extent.
func ChunkIndexOf(p, extent Point) (ChunkPoint, Point) {
	return p.Chunk(extent), p.PointInChunk(extent)
}

// InChunk returns true if the point lies in the given chunk.
func InChunk(c ChunkPoint, p, extent Point) bool {
	if c.NumDims() != p.NumDims() {
		return false
	}
	return EqualPoints(p.Chunk(extent), c)
}

// --- Implementations of the above interfaces in 2d and 3d ---------

// Point2d is a 2d point.
type Point2d [2]int32

// NumDims returns the dimensionality of this point.
func (p Point2d) NumDims() uint8 {
	return 2
}

// Value returns the point's value for the specified dimension without checking dim bounds.
func (p Point2d) Value(dim uint8) int32 {
	return p[dim]
}

// Add returns the addition of two points.
func (p Point2d) Add(x Point) Point {
	return Point2d{p[0] + x.Value(0), p[1] + x.Value(1)}
}

// Sub returns the subtraction of the passed point from the receiver.
func (p Point2d) Sub(x Point) Point {
	return Point2d{p[0] - x.Value(0), p[1] - x.Value(1)}
}

func (p Point2d) Prod() int64 {
	return int64(p[0]) * int64(p[1])
}

func (p Point2d) String() string {
	return fmt.Sprintf("(%d,%d)", p[0], p[1])
}

// Chunk returns the chunk space coordinate of the chunk containing the point.
func (p Point2d) Chunk(size Point) ChunkPoint {
	return ChunkPoint2d{
		floorDiv(p[0], size.Value(0)),
		floorDiv(p[1], size.Value(1)),
	}
}

// PointInChunk returns a point in containing chunk space for the given point.
func (p Point2d) PointInChunk(size Point) Point {
	return Point2d{
		floorMod(p[0], size.Value(0)),
		floorMod(p[1], size.Value(1)),
	}
}

// Point3d is an ordered list of three 32-bit signed integers that implements the Point interface.
type Point3d [3]int32

// NumDims returns the dimensionality of this point.
func (p Point3d) NumDims() uint8 {
	return 3
}

// Value returns the point's value for the specified dimension without checking dim bounds.
func (p Point3d) Value(dim uint8) int32 {
	return p[dim]
}

// Add returns the addition of two points.
func (p Point3d) Add(x Point) Point {
	return Point3d{p[0] + x.Value(0), p[1] + x.Value(1), p[2] + x.Value(2)}
}

// Sub returns the subtraction of the passed point from the receiver.
func (p Point3d) Sub(x Point) Point {
	return Point3d{p[0] - x.Value(0), p[1] - x.Value(1), p[2] - x.Value(2)}
}

func (p Point3d) Prod() int64 {
	return int64(p[0]) * int64(p[1]) * int64(p[2])
}

func (p Point3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p[0], p[1], p[2])
}

// Chunk returns the chunk space coordinate of the chunk containing the point.
func (p Point3d) Chunk(size Point) ChunkPoint {
	return ChunkPoint3d{
		floorDiv(p[0], size.Value(0)),
		floorDiv(p[1], size.Value(1)),
		floorDiv(p[2], size.Value(2)),
	}
}

// PointInChunk returns a point in containing chunk space for the given point.
func (p Point3d) PointInChunk(size Point) Point {
	return Point3d{
		floorMod(p[0], size.Value(0)),
		floorMod(p[1], size.Value(1)),
		floorMod(p[2], size.Value(2)),
	}
}

// ChunkPoint2d handles 2d signed chunk coordinates.
type ChunkPoint2d [2]int32

func (c ChunkPoint2d) String() string {
	return fmt.Sprintf("(%d,%d)", c[0], c[1])
}

func (c ChunkPoint2d) NumDims() uint8 {
	return 2
}

// Value returns the value at the specified dimension.
func (c ChunkPoint2d) Value(dim uint8) int32 {
	return c[dim]
}

// MinPoint returns the smallest lattice coordinate of the given 2d chunk.
func (c ChunkPoint2d) MinPoint(size Point) Point {
	return Point2d{
		c[0] * size.Value(0),
		c[1] * size.Value(1),
	}
}

// MaxPoint returns the maximum lattice coordinate of the given 2d chunk.
func (c ChunkPoint2d) MaxPoint(size Point) Point {
	return Point2d{
		(c[0]+1)*size.Value(0) - 1,
		(c[1]+1)*size.Value(1) - 1,
	}
}

// ChunkPoint3d handles 3d signed chunk coordinates.
type ChunkPoint3d [3]int32

func (c ChunkPoint3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c[0], c[1], c[2])
}

func (c ChunkPoint3d) NumDims() uint8 {
	return 3
}

// Value returns the value at the specified dimension.
func (c ChunkPoint3d) Value(dim uint8) int32 {
	return c[dim]
}

// MinPoint returns the smallest lattice coordinate of the given 3d chunk.
func (c ChunkPoint3d) MinPoint(size Point) Point {
	return Point3d{
		c[0] * size.Value(0),
		c[1] * size.Value(1),
		c[2] * size.Value(2),
	}
}

// MaxPoint returns the maximum lattice coordinate of the given 3d chunk.
func (c ChunkPoint3d) MaxPoint(size Point) Point {
	return Point3d{
		(c[0]+1)*size.Value(0) - 1,
		(c[1]+1)*size.Value(1) - 1,
		(c[2]+1)*size.Value(2) - 1,
	}
}

// NewPoint returns an appropriate Point implementation for the number of dimensions
// passed in.
func NewPoint(values []int32) (Point, error) {
	switch len(values) {
	case 2:
		return Point2d{values[0], values[1]}, nil
	case 3:
		return Point3d{values[0], values[1], values[2]}, nil
	default:
		return nil, fmt.Errorf("no Point implementation for %d-d slice", len(values))
	}
}

// NewChunkPoint returns an appropriate ChunkPoint implementation for the number of
// dimensions passed in.
func NewChunkPoint(values []int32) (ChunkPoint, error) {
	switch len(values) {
	case 2:
		return ChunkPoint2d{values[0], values[1]}, nil
	case 3:
		return ChunkPoint3d{values[0], values[1], values[2]}, nil
	default:
		return nil, fmt.Errorf("no ChunkPoint implementation for %d-d slice", len(values))
	}
}

// ZeroChunkPoint returns the origin chunk for the given dimensionality.
func ZeroChunkPoint(dims uint8) ChunkPoint {
	if dims == 2 {
		return ChunkPoint2d{}
	}
	return ChunkPoint3d{}
}

// PointSlice returns the components of a point as a slice.
func PointSlice(p SimplePoint) []int32 {
	s := make([]int32, p.NumDims())
	for dim := range s {
		s[dim] = p.Value(uint8(dim))
	}
	return s
}

// StringToPoint parses a string of format "%d<sep>%d[<sep>%d]" into a Point.
func StringToPoint(str, separator string) (Point, error) {
	values, err := parseInts(str, separator)
	if err != nil {
		return nil, err
	}
	return NewPoint(values)
}

// StringToChunkPoint parses a string of format "%d<sep>%d[<sep>%d]" into a ChunkPoint.
func StringToChunkPoint(str, separator string) (ChunkPoint, error) {
	values, err := parseInts(str, separator)
	if err != nil {
		return nil, err
	}
	return NewChunkPoint(values)
}

func parseInts(str, separator string) ([]int32, error) {
	elems := strings.Split(strings.TrimSpace(str), separator)
	values := make([]int32, len(elems))
	for i, elem := range elems {
		v, err := strconv.ParseInt(strings.TrimSpace(elem), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q into a point: %v", str, err)
		}
		values[i] = int32(v)
	}
	return values, nil
}

// ValidateExtent returns an error unless the extent is a 2d or 3d point with positive
// components.
func ValidateExtent(extent Point) error {
	if extent == nil {
		return fmt.Errorf("no chunk extent given")
	}
	n := extent.NumDims()
	if n != 2 && n != 3 {
		return fmt.Errorf("chunk extent must be 2d or 3d, got %d-d", n)
	}
	for dim := uint8(0); dim < n; dim++ {
		if extent.Value(dim) <= 0 {
			return fmt.Errorf("chunk extent %s must be positive in every dimension", extent)
		}
	}
	return nil
}

// ComparePoints orders points lexicographically, first dimension most significant.
// Points of lower dimensionality sort first.
func ComparePoints(a, b SimplePoint) int {
	if a.NumDims() != b.NumDims() {
		if a.NumDims() < b.NumDims() {
			return -1
		}
		return 1
	}
	for dim := uint8(0); dim < a.NumDims(); dim++ {
		va, vb := a.Value(dim), b.Value(dim)
		if va < vb {
			return -1
		}
		if va > vb {
			return 1
		}
	}
	return 0
}

// EqualPoints returns true if both points have the same components regardless of their type.
func EqualPoints(a, b SimplePoint) bool {
	return ComparePoints(a, b) == 0
}

// LinearOffset returns the row-major position of an in-chunk point, last dimension fastest.
func LinearOffset(local, extent SimplePoint) int {
	var offset int
	for dim := uint8(0); dim < extent.NumDims(); dim++ {
		offset = offset*int(extent.Value(dim)) + int(local.Value(dim))
	}
	return offset
}

// OffsetPoint is the inverse of LinearOffset.
func OffsetPoint(offset int, extent Point) Point {
	n := extent.NumDims()
	values := make([]int32, n)
	for dim := int(n) - 1; dim >= 0; dim-- {
		size := int(extent.Value(uint8(dim)))
		values[dim] = int32(offset % size)
		offset /= size
	}
	p, _ := NewPoint(values)
	return p
}

// ChunkSet is a set of chunk indices.
type ChunkSet map[ChunkPoint]struct{}

// Add inserts a chunk index into the set.
func (s ChunkSet) Add(c ChunkPoint) {
	s[c] = struct{}{}
}

// Has returns true if the chunk index is in the set.
func (s ChunkSet) Has(c ChunkPoint) bool {
	_, found := s[c]
	return found
}

// Sorted returns the chunk indices in lexicographic order.
func (s ChunkSet) Sorted() []ChunkPoint {
	sorted := make([]ChunkPoint, 0, len(s))
	for c := range s {
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return ComparePoints(sorted[i], sorted[j]) < 0
	})
	return sorted
}
