package lattice

import (
	"fmt"
	"image"
	"strings"
)

// DataShape describes a 2d cross-section of 3d lattice space: the two in-plane axes
// (U horizontal, V vertical) and the depth axis perpendicular to the plane.
type DataShape struct {
	u, v, depth uint8
}

var (
	// YZ is the plane of points sharing an x-coord.  Viewing axis 0.
	YZ = DataShape{1, 2, 0}

	// XZ is the plane of points sharing a y-coord.  Viewing axis 1.
	XZ = DataShape{0, 2, 1}

	// XY is the plane of points sharing a z-coord.  Viewing axis 2.
	XY = DataShape{0, 1, 2}
)

// shapes is the permutation table indexed by viewing axis.
var shapes = [3]DataShape{YZ, XZ, XY}

// NumAxes is the number of viewing axes.
const NumAxes = 3

// ShapeForAxis returns the cross-section perpendicular to the given viewing axis.
// Axes beyond 2 wrap around.
func ShapeForAxis(axis uint8) DataShape {
	return shapes[axis%NumAxes]
}

// RotateAxis returns the viewing axis delta steps away, modulo 3 in either direction.
func RotateAxis(axis uint8, delta int) uint8 {
	return uint8(((int(axis)+delta)%NumAxes + NumAxes) % NumAxes)
}

// U returns the horizontal axis of the plane.
func (s DataShape) U() uint8 { return s.u }

// V returns the vertical axis of the plane.
func (s DataShape) V() uint8 { return s.v }

// Depth returns the axis perpendicular to the plane.
func (s DataShape) Depth() uint8 { return s.depth }

// Equals returns true if the passed DataShape is identical.
func (s DataShape) Equals(s2 DataShape) bool {
	return s == s2
}

// GetSize2D returns the width and height of the cross-section given a 3d size.
func (s DataShape) GetSize2D(size SimplePoint) (width, height int32) {
	return size.Value(s.u), size.Value(s.v)
}

// Permute maps a point in natural lattice order into the view frame (u, v, depth).
func (s DataShape) Permute(p Point3d) Point3d {
	return Point3d{p[s.u], p[s.v], p[s.depth]}
}

// Unpermute maps a view frame point (u, v, depth) back into natural lattice order.
func (s DataShape) Unpermute(view Point3d) Point3d {
	var p Point3d
	p[s.u] = view[0]
	p[s.v] = view[1]
	p[s.depth] = view[2]
	return p
}

// Rect returns the projection of a chunk onto the plane in lattice units.
func (s DataShape) Rect(c ChunkPoint3d, extent Point3d) image.Rectangle {
	w, h := extent[s.u], extent[s.v]
	x0, y0 := c[s.u]*w, c[s.v]*h
	return image.Rect(int(x0), int(y0), int(x0+w), int(y0+h))
}

// DepthRange returns the half-open range [lo, hi) of the chunk along the depth axis.
func (s DataShape) DepthRange(c ChunkPoint3d, extent Point3d) (lo, hi int32) {
	d := extent[s.depth]
	return c[s.depth] * d, (c[s.depth] + 1) * d
}

// AxisName returns common axis descriptions like X, Y, and Z.
func AxisName(axis uint8) string {
	switch axis {
	case 0:
		return "X"
	case 1:
		return "Y"
	case 2:
		return "Z"
	default:
		return fmt.Sprintf("Dim %d", axis)
	}
}

// CoefficientName returns the curve coefficient name (A, B, C) for a lattice axis.
func CoefficientName(axis uint8) string {
	return string(rune('A' + axis%NumAxes))
}

// PlaneName returns the coefficient plane name of the shape, e.g. "BC" for YZ.
func (s DataShape) PlaneName() string {
	return CoefficientName(s.u) + CoefficientName(s.v)
}

func (s DataShape) String() string {
	return strings.ToUpper(AxisName(s.u)+AxisName(s.v)) + " slice"
}

// Lift3d embeds a 2d point in 3d space with zero depth.  3d points are returned as is.
func Lift3d(p SimplePoint) Point3d {
	if p.NumDims() == 2 {
		return Point3d{p.Value(0), p.Value(1), 0}
	}
	return Point3d{p.Value(0), p.Value(1), p.Value(2)}
}

// LiftChunk3d embeds a 2d chunk index in 3d chunk space.
func LiftChunk3d(c ChunkPoint) ChunkPoint3d {
	if c.NumDims() == 2 {
		return ChunkPoint3d{c.Value(0), c.Value(1), 0}
	}
	return ChunkPoint3d{c.Value(0), c.Value(1), c.Value(2)}
}

// LiftExtent3d embeds a 2d extent in 3d space with unit depth.
func LiftExtent3d(extent SimplePoint) Point3d {
	if extent.NumDims() == 2 {
		return Point3d{extent.Value(0), extent.Value(1), 1}
	}
	return Point3d{extent.Value(0), extent.Value(1), extent.Value(2)}
}
