package view

import (
	"fmt"
	"image"

	"github.com/latticeview/latticeview/lattice"
)

const (
	// MinScale and MaxScale bound the number of screen pixels per lattice point.
	MinScale = 1
	MaxScale = 20

	DefaultScale = 6
	DefaultStep  = 10
)

// Camera holds the viewer position in the view frame: X along the horizontal axis of
// the current plane, Y along its vertical axis and Z along the viewing axis.  Changing
// the viewing axis keeps the view frame position.
type Camera struct {
	X, Y, Z int32

	// Step is the lattice distance moved per arrow key press.
	Step int32

	// Axis is the viewing axis, i.e. the lattice axis perpendicular to the plane.
	Axis uint8

	// Scale is the number of screen pixels per lattice point.
	Scale int

	depthDown bool
	depthUp   bool
	shift     bool
}

// NewCamera returns a camera at the origin.
func NewCamera(axis uint8, step int32, scale int) *Camera {
	if step <= 0 {
		step = DefaultStep
	}
	if scale <= 0 {
		scale = DefaultScale
	}
	c := &Camera{
		Step: step,
		Axis: axis % lattice.NumAxes,
	}
	c.setScale(scale)
	return c
}

func (c *Camera) String() string {
	return fmt.Sprintf("camera at (%d, %d, %d) viewing %s at %dx", c.X, c.Y, c.Z, c.Shape(), c.Scale)
}

// Position returns the camera position in the view frame (u, v, depth).
func (c *Camera) Position() lattice.Point3d {
	return lattice.Point3d{c.X, c.Y, c.Z}
}

// SetPosition moves the camera to the given view frame position.
func (c *Camera) SetPosition(x, y, z int32) {
	c.X, c.Y, c.Z = x, y, z
}

// Shape returns the cross-section currently viewed.
func (c *Camera) Shape() lattice.DataShape {
	return lattice.ShapeForAxis(c.Axis)
}

func (c *Camera) setScale(scale int) {
	switch {
	case scale < MinScale:
		c.Scale = MinScale
	case scale > MaxScale:
		c.Scale = MaxScale
	default:
		c.Scale = scale
	}
}

// KeyDown applies a key press.  Moves and axis or zoom changes take effect at once
// while depth keys are latched until the next Update.
func (c *Camera) KeyDown(k Key) {
	switch k {
	case KeyLeft:
		c.X -= c.Step
	case KeyRight:
		c.X += c.Step
	case KeyUp:
		c.Y += c.Step
	case KeyDown:
		c.Y -= c.Step
	case KeyDepthDown:
		c.depthDown = true
	case KeyDepthUp:
		c.depthUp = true
	case KeyShift:
		c.shift = true
	case KeyReset:
		c.SetPosition(0, 0, 0)
	case KeyRotateAxis:
		c.Axis = lattice.RotateAxis(c.Axis, 1)
	case KeyRotateAxisBack:
		c.Axis = lattice.RotateAxis(c.Axis, -1)
	case KeyZoomIn:
		c.setScale(c.Scale + 1)
	case KeyZoomOut:
		c.setScale(c.Scale - 1)
	}
}

// KeyUp applies a key release.
func (c *Camera) KeyUp(k Key) {
	switch k {
	case KeyDepthDown:
		c.depthDown = false
	case KeyDepthUp:
		c.depthUp = false
	case KeyShift:
		c.shift = false
	}
}

// Update advances the camera by one frame.  A latched depth key steps the depth by one
// and is released unless shift is held, so holding shift keeps stepping every frame.
func (c *Camera) Update() {
	if c.depthDown {
		c.Z--
		if !c.shift {
			c.depthDown = false
		}
	}
	if c.depthUp {
		c.Z++
		if !c.shift {
			c.depthUp = false
		}
	}
}

// ViewSize returns the size in lattice points of the region shown on a screen.
func (c *Camera) ViewSize(screen image.Point) image.Point {
	return image.Pt(screen.X/c.Scale, screen.Y/c.Scale)
}

// ScreenToLattice maps a pointer position on a screen, with y growing downward, to the
// view frame point (u, v, depth) drawn under it.  It inverts the render path: the
// ViewSize region is flipped so larger v is up and stretched to the screen size.
func (c *Camera) ScreenToLattice(pointer, screen image.Point) lattice.Point3d {
	size := c.ViewSize(screen)
	if size.X == 0 || size.Y == 0 {
		return c.Position()
	}
	col := lattice.FloorDiv(int32(pointer.X*size.X), int32(screen.X))
	row := lattice.FloorDiv(int32(pointer.Y*size.Y), int32(screen.Y))
	return lattice.Point3d{
		c.X - int32(size.X/2) + col,
		c.Y - int32(size.Y/2) + int32(size.Y) - 1 - row,
		c.Z,
	}
}
