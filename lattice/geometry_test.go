package lattice

import (
	"image"
	"testing"
)

func TestPermutationTable(t *testing.T) {
	p := Point3d{7, -3, 11}
	expected := map[uint8]Point3d{
		0: {-3, 11, 7},
		1: {7, 11, -3},
		2: {7, -3, 11},
	}
	for axis := uint8(0); axis < NumAxes; axis++ {
		shape := ShapeForAxis(axis)
		view := shape.Permute(p)
		if view != expected[axis] {
			t.Errorf("axis %d: expected view %s, got %s", axis, expected[axis], view)
		}
		if back := shape.Unpermute(view); back != p {
			t.Errorf("axis %d: unpermute gave %s, expected %s", axis, back, p)
		}
		if shape.Depth() != axis {
			t.Errorf("axis %d: shape %s has depth %d", axis, shape, shape.Depth())
		}
	}
}

func TestRotateAxis(t *testing.T) {
	if a := RotateAxis(2, 1); a != 0 {
		t.Errorf("expected 0, got %d", a)
	}
	if a := RotateAxis(0, -1); a != 2 {
		t.Errorf("expected 2, got %d", a)
	}
}

func TestShapeRect(t *testing.T) {
	extent := Point3d{4, 5, 6}
	c := ChunkPoint3d{-1, 2, 3}
	if r := XY.Rect(c, extent); r != image.Rect(-4, 10, 0, 15) {
		t.Errorf("bad XY rect %v", r)
	}
	if r := YZ.Rect(c, extent); r != image.Rect(10, 18, 15, 24) {
		t.Errorf("bad YZ rect %v", r)
	}
	lo, hi := XZ.DepthRange(c, extent)
	if lo != 10 || hi != 15 {
		t.Errorf("bad XZ depth range [%d,%d)", lo, hi)
	}
	if w, h := XZ.GetSize2D(extent); w != 4 || h != 6 {
		t.Errorf("bad XZ size %d x %d", w, h)
	}
}

func TestPlaneNames(t *testing.T) {
	if n := YZ.PlaneName(); n != "BC" {
		t.Errorf("expected BC, got %s", n)
	}
	if n := CoefficientName(XZ.Depth()); n != "B" {
		t.Errorf("expected B, got %s", n)
	}
	if XY.String() != "XY slice" {
		t.Errorf("bad shape string %q", XY.String())
	}
}

func TestLift(t *testing.T) {
	if p := Lift3d(Point2d{1, 2}); p != (Point3d{1, 2, 0}) {
		t.Errorf("bad lift %s", p)
	}
	if e := LiftExtent3d(Point2d{3, 4}); e != (Point3d{3, 4, 1}) {
		t.Errorf("bad extent lift %s", e)
	}
	if c := LiftChunk3d(ChunkPoint2d{-1, 2}); c != (ChunkPoint3d{-1, 2, 0}) {
		t.Errorf("bad chunk lift %s", c)
	}
}
