package view

import (
	"image"
	"image/color"
	"testing"
)

func TestFlipVertical(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(0, 0, red)
	img.SetRGBA(2, 1, blue)

	flipped := FlipVertical(img)
	if flipped.RGBAAt(0, 1) != red {
		t.Errorf("expected red moved to bottom row, got %v", flipped.RGBAAt(0, 1))
	}
	if flipped.RGBAAt(2, 0) != blue {
		t.Errorf("expected blue moved to top row, got %v", flipped.RGBAAt(2, 0))
	}
	if flipped.RGBAAt(0, 0) != (color.RGBA{}) {
		t.Errorf("expected empty pixel, got %v", flipped.RGBAAt(0, 0))
	}

	// Sub-images are flipped within their own bounds.
	sub := img.SubImage(image.Rect(1, 0, 3, 2)).(*image.RGBA)
	flipped = FlipVertical(sub)
	if flipped.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bad flipped bounds %v", flipped.Bounds())
	}
	if flipped.RGBAAt(1, 0) != blue {
		t.Errorf("expected blue at (1,0) in flipped sub-image, got %v", flipped.RGBAAt(1, 0))
	}
}

func TestResize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(1, 0, red)

	scaled := Resize(img, 6, 6)
	if scaled.Bounds() != image.Rect(0, 0, 6, 6) {
		t.Fatalf("bad scaled bounds %v", scaled.Bounds())
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			var expected color.RGBA
			if x >= 3 && y < 3 {
				expected = red
			}
			if got := scaled.RGBAAt(x, y); got != expected {
				t.Errorf("pixel (%d,%d): expected %v, got %v", x, y, expected, got)
			}
		}
	}

	resized := Resize(img, 1, 1)
	if resized.RGBAAt(0, 0) != (color.RGBA{}) {
		t.Errorf("expected nearest neighbor to pick top-left pixel")
	}
}
