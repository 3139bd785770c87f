package view

import (
	"image"
)

// FlipVertical returns a copy of the image with rows in reverse order.  Views are
// composed with row 0 at the lowest v, so displays flip them to put larger v at the top.
func FlipVertical(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	rowBytes := 4 * b.Dx()
	for y := 0; y < b.Dy(); y++ {
		srcI := src.PixOffset(b.Min.X, b.Max.Y-1-y)
		dstI := y * dst.Stride
		copy(dst.Pix[dstI:dstI+rowBytes], src.Pix[srcI:srcI+rowBytes])
	}
	return dst
}

// Resize returns a nearest-neighbor resampling of the image.  Label colors must not be
// interpolated so no smoothing is done.
func Resize(src *image.RGBA, dstW, dstH int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return dst
	}
	dstW64, dstH64 := uint64(dstW), uint64(dstH)
	srcW64, srcH64 := uint64(srcW), uint64(srcH)

	var x, y uint64
	dstI := 0
	for y = 0; y < dstH64; y++ {
		srcY := int(y*srcH64/dstH64) + b.Min.Y
		for x = 0; x < dstW64; x++ {
			srcX := int(x*srcW64/dstW64) + b.Min.X
			srcI := src.PixOffset(srcX, srcY)
			copy(dst.Pix[dstI:dstI+4], src.Pix[srcI:srcI+4])
			dstI += 4
		}
	}
	return dst
}

