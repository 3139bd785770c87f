package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/latticeview/latticeview/classify"
	"github.com/latticeview/latticeview/lattice"
	"github.com/latticeview/latticeview/view"
)

// Title is the family of curves being viewed.
const Title = "E : y² = x³ + Ax² + Bx + C"

// Controls lists the key bindings shown on screen.
var Controls = []string{
	"Use arrow keys to move around",
	"Use z/x keys to change depth",
	"Hold shift to change depth faster",
	"Use a/s keys to change axis",
	"Use +/- keys to zoom in/out",
	"Use f key to reset camera",
}

var (
	hudText     = color.RGBA{255, 255, 255, 255}
	hudHeadline = color.RGBA{255, 255, 0, 255}
)

// HUD is the text drawn over a frame.
type HUD struct {
	// Plane names the viewed plane and its depth, e.g. "BC-plane (A = 3)".
	Plane string

	// Label is the label under the pointer and Curve the curve at that point.  Neither
	// is drawn when the label is the default label.
	Label     lattice.Label
	Curve     string
	ShowLabel bool

	Pointer image.Point
}

// NewHUD describes the view of a camera with the pointer over the view frame point vp
// carrying the given label.
func NewHUD(cam *view.Camera, dims uint8, vp lattice.Point3d, label, defaultLabel lattice.Label, pointer image.Point) HUD {
	var plane string
	var curve classify.Curve
	if dims == 2 {
		plane = "BC-plane (A = 0)"
		curve = classify.CurveAt(lattice.Point2d{vp[0], vp[1]})
	} else {
		shape := cam.Shape()
		plane = fmt.Sprintf("%s-plane (%s = %d)", shape.PlaneName(), lattice.CoefficientName(shape.Depth()), vp[2])
		curve = classify.CurveAt(shape.Unpermute(vp))
	}
	return HUD{
		Plane:     plane,
		Label:     label,
		Curve:     curve.Equation(),
		ShowLabel: label != defaultLabel,
		Pointer:   pointer,
	}
}

// Lines returns the HUD text top to bottom.
func (h HUD) Lines() []string {
	lines := []string{Title, h.Plane, "CONTROLS"}
	lines = append(lines, Controls...)
	if h.ShowLabel {
		lines = append(lines, string(h.Label), h.Curve)
	}
	return lines
}

// The bitmap face only covers ASCII.
var asciiText = strings.NewReplacer("²", "^2", "³", "^3")

func drawText(dst draw.Image, s string, col color.Color, dot fixed.Point26_6) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  dot,
	}
	d.DrawString(asciiText.Replace(s))
}

// drawTextTopRight draws a line of text with its right edge at x and its top at y.
func drawTextTopRight(dst draw.Image, s string, col color.Color, x, y int) {
	w := font.MeasureString(basicfont.Face7x13, asciiText.Replace(s))
	ascent := basicfont.Face7x13.Metrics().Ascent
	drawText(dst, s, col, fixed.Point26_6{X: fixed.I(x) - w, Y: fixed.I(y) + ascent})
}

// Draw renders the HUD onto a frame.  Text is right-aligned at the top right corner
// and the label under the pointer is drawn next to the pointer.
func (h HUD) Draw(dst draw.Image) {
	right := dst.Bounds().Max.X - 10
	top := dst.Bounds().Min.Y
	drawTextTopRight(dst, Title, hudText, right, top+10)
	drawTextTopRight(dst, h.Plane, hudText, right, top+26)
	drawTextTopRight(dst, "CONTROLS", hudHeadline, right, top+56)
	for i, line := range Controls {
		drawTextTopRight(dst, line, hudText, right, top+72+16*i)
	}
	if h.ShowLabel {
		x := h.Pointer.X + 24
		drawText(dst, string(h.Label), hudText, fixed.P(x, h.Pointer.Y+24))
		drawText(dst, h.Curve, hudText, fixed.P(x, h.Pointer.Y+42))
	}
}
