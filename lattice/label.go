package lattice

import (
	"hash/fnv"
	"image/color"
)

// Label is the classification value of a single lattice point.
type Label string

const (
	// DefaultLabel is the dominant label of a store unless configured otherwise.  It is
	// never persisted: absence from a chunk record implies the default.
	DefaultLabel Label = "0"

	// Unclassifiable is recorded for points where the classifier could not compute a label.
	Unclassifiable Label = "-"

	// UnknownLabel is reported for points in chunks that have not been computed.
	UnknownLabel Label = "?"
)

// Palette maps labels to display colors.
type Palette map[Label]color.RGBA

// DefaultPalette holds the torsion group colors.
var DefaultPalette = Palette{
	Unclassifiable: {255, 255, 255, 255}, // white
	DefaultLabel:   {0, 0, 0, 255},       // black
	"Z2":           {0, 0, 255, 255},     // dark blue
	"Z3":           {0, 238, 255, 255},   // light blue
	"Z4":           {5, 237, 28, 255},    // green
	"Z5":           {255, 0, 0, 255},     // red
	"Z6":           {216, 161, 255, 255}, // lilac
	"Z7":           {0, 150, 136, 255},   // teal
	"Z8":           {103, 58, 183, 255},  // deep purple
	"Z9":           {100, 100, 100, 255},
	"Z10":          {150, 150, 150, 255},
	"Z12":          {200, 200, 200, 255},
	"Z2xZ2":        {255, 133, 175, 255}, // pink
	"Z2xZ4":        {255, 235, 59, 255},  // yellow
	"Z2xZ6":        {255, 152, 0, 255},   // orange
	"Z2xZ8":        {255, 106, 59, 255},  // deep orange
	UnknownLabel:   {40, 0, 0, 255},
}

// Color returns the color of a label.  Labels without an assigned color get a stable
// color derived from a hash of the label.
func (p Palette) Color(l Label) color.RGBA {
	if c, found := p[l]; found {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(l))
	sum := h.Sum32()
	return color.RGBA{
		R: uint8(sum>>16) | 0x40,
		G: uint8(sum >> 8),
		B: uint8(sum),
		A: 255,
	}
}
