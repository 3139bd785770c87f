package app

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/latticeview/latticeview/lattice"
	"github.com/latticeview/latticeview/view"
)

// EventKind is the type of an input event.
type EventKind uint8

const (
	KeyDown EventKind = iota + 1
	KeyUp
	Quit
)

func (k EventKind) String() string {
	switch k {
	case KeyDown:
		return "key down"
	case KeyUp:
		return "key up"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("event %d", uint8(k))
	}
}

// Event is an input event delivered by a Display.
type Event struct {
	Kind EventKind
	Key  view.Key
}

func (e Event) String() string {
	if e.Kind == Quit {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Key)
}

// Display is a surface frames are presented on and input events come from.
type Display interface {
	// Size returns the screen size in pixels.
	Size() image.Point

	// Pointer returns the pointer position in screen pixels, y growing downward.
	Pointer() image.Point

	// PollEvents returns the events received since the last poll.
	PollEvents() []Event

	// Present shows a frame of Size() pixels.
	Present(frame *image.RGBA) error
}

// PNGDisplay is a headless Display that replays scripted input and writes presented
// frames as PNG files.
type PNGDisplay struct {
	Width, Height int

	// Dir receives frame_NNNN.png files.  No files are written if empty.
	Dir string

	// Script holds the events delivered per frame.  Once it runs out the display asks
	// to quit.
	Script [][]Event

	PointerAt image.Point

	frames int
	last   *image.RGBA
}

// NewPNGDisplay returns a headless display with the pointer at the screen center.
func NewPNGDisplay(width, height int, dir string, script [][]Event) *PNGDisplay {
	return &PNGDisplay{
		Width:     width,
		Height:    height,
		Dir:       dir,
		Script:    script,
		PointerAt: image.Pt(width/2, height/2),
	}
}

func (d *PNGDisplay) Size() image.Point { return image.Pt(d.Width, d.Height) }

func (d *PNGDisplay) Pointer() image.Point { return d.PointerAt }

func (d *PNGDisplay) PollEvents() []Event {
	if len(d.Script) == 0 {
		return []Event{{Kind: Quit}}
	}
	events := d.Script[0]
	d.Script = d.Script[1:]
	return events
}

func (d *PNGDisplay) Present(frame *image.RGBA) error {
	d.last = frame
	d.frames++
	if d.Dir == "" {
		return nil
	}
	filename := filepath.Join(d.Dir, fmt.Sprintf("frame_%04d.png", d.frames))
	if err := WritePNG(filename, frame); err != nil {
		return err
	}
	lattice.Debugf("Wrote %s\n", filename)
	return nil
}

// Frames returns the number of frames presented.
func (d *PNGDisplay) Frames() int { return d.frames }

// Last returns the last frame presented.
func (d *PNGDisplay) Last() *image.RGBA { return d.last }

// WritePNG writes an image to a PNG file.
func WritePNG(filename string, img image.Image) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("unable to encode %s: %v", filename, err)
	}
	return f.Close()
}

// ParseScript parses scripted input.  Frames are separated by ";" and events within a
// frame by ",".  A key name presses the key and a key name prefixed with "^" releases
// it, e.g. "right,right;shift,x;;^x,^shift".
func ParseScript(s string) ([][]Event, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var script [][]Event
	for _, frame := range strings.Split(s, ";") {
		events := []Event{}
		for _, token := range strings.Split(frame, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			kind := KeyDown
			if strings.HasPrefix(token, "^") && len(token) > 1 {
				kind = KeyUp
				token = token[1:]
			}
			if token == "quit" {
				events = append(events, Event{Kind: Quit})
				continue
			}
			key, err := view.ParseKey(token)
			if err != nil {
				return nil, err
			}
			events = append(events, Event{Kind: kind, Key: key})
		}
		script = append(script, events)
	}
	return script, nil
}
