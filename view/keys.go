package view

import (
	"fmt"
	"strings"
)

// Key is a viewer control independent of any windowing toolkit.
type Key uint8

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyDepthDown      // z
	KeyDepthUp        // x
	KeyShift          // held modifier for continuous depth stepping
	KeyReset          // f
	KeyRotateAxis     // a
	KeyRotateAxisBack // s
	KeyZoomIn         // + or =
	KeyZoomOut        // -
)

var keyNames = map[Key]string{
	KeyNone:           "none",
	KeyLeft:           "left",
	KeyRight:          "right",
	KeyUp:             "up",
	KeyDown:           "down",
	KeyDepthDown:      "z",
	KeyDepthUp:        "x",
	KeyShift:          "shift",
	KeyReset:          "f",
	KeyRotateAxis:     "a",
	KeyRotateAxisBack: "s",
	KeyZoomIn:         "+",
	KeyZoomOut:        "-",
}

func (k Key) String() string {
	if name, found := keyNames[k]; found {
		return name
	}
	return fmt.Sprintf("key(%d)", uint8(k))
}

// ParseKey returns the control bound to a key name.  Key names are case-insensitive
// and "=" is accepted for zoom in so the unshifted plus key works.
func ParseKey(s string) (Key, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "=", "plus":
		return KeyZoomIn, nil
	case "minus":
		return KeyZoomOut, nil
	case "lshift", "rshift":
		return KeyShift, nil
	}
	for k, kname := range keyNames {
		if k != KeyNone && kname == name {
			return k, nil
		}
	}
	return KeyNone, fmt.Errorf("unknown key %q", s)
}
