package app

import (
	"context"
	"fmt"
	"time"

	"github.com/latticeview/latticeview/lattice"
	"github.com/latticeview/latticeview/view"
)

// Viewer runs the frame loop: compose the visible cross-section, draw the HUD, present
// the frame, advance the camera and apply input.  It never computes chunks; it only
// shows chunks already in the store.
type Viewer struct {
	Compositor *view.Compositor
	Camera     *view.Camera
	Display    Display

	// Dims is the dimensionality of the store being viewed.
	Dims         uint8
	DefaultLabel lattice.Label

	FPS int

	// RefreshEvery is how often newly computed chunks are loaded.  Zero loads chunks
	// only when the viewer starts.
	RefreshEvery time.Duration

	frames      int
	lastRefresh time.Time
}

// NewViewer returns a viewer of a dataset configured by the [view] settings.
func NewViewer(ds *Dataset, display Display, vc viewConfig) *Viewer {
	return &Viewer{
		Compositor:   view.NewCompositor(ds, lattice.DefaultPalette),
		Camera:       view.NewCamera(uint8(vc.Axis), int32(vc.Step), vc.PixelScale),
		Display:      display,
		Dims:         ds.Dims(),
		DefaultLabel: ds.DefaultLabel(),
		FPS:          vc.FPS,
		RefreshEvery: time.Duration(vc.RefreshSeconds) * time.Second,
	}
}

// Frames returns the number of frames shown.
func (v *Viewer) Frames() int { return v.frames }

// Refresh loads chunks computed since the last refresh.  Chunks that cannot be loaded
// are logged and left out of the view.
func (v *Viewer) Refresh(ctx context.Context) {
	v.lastRefresh = time.Now()
	added, err := v.Compositor.Refresh(ctx)
	if err != nil {
		lattice.Errorf("Some chunks could not be loaded: %v\n", err)
	}
	if added > 0 {
		lattice.Infof("Loaded %d chunks: %s\n", added, v.Compositor.Stats())
	}
}

// Frame renders and presents one frame, then applies input.  It returns true when the
// display asks to quit.
func (v *Viewer) Frame() (quit bool, err error) {
	cam := v.Camera
	screen := v.Display.Size()
	if screen.X <= 0 || screen.Y <= 0 {
		return false, fmt.Errorf("bad screen size %v", screen)
	}

	img := v.Compositor.View(cam.Position(), cam.ViewSize(screen), cam.Axis)
	frame := view.Resize(view.FlipVertical(img), screen.X, screen.Y)

	pointer := v.Display.Pointer()
	vp := cam.ScreenToLattice(pointer, screen)
	label := v.Compositor.Pick(vp, cam.Axis)
	NewHUD(cam, v.Dims, vp, label, v.DefaultLabel, pointer).Draw(frame)

	if err = v.Display.Present(frame); err != nil {
		return false, err
	}
	v.frames++

	cam.Update()
	for _, ev := range v.Display.PollEvents() {
		switch ev.Kind {
		case KeyDown:
			cam.KeyDown(ev.Key)
		case KeyUp:
			cam.KeyUp(ev.Key)
		case Quit:
			quit = true
		}
	}
	return quit, nil
}

// Run loads the computed chunks and shows frames at the configured rate until the
// display quits or the context is done.
func (v *Viewer) Run(ctx context.Context) error {
	fps := v.FPS
	if fps <= 0 {
		fps = 30
	}
	v.Refresh(ctx)

	timedLog := lattice.NewTimeLog()
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if v.RefreshEvery > 0 && time.Since(v.lastRefresh) >= v.RefreshEvery {
			v.Refresh(ctx)
		}
		quit, err := v.Frame()
		if err != nil {
			return err
		}
		if quit {
			fps := float64(v.frames) / timedLog.Elapsed().Seconds()
			timedLog.Infof("Viewer quit after %d frames (%.1f fps) with %s", v.frames, fps, v.Camera)
			return nil
		}
	}
}
