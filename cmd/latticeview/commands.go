package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/latticeview/latticeview/app"
	"github.com/latticeview/latticeview/chunkstore"
	"github.com/latticeview/latticeview/classify"
	"github.com/latticeview/latticeview/lattice"
	"github.com/latticeview/latticeview/storage"
)

// Version of latticeview.
const Version = "0.3.0"

func openDataset(config *app.Config) (*app.Dataset, error) {
	settings, err := config.StoreSettings(*storeAlias)
	if err != nil {
		return nil, err
	}
	if *numWorkers > 0 {
		settings.Workers = *numWorkers
	}
	lattice.Debugf("Opening %s\n", settings)
	return app.OpenDataset(settings)
}

// DoInit writes the default configuration to a new file.
func DoInit(args []string) error {
	filename := "latticeview.toml"
	if len(args) > 0 {
		filename = args[0]
	}
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("config file %q already exists", filename)
	}
	if err := app.DefaultConfig().WriteConfig(filename); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote default configuration to %s\n", filename)
	return nil
}

// DoAbout prints the version and the available engines and classifiers.
func DoAbout() error {
	fmt.Fprintf(stdout, "latticeview %s\n", Version)
	fmt.Fprintln(stdout, "Storage engines:")
	for _, name := range storage.EnginesAvailable() {
		engine, err := storage.GetEngine(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "  %s: %s\n", engine, engine.GetDescription())
	}
	fmt.Fprintf(stdout, "Classifiers: %s\n", strings.Join(classify.Names(), ", "))
	return nil
}

// DoCompute computes the next n frontier chunks.
func DoCompute(ctx context.Context, config *app.Config, args []string) error {
	n := 1
	if len(args) > 0 {
		var err error
		if n, err = strconv.Atoi(args[0]); err != nil || n < 1 {
			return fmt.Errorf("bad number of chunks %q", args[0])
		}
	}
	ds, err := openDataset(config)
	if err != nil {
		return err
	}
	defer ds.Close()

	computed, err := ds.ComputeChunks(ctx, n, ds.Settings.Workers)
	for _, index := range computed {
		fmt.Fprintf(stdout, "computed %s\n", index)
	}
	return err
}

// DoList prints the computed chunks in lexicographic order.
func DoList(ctx context.Context, config *app.Config) error {
	ds, err := openDataset(config)
	if err != nil {
		return err
	}
	defer ds.Close()

	computed, err := ds.ListComputedChunks(ctx)
	if err != nil {
		return err
	}
	for _, index := range computed.Sorted() {
		fmt.Fprintln(stdout, index)
	}
	fmt.Fprintf(stdout, "%d chunks of extent %s in %s\n", len(computed),
		chunkstore.ExtentString(ds.Extent()), ds.Settings.Alias)
	return nil
}

// DoNext prints the chunk the next computation would fill.
func DoNext(ctx context.Context, config *app.Config) error {
	ds, err := openDataset(config)
	if err != nil {
		return err
	}
	defer ds.Close()

	index, err := ds.NextChunk(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, index)
	return nil
}

// DoPick prints the stored label of a lattice point and the curve it stands for.  Points
// in chunks not yet computed are shown with the unknown label.
func DoPick(ctx context.Context, config *app.Config, args []string) error {
	ds, err := openDataset(config)
	if err != nil {
		return err
	}
	defer ds.Close()

	if len(args) != int(ds.Dims()) {
		return fmt.Errorf("pick needs %d coordinates, got %d", ds.Dims(), len(args))
	}
	p, err := lattice.StringToPoint(strings.Join(args, ","), ",")
	if err != nil {
		return err
	}
	index, local := lattice.ChunkIndexOf(p, ds.Extent())
	label := lattice.UnknownLabel
	data, err := ds.GetChunkData(ctx, index)
	switch {
	case err == nil:
		label = data.Label(local, ds.DefaultLabel())
	case errors.Is(err, chunkstore.ErrChunkNotFound):
	default:
		return err
	}
	fmt.Fprintf(stdout, "%s in chunk %s: %s\n", p, index, label)
	fmt.Fprintln(stdout, classify.CurveAt(p).Equation())
	return nil
}

// DoRender runs the viewer on a headless display, writing every frame as a PNG file.
// Without -keys a single frame is rendered.
func DoRender(ctx context.Context, config *app.Config) error {
	ds, err := openDataset(config)
	if err != nil {
		return err
	}
	defer ds.Close()

	script, err := app.ParseScript(*keyScript)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}
	display := app.NewPNGDisplay(config.View.Width, config.View.Height, *outDir, script)
	viewer := app.NewViewer(ds, display, config.View)
	if *startAt != "" {
		pos, err := lattice.StringToPoint(*startAt, ",")
		if err != nil {
			return err
		}
		at := lattice.Lift3d(pos)
		viewer.Camera.SetPosition(at[0], at[1], at[2])
	}
	if err := viewer.Run(ctx); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Rendered %d frames to %s\n", display.Frames(), *outDir)
	return nil
}
