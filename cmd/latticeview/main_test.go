package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeview/latticeview/lattice"
)

const cliConfig = `
[store.flat]
path = "flat"
extent = [3, 3]
classifier = "twotorsion"

[view]
width = 64
height = 48
pixel_scale = 8
fps = 500
`

func setupCLI(t *testing.T) (dir string, out *bytes.Buffer) {
	dir = t.TempDir()
	filename := filepath.Join(dir, "latticeview.toml")
	require.NoError(t, os.WriteFile(filename, []byte(cliConfig), 0644))

	out = new(bytes.Buffer)
	saved := stdout
	stdout = out
	*configFile = filename
	t.Cleanup(func() {
		stdout = saved
		*configFile = ""
		*keyScript = ""
		*outDir = "."
		*startAt = ""
	})
	return dir, out
}

func TestComputeListNextPick(t *testing.T) {
	_, out := setupCLI(t)
	ctx := context.Background()

	require.NoError(t, DoCommand(ctx, []string{"compute", "2"}))
	assert.Contains(t, out.String(), "computed "+lattice.ChunkPoint2d{0, 0}.String())
	assert.Contains(t, out.String(), "computed "+lattice.ChunkPoint2d{-1, -1}.String())

	out.Reset()
	require.NoError(t, DoCommand(ctx, []string{"list"}))
	assert.Contains(t, out.String(), "2 chunks of extent 3x3 in flat")

	out.Reset()
	require.NoError(t, DoCommand(ctx, []string{"next"}))
	assert.Equal(t, lattice.ChunkPoint2d{-1, 0}.String()+"\n", out.String())

	out.Reset()
	require.NoError(t, DoCommand(ctx, []string{"pick", "1", "0"}))
	assert.Contains(t, out.String(), ": Z2\n")
	assert.Contains(t, out.String(), "y² = x³ + x\n")

	out.Reset()
	require.NoError(t, DoCommand(ctx, []string{"pick", "10", "10"}))
	assert.Contains(t, out.String(), ": ?\n")

	assert.Error(t, DoCommand(ctx, []string{"pick", "1"}))
	assert.Error(t, DoCommand(ctx, []string{"compute", "zero"}))
	assert.Error(t, DoCommand(ctx, []string{"frobnicate"}))
	assert.Error(t, DoCommand(ctx, nil))
}

func TestRender(t *testing.T) {
	dir, out := setupCLI(t)
	ctx := context.Background()
	require.NoError(t, DoCommand(ctx, []string{"compute"}))

	*outDir = filepath.Join(dir, "frames")
	*keyScript = "right;a"
	*startAt = "1,1"
	require.NoError(t, DoCommand(ctx, []string{"render"}))
	assert.Contains(t, out.String(), "Rendered 3 frames")
	for _, name := range []string{"frame_0001.png", "frame_0002.png", "frame_0003.png"} {
		_, err := os.Stat(filepath.Join(*outDir, name))
		assert.NoError(t, err, name)
	}

	*keyScript = "right;bogus"
	assert.Error(t, DoCommand(ctx, []string{"render"}))
}

func TestInitAndAbout(t *testing.T) {
	dir, out := setupCLI(t)
	filename := filepath.Join(dir, "new.toml")
	require.NoError(t, DoCommand(context.Background(), []string{"init", filename}))
	_, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Error(t, DoCommand(context.Background(), []string{"init", filename}))

	out.Reset()
	require.NoError(t, DoCommand(context.Background(), []string{"about"}))
	assert.Contains(t, out.String(), "filestore [0.2.0]")
	assert.Contains(t, out.String(), "twotorsion")
}
