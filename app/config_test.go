package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeview/latticeview/chunkstore"
	"github.com/latticeview/latticeview/lattice"
)

const testConfig = `
default_store = "torsion"

[store.torsion]
engine = "filestore"
path = "data/torsion"
extent = [100, 100, 100]
format = "msgp"
compression = "zstd"
cache_mb = 64

[store.flat]
engine = "badger"
path = "data/flat"
extent = [50, 40]
default_label = "none"
classifier = "TwoTorsion"
workers = 3

[compute]
workers = 8

[view]
width = 800
pixel_scale = 4

[logging]
logfile = "logs/latticeview.log"
max_log_size = 10
`

func writeConfig(t *testing.T, contents string) string {
	dir := t.TempDir()
	filename := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0644))
	return filename
}

func TestLoadConfig(t *testing.T) {
	filename := writeConfig(t, testConfig)
	dir := filepath.Dir(filename)

	c, err := LoadConfig(filename)
	require.NoError(t, err)
	assert.Equal(t, filename, c.Location())
	assert.Equal(t, []string{"flat", "torsion"}, c.Aliases())
	assert.Equal(t, filepath.Join(dir, "logs", "latticeview.log"), c.Logging.Logfile)
	assert.Equal(t, 10, c.Logging.MaxSize)

	// Unset view settings keep their defaults.
	assert.Equal(t, 800, c.View.Width)
	assert.Equal(t, 1080, c.View.Height)
	assert.Equal(t, 4, c.View.PixelScale)
	assert.Equal(t, 30, c.View.FPS)

	torsion, err := c.StoreSettings("")
	require.NoError(t, err)
	assert.Equal(t, "torsion", torsion.Alias)
	assert.Equal(t, lattice.Point3d{100, 100, 100}, torsion.Extent)
	assert.Equal(t, lattice.DefaultLabel, torsion.DefaultLabel)
	assert.Equal(t, chunkstore.Msgpack, torsion.Format)
	assert.Equal(t, lattice.Zstd, torsion.Compression)
	assert.Equal(t, 64<<20, torsion.CacheBytes)
	assert.Equal(t, "torsion", torsion.Classifier)
	assert.Equal(t, 8, torsion.Workers)
	assert.Equal(t, "filestore", torsion.Backend.Engine)
	path, _, err := torsion.Backend.GetString("path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "torsion"), path)

	flat, err := c.StoreSettings("flat")
	require.NoError(t, err)
	assert.Equal(t, lattice.Point2d{50, 40}, flat.Extent)
	assert.Equal(t, lattice.Label("none"), flat.DefaultLabel)
	assert.Equal(t, chunkstore.JSON, flat.Format)
	assert.Equal(t, lattice.Uncompressed, flat.Compression)
	assert.Equal(t, 0, flat.CacheBytes)
	assert.Equal(t, 3, flat.Workers)
	assert.Equal(t, "badger", flat.Backend.Engine)

	_, err = c.StoreSettings("missing")
	assert.Error(t, err)
}

func TestStoreSelection(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, `
[store.only]
path = "x"
extent = [4, 4]
`))
	require.NoError(t, err)
	settings, err := c.StoreSettings("")
	require.NoError(t, err)
	assert.Equal(t, "only", settings.Alias)
	assert.Equal(t, "filestore", settings.Backend.Engine)

	c, err = LoadConfig(writeConfig(t, `
[store.a]
path = "a"
extent = [4, 4]

[store.b]
path = "b"
extent = [4, 4]
`))
	require.NoError(t, err)
	_, err = c.StoreSettings("")
	assert.Error(t, err)
	_, err = c.StoreSettings("b")
	assert.NoError(t, err)
}

func TestBadStoreConfigs(t *testing.T) {
	for name, table := range map[string]string{
		"no extent":          `path = "x"`,
		"zero extent":        "path = \"x\"\nextent = [0, 4]",
		"4d extent":          "path = \"x\"\nextent = [4, 4, 4, 4]",
		"string extent":      "path = \"x\"\nextent = \"4x4\"",
		"unknown classifier": "path = \"x\"\nextent = [4, 4]\nclassifier = \"rank\"",
		"bad compression":    "path = \"x\"\nextent = [4, 4]\ncompression = \"gzip\"",
		"bad format":         "path = \"x\"\nextent = [4, 4]\nformat = \"xml\"",
		"negative cache":     "path = \"x\"\nextent = [4, 4]\ncache_mb = -1",
		"wrapping extent":    "path = \"x\"\nextent = [4294967297, 2, 2]",
	} {
		c, err := LoadConfig(writeConfig(t, "[store.s]\n"+table+"\n"))
		require.NoError(t, err, name)
		_, err = c.StoreSettings("s")
		assert.Error(t, err, name)
	}

	_, err := LoadConfig(writeConfig(t, "[view]\nwidth = 10\n"))
	assert.Error(t, err)
	_, err = LoadConfig(writeConfig(t, "[store.s\n"))
	assert.Error(t, err)
	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "latticeview.toml")
	require.NoError(t, DefaultConfig().WriteConfig(filename))

	c, err := LoadConfig(filename)
	require.NoError(t, err)
	settings, err := c.StoreSettings("")
	require.NoError(t, err)
	assert.Equal(t, "torsion", settings.Alias)
	assert.Equal(t, lattice.Point3d{100, 100, 100}, settings.Extent)
	assert.Equal(t, 1920, c.View.Width)
}
