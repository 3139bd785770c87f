package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/latticeview/latticeview/chunkstore"
	"github.com/latticeview/latticeview/classify"
	"github.com/latticeview/latticeview/lattice"
)

// storeConfig holds the settings of one [store.<alias>] table.  Keys not used by the
// chunk store are handed to the storage engine.
type storeConfig map[string]interface{}

type computeConfig struct {
	Workers int `toml:"workers"`
}

type viewConfig struct {
	Width          int `toml:"width"`
	Height         int `toml:"height"`
	PixelScale     int `toml:"pixel_scale"`
	FPS            int `toml:"fps"`
	Axis           int `toml:"axis"`
	Step           int `toml:"step"`
	RefreshSeconds int `toml:"refresh_seconds"`
}

// Config is the TOML configuration of latticeview.
type Config struct {
	// DefaultStore is the alias of the store used when none is named.
	DefaultStore string `toml:"default_store"`

	Store   map[string]storeConfig `toml:"store"`
	Compute computeConfig          `toml:"compute"`
	View    viewConfig             `toml:"view"`
	Logging lattice.LogConfig      `toml:"logging"`

	location string
}

// DefaultConfig returns the configuration used without a TOML file: a single 3d
// torsion store in the current directory.
func DefaultConfig() *Config {
	return &Config{
		DefaultStore: "torsion",
		Store: map[string]storeConfig{
			"torsion": {
				"engine":     "filestore",
				"path":       "torsion-data",
				"extent":     []interface{}{int64(100), int64(100), int64(100)},
				"classifier": "torsion",
			},
		},
		View: defaultView(),
	}
}

func defaultView() viewConfig {
	return viewConfig{
		Width:      1920,
		Height:     1080,
		PixelScale: 6,
		FPS:        30,
		Axis:       2,
		Step:       10,
	}
}

// LoadConfig reads a TOML configuration file.  Relative paths are taken relative to
// the directory of the file.
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		return nil, fmt.Errorf("no TOML configuration file provided")
	}
	c := &Config{View: defaultView()}
	if _, err := toml.DecodeFile(filename, c); err != nil {
		return nil, fmt.Errorf("could not decode TOML config: %v", err)
	}
	c.location = filename
	if err := c.convertPathsToAbsolute(filename); err != nil {
		return nil, fmt.Errorf("could not convert relative paths to absolute paths in TOML config: %v", err)
	}
	if len(c.Store) == 0 {
		return nil, fmt.Errorf("config %q has no [store.<name>] sections", filename)
	}
	lattice.Debugf("Loaded config %s: %v\n", filename, *c)
	return c, nil
}

// Location returns the file the configuration was loaded from, if any.
func (c *Config) Location() string {
	return c.location
}

// Some settings in the TOML can be given as relative paths.  Converts them in-place
// to absolute paths, assuming the given paths were relative to the TOML file's own
// directory.
func (c *Config) convertPathsToAbsolute(configPath string) error {
	var err error
	configDir := filepath.Dir(configPath)

	// [logging].logfile
	if c.Logging.Logfile != "" {
		c.Logging.Logfile, err = lattice.ConvertToAbsolute(c.Logging.Logfile, configDir)
		if err != nil {
			return fmt.Errorf("error converting logfile setting to absolute path")
		}
	}

	// [store.foobar].path
	for alias, sc := range c.Store {
		p, ok := sc["path"]
		if !ok {
			continue
		}
		path, ok := p.(string)
		if !ok {
			return fmt.Errorf("don't understand path setting for store %q", alias)
		}
		absPath, err := lattice.ConvertToAbsolute(path, configDir)
		if err != nil {
			return fmt.Errorf("error converting store.%s.path to absolute path: %q", alias, path)
		}
		sc["path"] = absPath
	}
	return nil
}

// Aliases returns the configured store names in sorted order.
func (c *Config) Aliases() []string {
	aliases := make([]string, 0, len(c.Store))
	for alias := range c.Store {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// StoreSettings are the parsed settings of one configured store.
type StoreSettings struct {
	Alias        string
	Extent       lattice.Point
	DefaultLabel lattice.Label
	Format       chunkstore.Format
	Compression  lattice.Compression
	CacheBytes   int
	Classifier   string
	Workers      int

	// Backend is the configuration handed to the storage engine.
	Backend lattice.StoreConfig
}

func (s StoreSettings) String() string {
	return fmt.Sprintf("store %q: %s classifier, extent %s, %s on %s", s.Alias, s.Classifier,
		chunkstore.ExtentString(s.Extent), s.Format, s.Backend)
}

// StoreSettings parses the settings of the named store.  An empty alias selects the
// default store, or the only store if there is just one.
func (c *Config) StoreSettings(alias string) (StoreSettings, error) {
	if alias == "" {
		alias = c.DefaultStore
	}
	if alias == "" {
		if len(c.Store) != 1 {
			return StoreSettings{}, fmt.Errorf("no store named and no default_store among: %s",
				strings.Join(c.Aliases(), ", "))
		}
		alias = c.Aliases()[0]
	}
	sc, found := c.Store[alias]
	if !found {
		return StoreSettings{}, fmt.Errorf("no store %q configured, available: %s", alias,
			strings.Join(c.Aliases(), ", "))
	}
	settings, err := parseStoreConfig(sc)
	if err != nil {
		return StoreSettings{}, fmt.Errorf("store %q: %v", alias, err)
	}
	settings.Alias = alias
	if settings.Workers == 0 {
		settings.Workers = c.Compute.Workers
	}
	return settings, nil
}

func parseStoreConfig(sc storeConfig) (settings StoreSettings, err error) {
	config := lattice.NewConfig()
	for key, value := range sc {
		config.Set(key, value)
	}

	engine, found, err := config.GetString("engine")
	if err != nil {
		return
	}
	if !found {
		engine = "filestore"
	}
	settings.Backend = lattice.StoreConfig{Config: config, Engine: engine}

	var extentFound bool
	if settings.Extent, extentFound, err = config.GetPoint("extent"); err != nil {
		return
	}
	if !extentFound {
		err = fmt.Errorf("no extent given")
		return
	}
	if err = lattice.ValidateExtent(settings.Extent); err != nil {
		return
	}

	var s string
	if s, found, err = config.GetString("default_label"); err != nil {
		return
	}
	settings.DefaultLabel = lattice.DefaultLabel
	if found && s != "" {
		settings.DefaultLabel = lattice.Label(s)
	}

	if s, _, err = config.GetString("format"); err != nil {
		return
	}
	if settings.Format, err = chunkstore.ParseFormat(s); err != nil {
		return
	}

	if s, _, err = config.GetString("compression"); err != nil {
		return
	}
	if settings.Compression, err = lattice.ParseCompression(s); err != nil {
		return
	}

	var mb int
	if mb, _, err = config.GetInt("cache_mb"); err != nil {
		return
	}
	if mb < 0 {
		err = fmt.Errorf("cache_mb must not be negative, got %d", mb)
		return
	}
	settings.CacheBytes = mb << 20

	if settings.Classifier, found, err = config.GetString("classifier"); err != nil {
		return
	}
	if !found {
		settings.Classifier = "torsion"
	}
	if _, err = classify.Get(settings.Classifier); err != nil {
		return
	}

	if settings.Workers, _, err = config.GetInt("workers"); err != nil {
		return
	}
	return settings, nil
}

// WriteConfig writes the configuration as TOML.
func (c *Config) WriteConfig(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
