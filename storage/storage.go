/*
Package storage provides a unified interface to a number of storage engines that
hold chunk records.  Each engine registers itself at init time and is selected by
name through a lattice.StoreConfig.

Each storage engine must implement the Engine interface:

	NewStore(config lattice.StoreConfig) (Store, bool, error)

Records are opaque []byte at this level.  Keys are simple names like a file name
within a directory.  We assume serialization/deserialization occur above the
storage level.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/latticeview/latticeview/lattice"
)

// ErrNotFound is returned by a Store when no record exists for a key.
var ErrNotFound = errors.New("record not found")

// Engine is a storage engine that can create a storage instance, a Store.
type Engine interface {
	fmt.Stringer

	GetName() string
	GetDescription() string

	// NewStore returns a Store for the given configuration and whether it was
	// newly created.
	NewStore(lattice.StoreConfig) (s Store, created bool, err error)
}

// Store is a flat key-value namespace of records.  Implementations must be safe for
// concurrent use.
type Store interface {
	fmt.Stringer

	// Get returns the record for a key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the record for a key.  Readers never observe a partially written
	// record.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the record for a key.  Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all record keys in the store in no particular order.
	Keys(ctx context.Context) ([]string, error)

	Close() error
}

var (
	enginesMu    sync.RWMutex
	availEngines map[string]Engine
)

// RegisterEngine registers an Engine for selection by name in store configurations.
func RegisterEngine(e Engine) {
	enginesMu.Lock()
	defer enginesMu.Unlock()
	if availEngines == nil {
		availEngines = map[string]Engine{e.GetName(): e}
	} else {
		availEngines[e.GetName()] = e
	}
}

// GetEngine returns the registered Engine with the given name.
func GetEngine(name string) (Engine, error) {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	e, found := availEngines[name]
	if !found {
		return nil, fmt.Errorf("no storage engine %q available (compiled in: %v)", name, enginesLocked())
	}
	return e, nil
}

// EnginesAvailable returns a description of the available storage engines.
func EnginesAvailable() []string {
	enginesMu.RLock()
	defer enginesMu.RUnlock()
	return enginesLocked()
}

func enginesLocked() []string {
	var engines []string
	for _, e := range availEngines {
		engines = append(engines, e.String())
	}
	sort.Strings(engines)
	return engines
}

// NewStore creates a Store using the engine named by the configuration.
func NewStore(config lattice.StoreConfig) (Store, bool, error) {
	e, err := GetEngine(config.Engine)
	if err != nil {
		return nil, false, err
	}
	store, created, err := e.NewStore(config)
	if err != nil {
		return nil, false, fmt.Errorf("unable to open %s: %v", config, err)
	}
	lattice.Infof("Opened %s (created %t)\n", store, created)
	return store, created, nil
}

// GetPath returns the "path" setting of a store configuration, placing it under the
// OS temp directory when the "testing" setting is true.
func GetPath(config lattice.StoreConfig) (path string, testing bool, err error) {
	var found bool
	path, found, err = config.GetString("path")
	if err != nil {
		return
	}
	if !found {
		err = fmt.Errorf("%q must be specified for %s configuration", "path", config.Engine)
		return
	}
	if testing, _, err = config.GetBool("testing"); err != nil {
		return
	}
	if testing {
		path = testPath(path)
	}
	return
}
