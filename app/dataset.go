package app

import (
	"fmt"

	"github.com/latticeview/latticeview/chunkstore"
	"github.com/latticeview/latticeview/classify"
	"github.com/latticeview/latticeview/lattice"
	"github.com/latticeview/latticeview/storage"

	// Storage engines available to configured stores.
	_ "github.com/latticeview/latticeview/storage/badger"
	_ "github.com/latticeview/latticeview/storage/blobstore"
	_ "github.com/latticeview/latticeview/storage/filestore"
)

// Dataset is an opened chunk store together with the storage backing it.
type Dataset struct {
	*chunkstore.Store

	Settings StoreSettings

	backend storage.Store
	cache   *storage.CachedStore
}

// OpenDataset opens the storage engine named in the settings, wraps it with a record
// cache if one is configured, and returns a chunk store using the configured
// classifier.
func OpenDataset(settings StoreSettings) (*Dataset, error) {
	classifier, err := classify.Get(settings.Classifier)
	if err != nil {
		return nil, err
	}
	backend, created, err := storage.NewStore(settings.Backend)
	if err != nil {
		return nil, fmt.Errorf("store %q: %w", settings.Alias, err)
	}
	if created {
		lattice.Infof("Created new %s for store %q\n", backend, settings.Alias)
	}

	ds := &Dataset{
		Settings: settings,
		backend:  backend,
	}
	var records storage.Store = backend
	if settings.CacheBytes > 0 {
		ds.cache = storage.NewCachedStore(backend, settings.CacheBytes)
		records = ds.cache
	}
	ds.Store, err = chunkstore.New(records, classifier, chunkstore.Options{
		Extent:       settings.Extent,
		DefaultLabel: settings.DefaultLabel,
		Format:       settings.Format,
		Compression:  settings.Compression,
		Workers:      settings.Workers,
	})
	if err != nil {
		backend.Close()
		return nil, err
	}
	return ds, nil
}

// CacheStats returns the record cache statistics, or false if there is no cache.
func (ds *Dataset) CacheStats() (storage.CacheStats, bool) {
	if ds.cache == nil {
		return storage.CacheStats{}, false
	}
	return ds.cache.Stats(), true
}

// Close closes the storage backend.
func (ds *Dataset) Close() error {
	if stats, ok := ds.CacheStats(); ok {
		lattice.Debugf("Closing store %q: %s\n", ds.Settings.Alias, stats)
	}
	return ds.backend.Close()
}
