/*
Package badger implements a storage.Store on top of BadgerDB, keeping every chunk
record of a store in one embedded key-value database.
*/
package badger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/blang/semver"
	"github.com/dgraph-io/badger/v3"

	"github.com/latticeview/latticeview/lattice"
	"github.com/latticeview/latticeview/storage"
)

const (
	// DefaultVersionsToKeep is the number of versions to keep per key.  Records are
	// replaced wholesale so only the latest is kept.
	DefaultVersionsToKeep = 1

	// DefaultSyncWrites is true if all writes are synced to disk, thereby making db resilient
	// at cost of speed.
	DefaultSyncWrites = false

	// syncInterval is how often unsynced writes are flushed.
	syncInterval = 30 * time.Second
)

func init() {
	ver, err := semver.Make("0.2.0")
	if err != nil {
		lattice.Errorf("Unable to make semver in badger: %v\n", err)
	}
	e := Engine{"badger", "BadgerDB", ver}
	storage.RegisterEngine(e)
}

// --- Engine Implementation ------

type Engine struct {
	name   string
	desc   string
	semver semver.Version
}

func (e Engine) GetName() string {
	return e.name
}

func (e Engine) GetDescription() string {
	return e.desc
}

func (e Engine) String() string {
	return fmt.Sprintf("%s [%s]", e.name, e.semver)
}

// NewStore returns a badger. The passed Config must contain "path" string unless
// "inmemory" is true.
func (e Engine) NewStore(config lattice.StoreConfig) (storage.Store, bool, error) {
	return e.newDB(config)
}

// Periodically sync to prevent too many writes from being buffered
// if process crashes.
func syncPeriodically(db *BadgerDB) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-db.stopSyncCh:
			lattice.Debugf("Stopping sync goroutine for badger @ %s\n", db.directory)
			return
		case <-ticker.C:
			if err := db.bdp.Sync(); err != nil {
				lattice.Errorf("Unable to sync badger @ %s: %v\n", db.directory, err)
			}
		}
	}
}

// newDB returns a Badger backend, creating one at path if it doesn't exist.
func (e Engine) newDB(config lattice.StoreConfig) (*BadgerDB, bool, error) {
	inMemory, _, err := config.GetBool("inmemory")
	if err != nil {
		return nil, false, err
	}
	var path string
	var created bool
	if inMemory {
		path = "(memory)"
		created = true
	} else {
		if path, _, err = storage.GetPath(config); err != nil {
			return nil, false, err
		}
		// Is there a database already at this path?  If not, create.
		if _, err := os.Stat(path); os.IsNotExist(err) {
			lattice.Infof("Database not already at path (%s). Creating directory...\n", path)
			created = true
			if err := os.MkdirAll(path, 0755); err != nil {
				return nil, true, fmt.Errorf("can't make directory at %s: %v", path, err)
			}
		}
	}

	opts, err := getOptions(path, config.Config)
	if err != nil {
		return nil, false, err
	}

	timedLog := lattice.NewTimeLog()
	bdp, err := badger.Open(opts)
	if err != nil {
		return nil, false, err
	}
	timedLog.Debugf("Opened badger @ %s", path)

	db := &BadgerDB{
		directory:  path,
		config:     config,
		bdp:        bdp,
		stopSyncCh: make(chan struct{}),
	}
	if !inMemory {
		go syncPeriodically(db)
	}
	return db, created, nil
}

// --- The BadgerDB Implementation must satisfy a storage.Store interface ----

type BadgerDB struct {
	// Directory of datastore
	directory string

	// Config at time of Open()
	config lattice.StoreConfig

	bdp *badger.DB

	closeOnce  sync.Once
	stopSyncCh chan struct{}
}

func (db *BadgerDB) String() string {
	return fmt.Sprintf("badger @ %s", db.directory)
}

// Close closes the BadgerDB
func (db *BadgerDB) Close() error {
	if db == nil || db.bdp == nil {
		return nil
	}
	var err error
	db.closeOnce.Do(func() {
		close(db.stopSyncCh)
		err = db.bdp.Close()
		lattice.Infof("Closed Badger DB @ %s\n", db.directory)
	})
	return err
}

// Equal returns true if the badger matches the given store configuration.
func (db *BadgerDB) Equal(config lattice.StoreConfig) bool {
	path, _, err := storage.GetPath(config)
	if err != nil {
		return false
	}
	return path == db.directory
}

// Get returns a value given a key.
func (db *BadgerDB) Get(ctx context.Context, key string) ([]byte, error) {
	if db == nil {
		return nil, fmt.Errorf("can't call Get on nil BadgerDB")
	}
	var v []byte
	err := db.bdp.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		v, err = item.ValueCopy(nil)
		return err
	})
	return v, err
}

// Put writes a value with given key in a single transaction.
func (db *BadgerDB) Put(ctx context.Context, key string, v []byte) error {
	if db == nil {
		return fmt.Errorf("can't call Put on nil BadgerDB")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.bdp.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), v)
	})
}

// Delete removes a value with given key.
func (db *BadgerDB) Delete(ctx context.Context, key string) error {
	if db == nil {
		return fmt.Errorf("can't call Delete on nil BadgerDB")
	}
	return db.bdp.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Keys returns all keys without reading values.
func (db *BadgerDB) Keys(ctx context.Context) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("can't call Keys on nil BadgerDB")
	}
	var keys []string
	err := db.bdp.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}
