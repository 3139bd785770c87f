/*
Package filestore implements a simple file-based store that fulfills the
storage.Store interface.  Each record is a single file named by its key within
one flat directory so the directory can be browsed and copied by hand.
*/
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/janelia-flyem/go/semver"

	"github.com/latticeview/latticeview/lattice"
	"github.com/latticeview/latticeview/storage"
)

// tempPrefix marks in-progress writes that are never reported as keys.
const tempPrefix = ".tmp-"

func init() {
	ver, err := semver.Make("0.2.0")
	if err != nil {
		lattice.Errorf("Unable to make semver in filestore: %v\n", err)
	}
	e := Engine{"filestore", "File-based record store", ver}
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

// NewStore returns a file-based store. The passed Config must contain "path" setting.
func (e Engine) NewStore(config lattice.StoreConfig) (storage.Store, bool, error) {
	return e.newStore(config)
}

type fileStore struct {
	path   string
	config lattice.StoreConfig
}

// newStore returns a file-based store, insuring a directory at the path.
func (e Engine) newStore(config lattice.StoreConfig) (*fileStore, bool, error) {
	path, _, err := storage.GetPath(config)
	if err != nil {
		return nil, false, err
	}

	var created bool
	if _, err := os.Stat(path); os.IsNotExist(err) {
		lattice.Infof("File store not already at path (%s). Creating ...\n", path)
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, false, err
		}
		created = true
	} else if err != nil {
		return nil, false, err
	} else {
		lattice.Debugf("Found file store at %s\n", path)
	}

	store := &fileStore{
		path:   path,
		config: config,
	}
	return store, created, nil
}

// ---- Store interface ------

func (fs *fileStore) String() string {
	return fmt.Sprintf("file store @ %s", fs.path)
}

func (fs *fileStore) Close() error { return nil }

// Equal returns true if the configuration refers to this store.
func (fs *fileStore) Equal(config lattice.StoreConfig) bool {
	path, _, err := storage.GetPath(config)
	if err != nil {
		return false
	}
	return path == fs.path
}

func (fs *fileStore) filepath(key string) (string, error) {
	if !storage.ValidKey(key) || strings.HasPrefix(key, tempPrefix) {
		return "", fmt.Errorf("bad record key %q for %s", key, fs)
	}
	return filepath.Join(fs.path, key), nil
}

// Get returns a value given a key.
func (fs *fileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if fs == nil {
		return nil, fmt.Errorf("bad fileStore specified for Get of %q", key)
	}
	fpath, err := fs.filepath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fpath)
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	return data, err
}

// Put writes a value with given key.  The value is written to a temporary file in
// the store directory that is then renamed over any existing record.
func (fs *fileStore) Put(ctx context.Context, key string, v []byte) error {
	if fs == nil {
		return fmt.Errorf("bad fileStore specified for Put of %q", key)
	}
	fpath, err := fs.filepath(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.CreateTemp(fs.path, tempPrefix+key+"-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	cleanup := func() {
		f.Close()
		os.Remove(tmpName)
	}
	if _, err := f.Write(v); err != nil {
		cleanup()
		return err
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, fpath); err != nil {
		os.Remove(tmpName)
		return err
	}
	return syncDir(fs.path)
}

// syncDir makes a rename durable.  Some platforms do not support fsync on
// directories so failures there are only logged.
func syncDir(path string) error {
	d, err := os.Open(path)
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		lattice.Debugf("Unable to sync directory %s: %v\n", path, err)
	}
	return nil
}

// Delete removes a value with given key.
func (fs *fileStore) Delete(ctx context.Context, key string) error {
	if fs == nil {
		return fmt.Errorf("bad fileStore specified for Delete of %q", key)
	}
	fpath, err := fs.filepath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fpath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Keys returns the names of all regular files in the store directory except
// in-progress writes.
func (fs *fileStore) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(fs.path)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		keys = append(keys, entry.Name())
	}
	return keys, nil
}
