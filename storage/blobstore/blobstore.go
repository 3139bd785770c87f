/*
Package blobstore implements a storage.Store on a Go CDK blob bucket.  Local
directories ("path" setting) and any bucket URL with a registered driver ("url"
setting, e.g. mem:// or file:///data/chunks) are supported.
*/
package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/janelia-flyem/go/semver"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	"github.com/latticeview/latticeview/lattice"
	"github.com/latticeview/latticeview/storage"
)

func init() {
	ver, err := semver.Make("0.1.0")
	if err != nil {
		lattice.Errorf("Unable to make semver in blobstore: %v\n", err)
	}
	e := Engine{"blobstore", "Go CDK blob bucket", ver}
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

// NewStore returns a bucket-backed store.  The passed Config must contain either a
// "url" or a "path" setting.
func (e Engine) NewStore(config lattice.StoreConfig) (storage.Store, bool, error) {
	return e.newStore(config)
}

func (e Engine) newStore(config lattice.StoreConfig) (*blobStore, bool, error) {
	bucketURL, found, err := config.GetString("url")
	if err != nil {
		return nil, false, err
	}
	ctx := context.Background()
	var bucket *blob.Bucket
	var created bool
	if found {
		u, err := url.Parse(bucketURL)
		if err != nil {
			return nil, false, fmt.Errorf("bad bucket url %q: %v", bucketURL, err)
		}
		if u.Scheme == fileblob.Scheme {
			if created, err = ensureDir(u.Path); err != nil {
				return nil, false, err
			}
		}
		if u.Scheme == "mem" {
			created = true
		}
		if bucket, err = blob.OpenBucket(ctx, bucketURL); err != nil {
			return nil, false, err
		}
	} else {
		path, _, err := storage.GetPath(config)
		if err != nil {
			return nil, false, fmt.Errorf("blobstore needs %q or %q setting: %v", "url", "path", err)
		}
		if created, err = ensureDir(path); err != nil {
			return nil, false, err
		}
		bucketURL = path
		if bucket, err = fileblob.OpenBucket(path, nil); err != nil {
			return nil, false, err
		}
	}
	return &blobStore{bucket: bucket, location: bucketURL}, created, nil
}

func ensureDir(path string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		lattice.Infof("Bucket directory not already at path (%s). Creating ...\n", path)
		return true, os.MkdirAll(path, 0755)
	} else if err != nil {
		return false, err
	}
	return false, nil
}

type blobStore struct {
	bucket   *blob.Bucket
	location string
}

func (bs *blobStore) String() string {
	return fmt.Sprintf("blob store @ %s", bs.location)
}

func (bs *blobStore) Close() error {
	return bs.bucket.Close()
}

// Get returns a value given a key.
func (bs *blobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if !storage.ValidKey(key) {
		return nil, fmt.Errorf("bad record key %q for %s", key, bs)
	}
	data, err := bs.bucket.ReadAll(ctx, key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, storage.ErrNotFound
	}
	return data, err
}

// Put writes a value with given key.  Bucket writes become visible only when
// complete.
func (bs *blobStore) Put(ctx context.Context, key string, v []byte) error {
	if !storage.ValidKey(key) {
		return fmt.Errorf("bad record key %q for %s", key, bs)
	}
	return bs.bucket.WriteAll(ctx, key, v, nil)
}

// Delete removes a value with given key.
func (bs *blobStore) Delete(ctx context.Context, key string) error {
	err := bs.bucket.Delete(ctx, key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

// Keys lists the top-level objects of the bucket.
func (bs *blobStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := bs.bucket.List(&blob.ListOptions{Delimiter: "/"})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if obj.IsDir {
			continue
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}
