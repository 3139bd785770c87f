package filestore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeview/latticeview/lattice"
	"github.com/latticeview/latticeview/storage"
)

func newTestStore(t *testing.T) (storage.Store, string) {
	dir := filepath.Join(t.TempDir(), "records")
	config := lattice.StoreConfig{Config: lattice.NewConfig(), Engine: "filestore"}
	config.Set("path", dir)
	store, created, err := storage.NewStore(config)
	require.NoError(t, err)
	require.True(t, created)
	t.Cleanup(func() { store.Close() })
	return store, dir
}

func TestFileStoreBasics(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)

	_, err := store.Get(ctx, "0_0_2x2.json")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Put(ctx, "0_0_2x2.json", []byte(`{"Z2":[[0,1]]}`)))
	require.NoError(t, store.Put(ctx, "-1_0_2x2.json", []byte(`{}`)))
	require.NoError(t, store.Put(ctx, "0_0_2x2.json", []byte(`{"Z2":[[1,1]]}`)))

	v, err := store.Get(ctx, "0_0_2x2.json")
	require.NoError(t, err)
	require.Equal(t, `{"Z2":[[1,1]]}`, string(v))

	// Records are plain files named by key.
	raw, err := os.ReadFile(filepath.Join(dir, "0_0_2x2.json"))
	require.NoError(t, err)
	require.Equal(t, v, raw)

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	sort.Strings(keys)
	require.Equal(t, []string{"-1_0_2x2.json", "0_0_2x2.json"}, keys)

	require.NoError(t, store.Delete(ctx, "-1_0_2x2.json"))
	require.NoError(t, store.Delete(ctx, "-1_0_2x2.json"))
	keys, err = store.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"0_0_2x2.json"}, keys)
}

func TestFileStoreIgnoresPartialWrites(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, tempPrefix+"0_0_2x2.json-123"), []byte("{"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestFileStoreBadKeys(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.Error(t, store.Put(ctx, "../escape.json", []byte("x")))
	require.Error(t, store.Put(ctx, tempPrefix+"x", []byte("x")))
	_, err := store.Get(ctx, "a/b")
	require.Error(t, err)
}

func TestFileStoreReopen(t *testing.T) {
	ctx := context.Background()
	store, dir := newTestStore(t)
	require.NoError(t, store.Put(ctx, "1_1_2x2.json", []byte("{}")))

	config := lattice.StoreConfig{Config: lattice.NewConfig(), Engine: "filestore"}
	config.Set("path", dir)
	reopened, created, err := storage.NewStore(config)
	require.NoError(t, err)
	require.False(t, created)
	v, err := reopened.Get(ctx, "1_1_2x2.json")
	require.NoError(t, err)
	require.Equal(t, "{}", string(v))
	require.True(t, reopened.(*fileStore).Equal(config))
}
