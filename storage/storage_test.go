package storage

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeview/latticeview/lattice"
)

// mapStore is a minimal Store used to exercise the registry and cache.
type mapStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	gets  int64
	block chan struct{}
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte)}
}

func (m *mapStore) String() string { return "map store" }

func (m *mapStore) Get(ctx context.Context, key string) ([]byte, error) {
	atomic.AddInt64(&m.gets, 1)
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, found := m.data[key]
	if !found {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *mapStore) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mapStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mapStore) Keys(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *mapStore) Close() error { return nil }

type mapEngine struct {
	store *mapStore
}

func (e mapEngine) GetName() string        { return "maptest" }
func (e mapEngine) GetDescription() string { return "map-backed test store" }
func (e mapEngine) String() string         { return "maptest [0.0.1]" }

func (e mapEngine) NewStore(config lattice.StoreConfig) (Store, bool, error) {
	return e.store, true, nil
}

func TestEngineRegistry(t *testing.T) {
	store := newMapStore()
	RegisterEngine(mapEngine{store})

	e, err := GetEngine("maptest")
	require.NoError(t, err)
	require.Equal(t, "map-backed test store", e.GetDescription())
	require.Contains(t, EnginesAvailable(), "maptest [0.0.1]")

	s, created, err := NewStore(lattice.StoreConfig{Config: lattice.NewConfig(), Engine: "maptest"})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, Store(store), s)

	_, err = GetEngine("no-such-engine")
	require.Error(t, err)
}

func TestGetPath(t *testing.T) {
	config := lattice.StoreConfig{Config: lattice.NewConfig(), Engine: "filestore"}
	_, _, err := GetPath(config)
	require.Error(t, err)

	config.Set("path", "chunks")
	path, testing, err := GetPath(config)
	require.NoError(t, err)
	require.False(t, testing)
	require.Equal(t, "chunks", path)

	config.Set("testing", true)
	path, testing, err = GetPath(config)
	require.NoError(t, err)
	require.True(t, testing)
	require.Equal(t, testPath("chunks"), path)

	config.Set("path", 42)
	_, _, err = GetPath(config)
	require.Error(t, err)
}

func TestValidKey(t *testing.T) {
	require.True(t, ValidKey("0_-1_100x100.json"))
	require.False(t, ValidKey(""))
	require.False(t, ValidKey(".."))
	require.False(t, ValidKey("a/b"))
	require.False(t, ValidKey(`a\b`))
}

func TestCachedStore(t *testing.T) {
	ctx := context.Background()
	backend := newMapStore()
	cached := NewCachedStore(backend, 0)

	_, err := cached.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, cached.Put(ctx, "a", []byte("alpha")))
	v, err := backend.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []byte("alpha"), v)

	gets := atomic.LoadInt64(&backend.gets)
	for i := 0; i < 5; i++ {
		v, err = cached.Get(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, []byte("alpha"), v)
	}
	require.Equal(t, gets, atomic.LoadInt64(&backend.gets), "cached reads should not reach backend")

	require.NoError(t, cached.Delete(ctx, "a"))
	_, err = cached.Get(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)

	stats := cached.Stats()
	require.Equal(t, int64(0), stats.Entries)
	require.True(t, stats.Hits >= 5)
	require.NotEmpty(t, stats.String())
}

func TestCachedStoreSharedMiss(t *testing.T) {
	ctx := context.Background()
	backend := newMapStore()
	require.NoError(t, backend.Put(ctx, "k", []byte("value")))
	backend.block = make(chan struct{})
	cached := NewCachedStore(backend, MinCacheBytes)

	const readers = 8
	var wg sync.WaitGroup
	errs := make(chan error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := cached.Get(ctx, "k")
			if err == nil && string(v) != "value" {
				err = fmt.Errorf("bad value %q", v)
			}
			errs <- err
		}()
	}
	// Wait until the first backend read is in flight, then release it.
	for atomic.LoadInt64(&backend.gets) == 0 {
		runtime.Gosched()
	}
	close(backend.block)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.True(t, cached.Stats().BackendReads <= readers)
	require.True(t, cached.Stats().BackendReads >= 1)
}
