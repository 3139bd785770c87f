/*
Package chunkstore lazily computes a classification of lattice points chunk by chunk
and persists only the non-default labels of each chunk as an inverse index.
*/
package chunkstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/latticeview/latticeview/lattice"
	"github.com/latticeview/latticeview/storage"
)

// Options configure a Store.
type Options struct {
	// Extent is the per-axis chunk size.  Fixed for the life of the backend.
	Extent lattice.Point

	// DefaultLabel is never persisted.  Defaults to lattice.DefaultLabel.
	DefaultLabel lattice.Label

	// Format and Compression govern how new records are written.  Records in any
	// format can be read.
	Format      Format
	Compression lattice.Compression

	// Workers is the default number of classifier goroutines per chunk.  Zero or
	// less means one per CPU.
	Workers int
}

// Store computes, persists and loads chunks of one classification.
type Store struct {
	backend    storage.Store
	classifier Classifier

	extent       lattice.Point
	defaultLabel lattice.Label
	format       Format
	compression  lattice.Compression
	workers      int
}

// New returns a Store persisting chunk records to the backend.
func New(backend storage.Store, classifier Classifier, opts Options) (*Store, error) {
	if err := lattice.ValidateExtent(opts.Extent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadExtent, err)
	}
	if backend == nil {
		return nil, fmt.Errorf("no storage backend given for chunk store")
	}
	if opts.DefaultLabel == "" {
		opts.DefaultLabel = lattice.DefaultLabel
	}
	return &Store{
		backend:      backend,
		classifier:   classifier,
		extent:       opts.Extent,
		defaultLabel: opts.DefaultLabel,
		format:       opts.Format,
		compression:  opts.Compression,
		workers:      opts.Workers,
	}, nil
}

func (s *Store) String() string {
	return fmt.Sprintf("chunk store (extent %s, %s%s) on %s", ExtentString(s.extent),
		s.format, s.compression.Extension(), s.backend)
}

// Extent returns the per-axis chunk size.
func (s *Store) Extent() lattice.Point { return s.extent }

// DefaultLabel returns the label implied for points absent from a record.
func (s *Store) DefaultLabel() lattice.Label { return s.defaultLabel }

// Dims returns the dimensionality of the lattice.
func (s *Store) Dims() uint8 { return s.extent.NumDims() }

func (s *Store) checkIndex(index lattice.ChunkPoint) error {
	if index == nil || index.NumDims() != s.Dims() {
		return fmt.Errorf("%w: chunk index %v does not match %d-d extent %s", ErrBadExtent, index, s.Dims(), s.extent)
	}
	return nil
}

// classify returns the label of a point, mapping classifier errors and panics to
// lattice.Unclassifiable.
func (s *Store) classify(p lattice.Point) (label lattice.Label) {
	defer func() {
		if r := recover(); r != nil {
			lattice.Debugf("Classifier panic at %s: %v\n", p, r)
			label = lattice.Unclassifiable
		}
	}()
	label, err := s.classifier.Classify(p)
	if err != nil || label == "" {
		return lattice.Unclassifiable
	}
	return label
}

// ComputeChunk classifies every point of the target chunk using the given number of
// goroutines and persists the non-default labels as one record.  A nil target
// computes the next frontier chunk.  If the context is canceled nothing is written.
func (s *Store) ComputeChunk(ctx context.Context, target lattice.ChunkPoint, workers int) (lattice.ChunkPoint, error) {
	if s.classifier == nil {
		return nil, fmt.Errorf("chunk store has no classifier")
	}
	if target == nil {
		var err error
		if target, err = s.NextChunk(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.checkIndex(target); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = s.workers
	}
	if workers <= 0 {
		workers = lattice.NumCPU
	}

	timedLog := lattice.NewTimeLog()
	numPoints := int(s.extent.Prod())
	if workers > numPoints {
		workers = numPoints
	}
	origin := target.MinPoint(s.extent)
	labels := make([]lattice.Label, numPoints)

	var done int64
	progress := rate.Sometimes{Interval: time.Second}
	perWorker := (numPoints + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		begin := w * perWorker
		end := begin + perWorker
		if end > numPoints {
			end = numPoints
		}
		g.Go(func() error {
			for offset := begin; offset < end; offset++ {
				if offset%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				p := origin.Add(lattice.OffsetPoint(offset, s.extent))
				labels[offset] = s.classify(p)
				n := atomic.AddInt64(&done, 1)
				progress.Do(func() {
					lattice.Debugf("Chunk %s: %s of %s points classified\n", target,
						humanize.Comma(n), humanize.Comma(int64(numPoints)))
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &ChunkError{target, err}
	}
	// Check again since the last stripe may have finished before cancellation.
	if err := ctx.Err(); err != nil {
		return nil, &ChunkError{target, err}
	}

	// Offsets run in lexicographic point order so every list is built sorted.
	idx := make(InverseIndex)
	for offset, label := range labels {
		if label == s.defaultLabel {
			continue
		}
		idx[label] = append(idx[label], lattice.OffsetPoint(offset, s.extent))
	}

	record, err := encodeRecord(idx, s.format, s.compression)
	if err != nil {
		return nil, &ChunkError{target, err}
	}
	key := RecordName(target, s.extent, s.format, s.compression)
	if err := s.backend.Put(ctx, key, record); err != nil {
		return nil, &ChunkError{target, fmt.Errorf("unable to persist %q: %w", key, err)}
	}
	timedLog.Infof("Computed chunk %s with %d workers: %s of %s points in %d labels, %s record",
		target, workers, humanize.Comma(int64(idx.NumPoints())), humanize.Comma(int64(numPoints)),
		len(idx), humanize.Bytes(uint64(len(record))))
	return target, nil
}

// ComputeChunks computes the next n frontier chunks in turn and returns them.  On
// error the chunks computed so far are returned as well.
func (s *Store) ComputeChunks(ctx context.Context, n int, workers int) ([]lattice.ChunkPoint, error) {
	computed, err := s.ListComputedChunks(ctx)
	if err != nil {
		return nil, err
	}
	timedLog := lattice.NewTimeLog()
	var chunks []lattice.ChunkPoint
	for i := 0; i < n; i++ {
		target := NextFrontier(computed, s.Dims())
		if _, err := s.ComputeChunk(ctx, target, workers); err != nil {
			return chunks, err
		}
		computed.Add(target)
		chunks = append(chunks, target)
		lattice.Infof("Computed %d of %d chunks (%s total in store)\n", i+1, n, humanize.Comma(int64(len(computed))))
	}
	timedLog.Infof("Computed %d chunks", len(chunks))
	return chunks, nil
}

// recordKeys returns the candidate record names for a chunk, the configured
// encoding first.
func (s *Store) recordKeys(index lattice.ChunkPoint) []string {
	keys := []string{RecordName(index, s.extent, s.format, s.compression)}
	for _, f := range []Format{JSON, Msgpack} {
		for _, c := range []lattice.Compression{lattice.Uncompressed, lattice.Snappy, lattice.LZ4, lattice.Zstd} {
			if f == s.format && c == s.compression {
				continue
			}
			keys = append(keys, RecordName(index, s.extent, f, c))
		}
	}
	return keys
}

// GetChunkData loads the inverse index of a computed chunk.  Errors wrap
// ErrChunkNotFound if there is no record and ErrCorruptChunk if the record is bad.
func (s *Store) GetChunkData(ctx context.Context, index lattice.ChunkPoint) (InverseIndex, error) {
	if err := s.checkIndex(index); err != nil {
		return nil, err
	}
	for _, key := range s.recordKeys(index) {
		data, err := s.backend.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, &ChunkError{index, err}
		}
		info, err := ParseRecordName(key)
		if err != nil {
			return nil, &ChunkError{index, err}
		}
		idx, err := decodeRecord(data, info.Format, info.Compression, s.extent)
		if err != nil {
			return nil, &ChunkError{index, fmt.Errorf("record %q: %w", key, err)}
		}
		return idx, nil
	}
	return nil, &ChunkError{index, ErrChunkNotFound}
}

// GetAllChunkData loads every computed chunk.  Chunks that fail to load are left out
// of the returned map and their errors joined.
func (s *Store) GetAllChunkData(ctx context.Context) (map[lattice.ChunkPoint]InverseIndex, error) {
	computed, err := s.ListComputedChunks(ctx)
	if err != nil {
		return nil, err
	}
	all := make(map[lattice.ChunkPoint]InverseIndex, len(computed))
	var errs []error
	for _, index := range computed.Sorted() {
		idx, err := s.GetChunkData(ctx, index)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all[index] = idx
	}
	return all, errors.Join(errs...)
}

// ListComputedChunks returns the indices of all chunks with a record for this
// store's extent.
func (s *Store) ListComputedChunks(ctx context.Context) (lattice.ChunkSet, error) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to list records of %s: %w", s.backend, err)
	}
	computed := make(lattice.ChunkSet, len(keys))
	for _, key := range keys {
		info, err := ParseRecordName(key)
		if err != nil {
			lattice.Warningf("Ignoring record %q: %v\n", key, err)
			continue
		}
		if !lattice.EqualPoints(info.Extent, s.extent) {
			lattice.Warningf("Ignoring record %q with extent %s, store extent is %s\n", key, info.Extent, s.extent)
			continue
		}
		computed.Add(info.Index)
	}
	return computed, nil
}

// NextChunk returns the next chunk the frontier policy would compute.
func (s *Store) NextChunk(ctx context.Context) (lattice.ChunkPoint, error) {
	computed, err := s.ListComputedChunks(ctx)
	if err != nil {
		return nil, err
	}
	return NextFrontier(computed, s.Dims()), nil
}
