package chunkstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/latticeview/latticeview/lattice"
)

// RecordName returns the storage key of a chunk record, e.g. "0_-1_2_100x100x100.json"
// or "3_4_20x20.msgp.zst".
func RecordName(index lattice.ChunkPoint, extent lattice.Point, format Format, compress lattice.Compression) string {
	var b strings.Builder
	for dim := uint8(0); dim < index.NumDims(); dim++ {
		b.WriteString(strconv.Itoa(int(index.Value(dim))))
		b.WriteByte('_')
	}
	b.WriteString(ExtentString(extent))
	b.WriteString(format.Extension())
	b.WriteString(compress.Extension())
	return b.String()
}

// ExtentString returns the extent portion of a record name, e.g. "100x100x100".
func ExtentString(extent lattice.SimplePoint) string {
	parts := make([]string, extent.NumDims())
	for dim := range parts {
		parts[dim] = strconv.Itoa(int(extent.Value(uint8(dim))))
	}
	return strings.Join(parts, "x")
}

// RecordInfo is the information encoded in a record name.
type RecordInfo struct {
	Index       lattice.ChunkPoint
	Extent      lattice.Point
	Format      Format
	Compression lattice.Compression
}

// ParseRecordName is the inverse of RecordName.
func ParseRecordName(name string) (info RecordInfo, err error) {
	base := name
	for _, c := range []lattice.Compression{lattice.Snappy, lattice.LZ4, lattice.Zstd} {
		if strings.HasSuffix(base, c.Extension()) {
			info.Compression = c
			base = strings.TrimSuffix(base, c.Extension())
			break
		}
	}
	var found bool
	for _, f := range []Format{JSON, Msgpack} {
		if strings.HasSuffix(base, f.Extension()) {
			info.Format = f
			base = strings.TrimSuffix(base, f.Extension())
			found = true
			break
		}
	}
	if !found {
		err = fmt.Errorf("record name %q has no known format extension", name)
		return
	}
	elems := strings.Split(base, "_")
	if len(elems) < 3 {
		err = fmt.Errorf("record name %q has too few components", name)
		return
	}
	n := len(elems) - 1
	if info.Extent, err = lattice.StringToPoint(elems[n], "x"); err != nil {
		err = fmt.Errorf("bad extent in record name %q: %v", name, err)
		return
	}
	if info.Index, err = lattice.StringToChunkPoint(strings.Join(elems[:n], "_"), "_"); err != nil {
		err = fmt.Errorf("bad chunk index in record name %q: %v", name, err)
		return
	}
	if info.Index.NumDims() != info.Extent.NumDims() {
		err = fmt.Errorf("record name %q mixes %d-d index with %d-d extent", name,
			info.Index.NumDims(), info.Extent.NumDims())
	}
	return
}
