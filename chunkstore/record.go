package chunkstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tinylib/msgp/msgp"

	"github.com/latticeview/latticeview/lattice"
)

// Format is the encoding of a chunk record body.
type Format uint8

const (
	// JSON records are human-inspectable: {"<label>": [[i,j,k], ...], ...}
	JSON Format = iota

	// Msgpack records hold the same map of label to coordinate lists in msgpack.
	Msgpack
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case Msgpack:
		return "msgp"
	default:
		return fmt.Sprintf("unknown format %d", f)
	}
}

// Extension returns the record name suffix for the format.
func (f Format) Extension() string {
	return "." + f.String()
}

// ParseFormat returns the format named by a configuration string.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return JSON, nil
	case "msgp", "msgpack":
		return Msgpack, nil
	default:
		return JSON, fmt.Errorf("unknown record format %q", s)
	}
}

// InverseIndex maps each non-default label of a chunk to the sorted in-chunk
// coordinates carrying that label.
type InverseIndex map[lattice.Label][]lattice.Point

// Labels returns the labels of the index in sorted order.
func (idx InverseIndex) Labels() []lattice.Label {
	labels := make([]lattice.Label, 0, len(idx))
	for label := range idx {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// NumPoints returns the number of points held in the index.
func (idx InverseIndex) NumPoints() int {
	var n int
	for _, pts := range idx {
		n += len(pts)
	}
	return n
}

// Label returns the label of an in-chunk point or the given default.
func (idx InverseIndex) Label(local lattice.Point, defaultLabel lattice.Label) lattice.Label {
	for label, pts := range idx {
		i := sort.Search(len(pts), func(i int) bool {
			return lattice.ComparePoints(pts[i], local) >= 0
		})
		if i < len(pts) && lattice.EqualPoints(pts[i], local) {
			return label
		}
	}
	return defaultLabel
}

const recordSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "chunk record",
	"type": "object",
	"additionalProperties": {
		"type": "array",
		"items": {
			"type": "array",
			"minItems": 2,
			"maxItems": 3,
			"items": {"type": "integer"}
		}
	}
}`

var recordValidator = jsonschema.MustCompileString("chunk-record.json", recordSchema)

// encodeRecord returns the record for an inverse index, compressed if requested.
// Labels and coordinate lists must already be sorted for byte-reproducible output.
func encodeRecord(idx InverseIndex, format Format, compress lattice.Compression) ([]byte, error) {
	var body []byte
	var err error
	switch format {
	case JSON:
		body, err = encodeJSON(idx)
	case Msgpack:
		body = encodeMsgpack(idx)
	default:
		err = fmt.Errorf("can't encode chunk record with %s", format)
	}
	if err != nil || compress == lattice.Uncompressed {
		return body, err
	}
	return lattice.SerializeData(body, compress, lattice.CRC32)
}

// decodeRecord parses a record and checks it against the chunk extent.
func decodeRecord(data []byte, format Format, compress lattice.Compression, extent lattice.Point) (InverseIndex, error) {
	body := data
	if compress != lattice.Uncompressed {
		var stored lattice.Compression
		var err error
		if body, stored, err = lattice.DeserializeData(data); err != nil {
			return nil, corruptf("%v", err)
		}
		if stored != compress {
			return nil, corruptf("record holds %s, expected %s", stored, compress)
		}
	}
	var idx InverseIndex
	var err error
	switch format {
	case JSON:
		idx, err = decodeJSON(body, extent.NumDims())
	case Msgpack:
		idx, err = decodeMsgpack(body, extent.NumDims())
	default:
		return nil, fmt.Errorf("can't decode chunk record with %s", format)
	}
	if err != nil {
		return nil, err
	}
	if err := idx.check(extent); err != nil {
		return nil, err
	}
	return idx, nil
}

// check sorts coordinate lists and verifies every coordinate lies in the chunk and
// carries only one label.
func (idx InverseIndex) check(extent lattice.Point) error {
	seen := make(map[int]lattice.Label, idx.NumPoints())
	for _, label := range idx.Labels() {
		pts := idx[label]
		sort.Slice(pts, func(i, j int) bool { return lattice.ComparePoints(pts[i], pts[j]) < 0 })
		for _, p := range pts {
			for dim := uint8(0); dim < extent.NumDims(); dim++ {
				if v := p.Value(dim); v < 0 || v >= extent.Value(dim) {
					return corruptf("point %s under label %q outside extent %s", p, label, extent)
				}
			}
			offset := lattice.LinearOffset(p, extent)
			if prev, found := seen[offset]; found {
				return corruptf("point %s under both label %q and %q", p, prev, label)
			}
			seen[offset] = label
		}
	}
	return nil
}

func encodeJSON(idx InverseIndex) ([]byte, error) {
	out := make(map[string][][]int32, len(idx))
	for label, pts := range idx {
		coords := make([][]int32, len(pts))
		for i, p := range pts {
			coords[i] = lattice.PointSlice(p)
		}
		out[string(label)] = coords
	}
	// encoding/json sorts map keys.
	return json.Marshal(out)
}

func decodeJSON(body []byte, dims uint8) (InverseIndex, error) {
	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, corruptf("bad json: %v", err)
	}
	if err := recordValidator.Validate(raw); err != nil {
		return nil, corruptf("%v", err)
	}
	if err := checkUniqueLabels(body); err != nil {
		return nil, err
	}
	var coords map[string][][]int32
	if err := json.Unmarshal(body, &coords); err != nil {
		return nil, corruptf("bad coordinates: %v", err)
	}
	idx := make(InverseIndex, len(coords))
	for label, list := range coords {
		pts := make([]lattice.Point, len(list))
		for i, c := range list {
			if len(c) != int(dims) {
				return nil, corruptf("%d-d coordinate %v in %d-d chunk", len(c), c, dims)
			}
			pts[i], _ = lattice.NewPoint(c)
		}
		idx[lattice.Label(label)] = pts
	}
	return idx, nil
}

// checkUniqueLabels rejects a JSON record that lists a label more than once, which a
// plain map decode would silently merge.
func checkUniqueLabels(body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	if _, err := dec.Token(); err != nil {
		return corruptf("bad json: %v", err)
	}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return corruptf("bad json: %v", err)
		}
		label, ok := tok.(string)
		if !ok {
			return corruptf("unexpected json token %v", tok)
		}
		if _, dup := seen[label]; dup {
			return corruptf("label %q repeated", label)
		}
		seen[label] = struct{}{}
		var list json.RawMessage
		if err := dec.Decode(&list); err != nil {
			return corruptf("bad json list for label %q: %v", label, err)
		}
	}
	return nil
}

func encodeMsgpack(idx InverseIndex) []byte {
	var b []byte
	b = msgp.AppendMapHeader(b, uint32(len(idx)))
	for _, label := range idx.Labels() {
		pts := idx[label]
		b = msgp.AppendString(b, string(label))
		b = msgp.AppendArrayHeader(b, uint32(len(pts)))
		for _, p := range pts {
			b = msgp.AppendArrayHeader(b, uint32(p.NumDims()))
			for dim := uint8(0); dim < p.NumDims(); dim++ {
				b = msgp.AppendInt32(b, p.Value(dim))
			}
		}
	}
	return b
}

func decodeMsgpack(b []byte, dims uint8) (InverseIndex, error) {
	nlabels, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, corruptf("bad msgpack map: %v", err)
	}
	if uint64(nlabels) > uint64(len(b)) {
		return nil, corruptf("msgpack record claims %d labels in %d bytes", nlabels, len(b))
	}
	idx := make(InverseIndex)
	values := make([]int32, dims)
	for l := uint32(0); l < nlabels; l++ {
		var label string
		if label, b, err = msgp.ReadStringBytes(b); err != nil {
			return nil, corruptf("bad msgpack label: %v", err)
		}
		var npts uint32
		if npts, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
			return nil, corruptf("bad msgpack list for label %q: %v", label, err)
		}
		if uint64(npts) > uint64(len(b)) {
			return nil, corruptf("msgpack list for label %q claims %d points in %d bytes", label, npts, len(b))
		}
		pts := make([]lattice.Point, npts)
		for i := range pts {
			var n uint32
			if n, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
				return nil, corruptf("bad msgpack coordinate: %v", err)
			}
			if n != uint32(dims) {
				return nil, corruptf("%d-d coordinate in %d-d chunk", n, dims)
			}
			for dim := range values {
				if values[dim], b, err = msgp.ReadInt32Bytes(b); err != nil {
					return nil, corruptf("bad msgpack coordinate value: %v", err)
				}
			}
			pts[i], _ = lattice.NewPoint(values)
		}
		if _, dup := idx[lattice.Label(label)]; dup {
			return nil, corruptf("label %q repeated", label)
		}
		idx[lattice.Label(label)] = pts
	}
	if len(b) != 0 {
		return nil, corruptf("%d trailing bytes after msgpack record", len(b))
	}
	return idx, nil
}
