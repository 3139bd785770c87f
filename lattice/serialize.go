/*
	This file supports serialization/deserialization and compression of data.
*/

package lattice

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"strings"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the format of compression for storing data.
// NOTE: Should be no more than 8 (3 bits) of compression types.
type Compression uint8

const (
	Uncompressed Compression = iota
	Snappy
	LZ4
	Zstd
)

func (compress Compression) String() string {
	switch compress {
	case Uncompressed:
		return "No compression"
	case Snappy:
		return "Go Snappy compression"
	case LZ4:
		return "Go LZ4 compression"
	case Zstd:
		return "Zstandard compression"
	default:
		return "Unknown compression"
	}
}

// Extension returns the file name suffix marking data with this compression.
func (compress Compression) Extension() string {
	switch compress {
	case Snappy:
		return ".sz"
	case LZ4:
		return ".lz4"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompression returns the compression named by a configuration string.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none", "uncompressed":
		return Uncompressed, nil
	case "snappy", "sz":
		return Snappy, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zst":
		return Zstd, nil
	default:
		return Uncompressed, fmt.Errorf("unknown compression %q", s)
	}
}

// CompressionFromExtension returns the compression marked by a file name suffix.
func CompressionFromExtension(ext string) (Compression, bool) {
	for _, c := range []Compression{Snappy, LZ4, Zstd} {
		if c.Extension() == ext {
			return c, true
		}
	}
	return Uncompressed, false
}

// Checksum is the type of checksum employed for error checking stored data.
// NOTE: Should be no more than 4 (2 bits) of checksum types.
type Checksum uint8

const (
	NoChecksum Checksum = iota
	CRC32
)

func (checksum Checksum) String() string {
	switch checksum {
	case NoChecksum:
		return "No checksum"
	case CRC32:
		return "CRC32 checksum"
	default:
		return "Unknown checksum"
	}
}

// SerializationFormat is a single byte combining both compression and checksum methods.
type SerializationFormat uint8

func EncodeSerializationFormat(compress Compression, checksum Checksum) SerializationFormat {
	a := (uint8(compress) & 0x07) << 5
	b := (uint8(checksum) & 0x03) << 3
	return SerializationFormat(a | b)
}

func DecodeSerializationFormat(s SerializationFormat) (compress Compression, checksum Checksum) {
	compress = Compression(uint8(s) >> 5)
	checksum = Checksum((uint8(s) >> 3) & 0x03)
	return
}

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		if zstdEncoder, zstdErr = zstd.NewWriter(nil); zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

// SerializeData serializes a slice of bytes using optional compression, checksum.
func SerializeData(data []byte, compress Compression, checksum Checksum) (s []byte, err error) {
	var buffer bytes.Buffer

	// Store the requested compression and checksum
	format := EncodeSerializationFormat(compress, checksum)
	if err = buffer.WriteByte(byte(format)); err != nil {
		return
	}

	// Handle compression if requested
	var byteData []byte
	switch compress {
	case Uncompressed:
		byteData = data
	case Snappy:
		byteData = snappy.Encode(nil, data)
	case LZ4:
		var lbuf bytes.Buffer
		zw := lz4.NewWriter(&lbuf)
		if _, err = zw.Write(data); err == nil {
			err = zw.Close()
		}
		byteData = lbuf.Bytes()
	case Zstd:
		var enc *zstd.Encoder
		if enc, _, err = zstdCodecs(); err == nil {
			byteData = enc.EncodeAll(data, nil)
		}
	default:
		err = fmt.Errorf("illegal compression (%s) during serialization", compress)
	}
	if err != nil {
		return
	}

	// Handle checksum if requested
	switch checksum {
	case NoChecksum:
	case CRC32:
		crcChecksum := crc32.ChecksumIEEE(byteData)
		err = binary.Write(&buffer, binary.LittleEndian, crcChecksum)
	default:
		err = fmt.Errorf("illegal checksum (%s) in SerializeData()", checksum)
	}
	if err == nil {
		// Note the actual data is written last, after any checksum so we don't have to
		// worry about length when deserializing.
		if _, err = buffer.Write(byteData); err == nil {
			s = buffer.Bytes()
		}
	}
	return
}

// DeserializeData deserializes a slice of bytes using stored compression, checksum.
func DeserializeData(s []byte) (data []byte, compress Compression, err error) {
	if len(s) == 0 {
		err = fmt.Errorf("cannot deserialize empty data")
		return
	}
	buffer := bytes.NewBuffer(s)

	// Get the stored compression and checksum
	formatByte, _ := buffer.ReadByte()
	var checksum Checksum
	compress, checksum = DecodeSerializationFormat(SerializationFormat(formatByte))

	// Get any checksum.
	var storedCrc32 uint32
	switch checksum {
	case NoChecksum:
	case CRC32:
		err = binary.Read(buffer, binary.LittleEndian, &storedCrc32)
	default:
		err = fmt.Errorf("illegal checksum in deserializing data")
	}
	if err != nil {
		return
	}

	// Get the possibly compressed data.
	cdata := buffer.Bytes()

	if checksum == CRC32 {
		if crcChecksum := crc32.ChecksumIEEE(cdata); crcChecksum != storedCrc32 {
			err = fmt.Errorf("bad checksum.  Stored %x got %x", storedCrc32, crcChecksum)
			return
		}
	}

	switch compress {
	case Uncompressed:
		data = cdata
	case Snappy:
		data, err = snappy.Decode(nil, cdata)
	case LZ4:
		data, err = io.ReadAll(lz4.NewReader(bytes.NewReader(cdata)))
	case Zstd:
		var dec *zstd.Decoder
		if _, dec, err = zstdCodecs(); err == nil {
			data, err = dec.DecodeAll(cdata, nil)
		}
	default:
		err = fmt.Errorf("illegal compression format (%d) in deserialization", compress)
	}
	return
}
