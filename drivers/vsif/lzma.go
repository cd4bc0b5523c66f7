package vsif

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz/lzma"
)

const (
	LZMA_MAGIC       = "LZMA"
	LZMA_HEADER_SIZE = 4 + 4 + 4 + 5
	LZMA_PROPS_SIZE  = 5

	// largest record we agree to inflate
	LZMA_MAX_SIZE = 256 << 20
)

// CompressionError marks a record whose lzma envelope could not be unpacked.
type CompressionError struct {
	Err error
}

func (e *CompressionError) Error() string { return "bad compressed stream: " + e.Err.Error() }
func (e *CompressionError) Unwrap() error { return e.Err }

// LzmaHeader is the envelope in front of compressed records.
type LzmaHeader struct {
	ActualSize uint32
	LzmaSize   uint32
	Properties [LZMA_PROPS_SIZE]byte
}

func (h *LzmaHeader) FromBuf(b []byte) {
	h.ActualSize = binary.LittleEndian.Uint32(b[4:])
	h.LzmaSize = binary.LittleEndian.Uint32(b[8:])
	copy(h.Properties[:], b[12:LZMA_HEADER_SIZE])
}

func IsCompressed(data []byte) bool {
	return len(data) >= len(LZMA_MAGIC) && string(data[:len(LZMA_MAGIC)]) == LZMA_MAGIC
}

// Unwrap returns the record payload, decompressing it when it is lzma wrapped.
func Unwrap(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}
	if len(data) < LZMA_HEADER_SIZE {
		return nil, &CompressionError{Err: errors.Errorf("envelope header needs %d bytes, have %d", LZMA_HEADER_SIZE, len(data))}
	}

	var h LzmaHeader
	h.FromBuf(data)

	if h.ActualSize > LZMA_MAX_SIZE {
		return nil, &CompressionError{Err: errors.Errorf("declared size %d is too big", h.ActualSize)}
	}

	compressed := data[LZMA_HEADER_SIZE:]
	if uint64(h.LzmaSize) > uint64(len(compressed)) {
		return nil, &CompressionError{Err: errors.Errorf("payload of %d bytes, have %d", h.LzmaSize, len(compressed))}
	}
	if h.LzmaSize != 0 {
		compressed = compressed[:h.LzmaSize]
	}

	out, err := decompressLzma(h, compressed)
	if err != nil {
		return nil, &CompressionError{Err: err}
	}
	return out, nil
}

// decompressLzma reframes the envelope as a classic .lzma stream:
// 5 property bytes followed by the little-endian uncompressed size.
func decompressLzma(h LzmaHeader, compressed []byte) ([]byte, error) {
	var classic [LZMA_PROPS_SIZE + 8]byte
	copy(classic[:], h.Properties[:])
	binary.LittleEndian.PutUint64(classic[LZMA_PROPS_SIZE:], uint64(h.ActualSize))

	zr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(classic[:]), bytes.NewReader(compressed)))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lzma reader")
	}

	out := make([]byte, h.ActualSize)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, errors.Wrapf(err, "Failed to decompress %d bytes", h.ActualSize)
	}
	return out, nil
}
