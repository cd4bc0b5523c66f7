package vsif

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"

	"github.com/drobotk/vsif2vcd/utils"
)

var (
	ErrBadMagic  = errors.New("bad magic")
	ErrTruncated = errors.New("truncated image")
	ErrBadString = errors.New("bad string index")
)

// Image is a parsed scene image. It is read-only after Parse and
// may be shared between goroutines.
type Image struct {
	h       Header
	raw     []byte
	entries []Entry
}

func Parse(b []byte) (*Image, error) {
	if len(b) < 4 || string(b[:4]) != MAGIC {
		n := len(b)
		if n > 4 {
			n = 4
		}
		return nil, errors.Wrapf(ErrBadMagic, "[vsif] %q", utils.DumpToOneLineString(b[:n]))
	}
	if len(b) < RAW_HEADER_SIZE {
		return nil, errors.Wrapf(ErrTruncated, "[vsif] header needs 0x%x bytes, have 0x%x", RAW_HEADER_SIZE, len(b))
	}

	img := &Image{raw: b}
	img.h.FromBuf(b)

	if end := uint64(RAW_HEADER_SIZE) + uint64(img.h.NumStrings)*4; end > uint64(len(b)) {
		return nil, errors.Wrapf(ErrTruncated, "[vsif] string table of %d entries ends at 0x%x past 0x%x",
			img.h.NumStrings, end, len(b))
	}

	entrySize := img.h.EntrySize()
	if end := uint64(img.h.EntriesOffset) + uint64(img.h.NumScenes)*uint64(entrySize); end > uint64(len(b)) {
		return nil, errors.Wrapf(ErrTruncated, "[vsif] directory of %d entries ends at 0x%x past 0x%x",
			img.h.NumScenes, end, len(b))
	}

	img.entries = make([]Entry, img.h.NumScenes)
	for i := range img.entries {
		e := &img.entries[i]
		e.Index = i
		e.FromBuf(b[int(img.h.EntriesOffset)+i*entrySize:], entrySize == RAW_ENTRY_SIZE)
	}

	return img, nil
}

func (img *Image) Header() Header   { return img.h }
func (img *Image) Version() uint32  { return img.h.Version }
func (img *Image) Entries() []Entry { return img.entries }
func (img *Image) NumStrings() int  { return int(img.h.NumStrings) }
func (img *Image) Raw() []byte      { return img.raw }

// String resolves a string pool index. Index 0 conventionally holds the empty string.
func (img *Image) String(index int16) (string, error) {
	if index < 0 || uint32(index) >= img.h.NumStrings {
		return "", errors.Wrapf(ErrBadString, "[vsif] index %d of %d", index, img.h.NumStrings)
	}

	offset := binary.LittleEndian.Uint32(img.raw[RAW_HEADER_SIZE+int(index)*4:])
	if uint64(offset) >= uint64(len(img.raw)) {
		return "", errors.Wrapf(ErrBadString, "[vsif] index %d points to 0x%x past 0x%x", index, offset, len(img.raw))
	}

	end := bytes.IndexByte(img.raw[offset:], 0)
	if end < 0 {
		return "", errors.Wrapf(ErrBadString, "[vsif] index %d at 0x%x is not terminated", index, offset)
	}

	s, err := utils.BytesToString(img.raw[offset : int(offset)+end])
	if err != nil {
		return "", errors.Wrapf(ErrBadString, "[vsif] index %d: %v", index, err)
	}
	return s, nil
}

// RecordData returns the stored bytes of a record, possibly still compressed.
func (img *Image) RecordData(e Entry) ([]byte, error) {
	if end := uint64(e.Offset) + uint64(e.Length); end > uint64(len(img.raw)) {
		return nil, errors.Wrapf(ErrTruncated, "[vsif] record %d (crc 0x%x) ends at 0x%x past 0x%x",
			e.Index, e.CRC, end, len(img.raw))
	}
	return img.raw[e.Offset : e.Offset+e.Length], nil
}

// Summary decodes the scene summary of version 2+ images.
func (img *Image) Summary(e Entry) (*Summary, error) {
	if img.h.Version < 2 {
		return nil, errors.Errorf("[vsif] image version %d has no summaries", img.h.Version)
	}

	c := utils.NewCursor(fmt.Sprintf("summary %d", e.Index), img.raw)
	if err := c.Skip(int(e.SummaryOffset)); err != nil {
		return nil, errors.Wrapf(err, "[vsif] summary offset")
	}

	s := &Summary{}
	var err error
	if s.Msecs, err = c.ReadLU32(); err != nil {
		return nil, err
	}
	numSounds, err := c.ReadLU32()
	if err != nil {
		return nil, err
	}
	if err := c.Ensure(int(numSounds) * 4); err != nil {
		return nil, errors.Wrapf(err, "[vsif] %d summary sounds", numSounds)
	}

	s.Sounds = make([]string, 0, numSounds)
	for i := uint32(0); i < numSounds; i++ {
		idx, err := c.ReadLU32()
		if err != nil {
			return nil, err
		}
		if idx > 0x7fff {
			return nil, errors.Wrapf(ErrBadString, "[vsif] summary sound index %d", idx)
		}
		sound, err := img.String(int16(idx))
		if err != nil {
			return nil, err
		}
		s.Sounds = append(s.Sounds, sound)
	}

	return s, nil
}
