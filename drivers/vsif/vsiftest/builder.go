// Package vsiftest assembles small scene images for tests.
package vsiftest

import (
	"bytes"
	"encoding/binary"

	"github.com/ulikunitz/xz/lzma"
)

type record struct {
	crc    uint32
	data   []byte
	msecs  uint32
	sounds []int16
}

type Builder struct {
	Version uint32

	strings []string
	index   map[string]int16
	records []record
}

// NewBuilder starts an image whose string 0 is the empty string.
func NewBuilder(version uint32) *Builder {
	b := &Builder{Version: version, index: make(map[string]int16)}
	b.String("")
	return b
}

// String interns s in the string pool and returns its index.
func (b *Builder) String(s string) int16 {
	if i, ok := b.index[s]; ok {
		return i
	}
	i := int16(len(b.strings))
	b.strings = append(b.strings, s)
	b.index[s] = i
	return i
}

func (b *Builder) AddRecord(crc uint32, data []byte) {
	b.records = append(b.records, record{crc: crc, data: data})
}

func (b *Builder) AddRecordWithSummary(crc uint32, data []byte, msecs uint32, sounds ...string) {
	r := record{crc: crc, data: data, msecs: msecs}
	for _, s := range sounds {
		r.sounds = append(r.sounds, b.String(s))
	}
	b.records = append(b.records, r)
}

func (b *Builder) entrySize() int {
	if b.Version < 2 {
		return 12
	}
	return 16
}

func (b *Builder) Bytes() []byte {
	le := binary.LittleEndian

	entriesOffset := 20 + 4*len(b.strings)
	summariesOffset := entriesOffset + b.entrySize()*len(b.records)

	var summaries bytes.Buffer
	summaryOffsets := make([]int, len(b.records))
	for i, r := range b.records {
		summaryOffsets[i] = summariesOffset + summaries.Len()
		binary.Write(&summaries, le, r.msecs)
		binary.Write(&summaries, le, uint32(len(r.sounds)))
		for _, s := range r.sounds {
			binary.Write(&summaries, le, int32(s))
		}
	}
	if b.Version < 2 {
		summaries.Reset()
	}

	stringsOffset := summariesOffset + summaries.Len()
	var blob bytes.Buffer
	stringOffsets := make([]int, len(b.strings))
	for i, s := range b.strings {
		stringOffsets[i] = stringsOffset + blob.Len()
		blob.WriteString(s)
		blob.WriteByte(0)
	}

	recordsOffset := stringsOffset + blob.Len()

	var out bytes.Buffer
	out.WriteString("VSIF")
	binary.Write(&out, le, b.Version)
	binary.Write(&out, le, uint32(len(b.records)))
	binary.Write(&out, le, uint32(len(b.strings)))
	binary.Write(&out, le, uint32(entriesOffset))
	for _, off := range stringOffsets {
		binary.Write(&out, le, uint32(off))
	}

	dataOffset := recordsOffset
	for i, r := range b.records {
		binary.Write(&out, le, r.crc)
		binary.Write(&out, le, uint32(dataOffset))
		binary.Write(&out, le, uint32(len(r.data)))
		if b.Version >= 2 {
			binary.Write(&out, le, uint32(summaryOffsets[i]))
		}
		dataOffset += len(r.data)
	}

	out.Write(summaries.Bytes())
	out.Write(blob.Bytes())
	for _, r := range b.records {
		out.Write(r.data)
	}

	return out.Bytes()
}

// Compress wraps plain in the LZMA record envelope.
func Compress(plain []byte) ([]byte, error) {
	var classic bytes.Buffer
	w, err := lzma.WriterConfig{SizeInHeader: true, Size: int64(len(plain))}.NewWriter(&classic)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plain); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	// classic header: 5 property bytes + 8 size bytes
	raw := classic.Bytes()
	props, stream := raw[:5], raw[13:]

	var out bytes.Buffer
	out.WriteString("LZMA")
	binary.Write(&out, binary.LittleEndian, uint32(len(plain)))
	binary.Write(&out, binary.LittleEndian, uint32(len(stream)))
	out.Write(props)
	out.Write(stream)
	return out.Bytes(), nil
}

// EventRecord returns a version 4 bvcd record holding a single active
// expression event named name, with its strings interned in b.
func (b *Builder) EventRecord(name string) []byte {
	le := binary.LittleEndian
	var buf bytes.Buffer
	buf.WriteString("bvcd")
	buf.WriteByte(4)
	buf.Write([]byte{0, 0, 0, 0})

	// one event of kind 2 (expression), start 0, end 1, no params, no ramp
	buf.WriteByte(1)
	buf.WriteByte(2)
	binary.Write(&buf, le, b.String(name))
	binary.Write(&buf, le, float32(0))
	binary.Write(&buf, le, float32(1))
	binary.Write(&buf, le, [3]int16{})
	buf.WriteByte(0)
	// active flag, no distance
	buf.WriteByte(1 << 3)
	binary.Write(&buf, le, float32(0))
	// tags, flextimingtags, two absolute tag lists, relative tag, flex tracks
	buf.Write([]byte{0, 0, 0, 0, 0, 0})

	// actors, scene ramp
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}
