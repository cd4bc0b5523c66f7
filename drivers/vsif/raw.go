package vsif

import (
	"encoding/binary"
)

const (
	MAGIC = "VSIF"

	RAW_HEADER_SIZE = 5 * 4

	// version 1 images have no scene summaries
	RAW_ENTRY_SIZE_V1 = 3 * 4
	RAW_ENTRY_SIZE    = 4 * 4
)

type Header struct {
	Magic         [4]byte
	Version       uint32
	NumScenes     uint32
	NumStrings    uint32
	EntriesOffset uint32
}

func (h *Header) FromBuf(b []byte) {
	copy(h.Magic[:], b[0:4])
	h.Version = binary.LittleEndian.Uint32(b[4:])
	h.NumScenes = binary.LittleEndian.Uint32(b[8:])
	h.NumStrings = binary.LittleEndian.Uint32(b[0xc:])
	h.EntriesOffset = binary.LittleEndian.Uint32(b[0x10:])
}

// EntrySize is the size of one directory record for this image version.
func (h *Header) EntrySize() int {
	if h.Version < 2 {
		return RAW_ENTRY_SIZE_V1
	}
	return RAW_ENTRY_SIZE
}

type Entry struct {
	Index         int    `json:"index" yaml:"index"`
	CRC           uint32 `json:"crc" yaml:"crc"`
	Offset        uint32 `json:"offset" yaml:"offset"`
	Length        uint32 `json:"length" yaml:"length"`
	SummaryOffset uint32 `json:"summary_offset,omitempty" yaml:"summary_offset,omitempty"`
}

func (e *Entry) FromBuf(b []byte, withSummary bool) {
	e.CRC = binary.LittleEndian.Uint32(b[0:])
	e.Offset = binary.LittleEndian.Uint32(b[4:])
	e.Length = binary.LittleEndian.Uint32(b[8:])
	if withSummary {
		e.SummaryOffset = binary.LittleEndian.Uint32(b[0xc:])
	}
}

// Summary is the precomputed scene info stored by version 2+ images.
type Summary struct {
	Msecs  uint32   `json:"msecs" yaml:"msecs"`
	Sounds []string `json:"sounds,omitempty" yaml:"sounds,omitempty"`
}
