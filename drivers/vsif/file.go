package vsif

import (
	"bytes"
	"fmt"
	"io"

	"github.com/drobotk/vsif2vcd/vfs"
)

// File is one record of the image. Open unpacks the lzma envelope.
type File struct {
	v    *Vsif
	e    Entry
	name string
	buf  []byte
}

func (f *File) Entry() Entry { return f.e }

// String resolves indices into the string pool of the owning image.
func (f *File) String(index int16) (string, error) { return f.v.img.String(index) }

// interface vfs.Element
func (f *File) Name() string      { return f.name }
func (f *File) IsDirectory() bool { return false }

// interface vfs.File
func (f *File) Size() int64 {
	if f.buf != nil {
		return int64(len(f.buf))
	}
	return int64(f.e.Length)
}

func (f *File) Open() error {
	if f.buf != nil {
		return nil
	}

	raw, err := f.v.img.RecordData(f.e)
	if err != nil {
		return err
	}
	data, err := Unwrap(raw)
	if err != nil {
		return err
	}
	f.buf = data
	return nil
}

func (f *File) Close() error {
	f.buf = nil
	return nil
}

func (f *File) Bytes() []byte { return f.buf }

func (f *File) Reader() (*io.SectionReader, error) {
	if f.buf == nil {
		return nil, fmt.Errorf("First you need to open file")
	}
	return io.NewSectionReader(bytes.NewReader(f.buf), 0, int64(len(f.buf))), nil
}

var (
	_ vfs.File      = (*File)(nil)
	_ vfs.Directory = (*Vsif)(nil)
)
