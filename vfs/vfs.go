package vfs

import (
	"io"
)

// Element is an entry of a scene image or a host directory.
// Implementations keep only the name until the entry is opened or listed.
type Element interface {
	Name() string
	IsDirectory() bool
}

// File is read only. Records are decompressed on Open, so Size may change
// after the first Open.
type File interface {
	Element
	Size() int64
	Open() error
	Close() error
	Reader() (*io.SectionReader, error)
}

type Directory interface {
	Element
	List() ([]string, error)
	GetElement(name string) (Element, error)
}

// Output receives decompiled scenes. Names use forward slashes.
type Output interface {
	Exists(name string) bool
	WriteFile(name string, data []byte) error
}
