package vsif

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/drobotk/vsif2vcd/names"
	"github.com/drobotk/vsif2vcd/utils"
	"github.com/drobotk/vsif2vcd/vfs"
)

// Namer picks the file name shown for a record checksum.
type Namer func(crc uint32) string

func DefaultNamer(crc uint32) string {
	return names.UnnamedPath(crc)
}

// Vsif exposes the records of a scene image as a read-only vfs directory.
type Vsif struct {
	f      vfs.File
	img    *Image
	names  []string
	byName map[string]int
}

// Rename names every record again, for when names become known after
// the image was opened.
func (v *Vsif) Rename(namer Namer) {
	if namer == nil {
		namer = DefaultNamer
	}
	v.names = make([]string, len(v.img.entries))
	v.byName = make(map[string]int, len(v.img.entries))
	for i, e := range v.img.entries {
		name := namer(e.CRC)
		if _, dup := v.byName[name]; dup {
			ext := path.Ext(name)
			name = fmt.Sprintf("%s#%d%s", strings.TrimSuffix(name, ext), i, ext)
		}
		v.names[i] = name
		v.byName[name] = i
	}
}

// NewVsifDriver reads the whole image file and parses its directory.
func NewVsifDriver(f vfs.File, namer Namer) (*Vsif, error) {
	r, err := vfs.OpenFileAndGetReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "[vsif] Failed to get reader of '%s'", f.Name())
	}
	defer f.Close()

	raw, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "[vsif] Failed to read '%s'", f.Name())
	}

	img, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	utils.LogDebugf("[vsif] %s header:\n%s", f.Name(), utils.SDump(img.h))

	return NewVsifDriverFromImage(f, img, namer), nil
}

func NewVsifDriverFromImage(f vfs.File, img *Image, namer Namer) *Vsif {
	v := &Vsif{f: f, img: img}
	v.Rename(namer)
	return v
}

func (v *Vsif) Image() *Image { return v.img }

func (v *Vsif) EntryName(index int) string { return v.names[index] }

func (v *Vsif) Entry(name string) (Entry, bool) {
	if i, ok := v.byName[name]; ok {
		return v.img.entries[i], true
	}
	return Entry{}, false
}

// interface vfs.Element
func (v *Vsif) IsDirectory() bool { return true }
func (v *Vsif) Name() string {
	if v.f == nil {
		return "scenes.image"
	}
	return v.f.Name()
}

// interface vfs.Directory
func (v *Vsif) List() ([]string, error) {
	result := make([]string, len(v.names))
	copy(result, v.names)
	sort.Strings(result)
	return result, nil
}

func (v *Vsif) GetElement(name string) (vfs.Element, error) {
	if i, ok := v.byName[name]; ok {
		return &File{v: v, e: v.img.entries[i], name: name}, nil
	}
	return nil, os.ErrNotExist
}
