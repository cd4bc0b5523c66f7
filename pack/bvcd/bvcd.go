package bvcd

import (
	"io"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/drobotk/vsif2vcd/pack"
	"github.com/drobotk/vsif2vcd/vfs"
)

// Decompile turns one decompressed record into .vcd text.
// No text is produced unless the whole record decodes.
func Decompile(strs StringTable, data []byte) (string, error) {
	s, err := Decode(strs, data)
	if err != nil {
		return "", err
	}
	return s.Render(), nil
}

func init() {
	pack.SetHandler(".VCD", func(f vfs.File, r *io.SectionReader) (interface{}, error) {
		strs, ok := f.(StringTable)
		if !ok {
			return nil, errors.Errorf("[bvcd] '%s' has no string pool", f.Name())
		}
		data, err := ioutil.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return Decode(strs, data)
	})
}
