package names

import (
	"fmt"
	"strings"

	"github.com/drobotk/vsif2vcd/utils"
)

// Table maps record checksums back to scene names.
type Table struct {
	byCRC map[uint32]string
}

func NewTable(s Set) *Table {
	t := &Table{byCRC: make(map[uint32]string, len(s))}
	for name := range s {
		t.byCRC[utils.ValveCRC32String(name)] = name
	}
	return t
}

func (t *Table) Len() int { return len(t.byCRC) }

// Lookup returns the normalized name of crc.
func (t *Table) Lookup(crc uint32) (string, bool) {
	name, ok := t.byCRC[crc]
	return name, ok
}

// UnnamedPath is the output path of a record with no known name.
func UnnamedPath(crc uint32) string {
	return fmt.Sprintf("scenes/0x%x.vcd", crc)
}

// Path returns the slash separated output path of a record. Unnamed
// records get a checksum based path when all is set, otherwise ok is false.
func (t *Table) Path(crc uint32, all bool) (path string, named bool, ok bool) {
	if name, found := t.byCRC[crc]; found {
		return strings.ReplaceAll(name, `\`, "/"), true, true
	}
	if all {
		return UnnamedPath(crc), false, true
	}
	return "", false, false
}

// Name always returns a path, using the checksum for unknown records.
func (t *Table) Name(crc uint32) string {
	path, _, _ := t.Path(crc, true)
	return path
}
