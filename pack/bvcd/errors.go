package bvcd

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrBadMagic = errors.New("bad magic")
	ErrBadIndex = errors.New("table index out of range")
)

// StructuralError makes the whole record undecodable.
type StructuralError struct {
	Offset int
	Err    error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("[bvcd] structural error at 0x%x: %v", e.Offset, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// FormatWarning is reported for records of an unexpected version.
// Decoding carries on with the known layout.
type FormatWarning struct {
	Version uint8
}

func (w *FormatWarning) Error() string {
	return fmt.Sprintf("[bvcd] unexpected version %d, expected %d", w.Version, VERSION)
}
