package utils

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestCursorReads(t *testing.T) {
	buf := []byte{
		0x7f,
		0xfe, 0xff,
		0x34, 0x12,
		0x00, 0x00, 0x80, 0x3f,
		0xaa, 0xbb,
	}
	c := NewCursor("test", buf)

	if v, err := c.ReadU8(); err != nil || v != 0x7f {
		t.Fatalf("ReadU8()=%v,%v", v, err)
	}
	if v, err := c.ReadLI16(); err != nil || v != -2 {
		t.Fatalf("ReadLI16()=%v,%v", v, err)
	}
	if v, err := c.ReadLU16(); err != nil || v != 0x1234 {
		t.Fatalf("ReadLU16()=%#x,%v", v, err)
	}
	if v, err := c.ReadLF(); err != nil || v != 1.0 {
		t.Fatalf("ReadLF()=%v,%v", v, err)
	}
	if c.Pos() != 9 {
		t.Fatalf("Pos()=%d", c.Pos())
	}
	if b, err := c.Read(2); err != nil || b[0] != 0xaa || b[1] != 0xbb {
		t.Fatalf("Read(2)=%v,%v", b, err)
	}
	if c.Remaining() != 0 {
		t.Fatalf("Remaining()=%d", c.Remaining())
	}
}

func TestCursorShortReads(t *testing.T) {
	reads := []struct {
		name string
		size int
		read func(c *Cursor) error
	}{
		{"u8", 1, func(c *Cursor) error { _, err := c.ReadU8(); return err }},
		{"i16", 2, func(c *Cursor) error { _, err := c.ReadLI16(); return err }},
		{"u16", 2, func(c *Cursor) error { _, err := c.ReadLU16(); return err }},
		{"u32", 4, func(c *Cursor) error { _, err := c.ReadLU32(); return err }},
		{"f32", 4, func(c *Cursor) error { _, err := c.ReadLF(); return err }},
		{"slice", 3, func(c *Cursor) error { _, err := c.Read(3); return err }},
		{"skip", 3, func(c *Cursor) error { return c.Skip(3) }},
	}

	for _, r := range reads {
		for n := 0; n < r.size; n++ {
			c := NewCursor("short", make([]byte, n))
			err := r.read(c)
			if err == nil {
				t.Errorf("%s on %d bytes: expected error", r.name, n)
				continue
			}
			if errors.Cause(err) != ErrOutOfBounds {
				t.Errorf("%s on %d bytes: unexpected error %v", r.name, n, err)
			}
			if c.Pos() != 0 {
				t.Errorf("%s on %d bytes: cursor moved to %d", r.name, n, c.Pos())
			}
		}
	}
}

func TestCursorFloatBits(t *testing.T) {
	c := NewCursor("f", []byte{0x00, 0x00, 0x80, 0xbf})
	v, err := c.ReadLF()
	if err != nil || v != -1 || math.Signbit(float64(v)) != true {
		t.Fatalf("ReadLF()=%v,%v", v, err)
	}
}
