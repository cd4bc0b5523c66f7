package utils

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

var ErrOutOfBounds = errors.New("read out of bounds")

// Cursor is a forward-only little-endian reader over an in-memory buffer.
// It must not be shared between goroutines.
type Cursor struct {
	buf  []byte
	pos  int
	kind string
}

func NewCursor(kind string, b []byte) *Cursor {
	return &Cursor{
		buf:  b,
		kind: kind,
	}
}

func (c *Cursor) Kind() string   { return c.kind }
func (c *Cursor) Pos() int       { return c.pos }
func (c *Cursor) Len() int       { return len(c.buf) }
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

func (c *Cursor) String() string {
	return fmt.Sprintf("cursor<%v>[pos:0x%x,size:0x%x]", c.kind, c.pos, len(c.buf))
}

func (c *Cursor) outOfBounds(amount int) error {
	return errors.Wrapf(ErrOutOfBounds, "%v: need 0x%x bytes at 0x%x, have 0x%x",
		c.kind, amount, c.pos, c.Remaining())
}

// Read returns the next amount bytes. The slice aliases the underlying buffer.
func (c *Cursor) Read(amount int) ([]byte, error) {
	if amount < 0 || amount > c.Remaining() {
		return nil, c.outOfBounds(amount)
	}
	oldPos := c.pos
	c.pos += amount
	return c.buf[oldPos:c.pos], nil
}

func (c *Cursor) Skip(amount int) error {
	if amount < 0 || amount > c.Remaining() {
		return c.outOfBounds(amount)
	}
	c.pos += amount
	return nil
}

func (c *Cursor) ReadU8() (byte, error) {
	b, err := c.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadLU16() (uint16, error) {
	b, err := c.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadLI16() (int16, error) {
	v, err := c.ReadLU16()
	return int16(v), err
}

func (c *Cursor) ReadLU32() (uint32, error) {
	b, err := c.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) ReadLF() (float32, error) {
	v, err := c.ReadLU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Ensure fails unless at least amount bytes are left, without moving the cursor.
func (c *Cursor) Ensure(amount int) error {
	if amount < 0 || amount > c.Remaining() {
		return c.outOfBounds(amount)
	}
	return nil
}
