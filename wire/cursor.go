package wire

import (
	"math"

	"github.com/igwn/gwframe/endian"
	"github.com/igwn/gwframe/errs"
)

// Cursor decodes fields sequentially out of a Record's Payload. The
// per-structure checksum has already been verified by ReadRecord by the
// time a Cursor exists, so Cursor does no checksum work of its own — it is
// the in-memory analogue of the offset-based engine.Uint32(blob[off:])
// calls mebo's section package uses to decode a fixed layout, generalized
// to a running position so variable-length fields (strings, dimension
// lists) can follow one another.
type Cursor struct {
	buf    []byte
	pos    int
	engine endian.EndianEngine
}

// NewCursor returns a Cursor over buf, decoding with engine.
func NewCursor(buf []byte, engine endian.EndianEngine) *Cursor {
	return &Cursor{buf: buf, engine: engine}
}

// Remaining reports how many bytes are left unread.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

func (c *Cursor) take(n int) ([]byte, error) {
	if c.Remaining() < n {
		return nil, errs.ErrShortBuffer
	}

	b := c.buf[c.pos : c.pos+n]
	c.pos += n

	return b, nil
}

func (c *Cursor) Uint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

func (c *Cursor) Int8() (int8, error) {
	v, err := c.Uint8()
	return int8(v), err
}

func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint16(b), nil
}

func (c *Cursor) Int16() (int16, error) {
	v, err := c.Uint16()
	return int16(v), err
}

func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint32(b), nil
}

func (c *Cursor) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err
}

func (c *Cursor) Uint64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}

	return c.engine.Uint64(b), nil
}

func (c *Cursor) Int64() (int64, error) {
	v, err := c.Uint64()
	return int64(v), err
}

func (c *Cursor) Float32() (float32, error) {
	v, err := c.Uint32()
	return math.Float32frombits(v), err
}

func (c *Cursor) Float64() (float64, error) {
	v, err := c.Uint64()
	return math.Float64frombits(v), err
}

func (c *Cursor) String() (string, error) {
	n, err := c.Uint16()
	if err != nil {
		return "", err
	}

	if n == 0 {
		return "", nil
	}

	b, err := c.take(int(n))
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), b...), nil
}

// Pointer reads a raw instance id as a Handle, for decoding inside a
// Cursor (as opposed to directly off a Reader).
func (c *Cursor) Pointer() (uint32, error) {
	return c.Uint32()
}
