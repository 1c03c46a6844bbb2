package rap

import (
	"encoding/binary"
	"log/slog"
	"math"
	"strings"
)

// maxCompressedLen is the longest compressed integer accepted; five 7-bit
// groups cover the full uint32 range.
const maxCompressedLen = 5

// Cursor reads little-endian primitives from an in-memory buffer.
//
// Sequential reads advance the position. [Cursor.Seek] and [Cursor.At]
// provide random access for the out-of-line class bodies.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a Cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current absolute offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes after the current position.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Seek moves the cursor to the absolute offset off.
// Seeking to the end of the buffer is allowed; seeking beyond it is not.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.buf) {
		return ErrSeek.With(
			slog.Int("offset", off),
			slog.Int("length", len(c.buf)),
		)
	}

	c.pos = off

	return nil
}

// At seeks to off, calls fn and restores the previous position on every exit
// path, including when fn fails.
func (c *Cursor) At(off int, fn func() error) error {
	saved := c.pos
	defer func() { c.pos = saved }()

	if err := c.Seek(off); err != nil {
		return err
	}

	return fn()
}

// next returns the following n bytes and advances past them.
func (c *Cursor) next(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, ErrUnexpectedEOF.With(
			slog.Int("offset", c.pos),
			slog.Int("want", n),
			slog.Int("have", c.Remaining()),
		)
	}

	b := c.buf[c.pos : c.pos+n]
	c.pos += n

	return b, nil
}

// Bytes reads exactly n raw bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	return c.next(n)
}

// Skip discards n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.next(n)

	return err
}

// U8 reads a single unsigned byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.next(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// I16 reads a 2-byte signed integer.
func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()

	return int16(v), err
}

// U16 reads a 2-byte unsigned integer.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.next(2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(b), nil
}

// I32 reads a 4-byte signed integer.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()

	return int32(v), err
}

// U32 reads a 4-byte unsigned integer.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b), nil
}

// F16 reads an IEEE 754 half-precision float and widens it to float32.
func (c *Cursor) F16() (float32, error) {
	v, err := c.U16()
	if err != nil {
		return 0, err
	}

	return halfToFloat(v), nil
}

// F32 reads a 4-byte IEEE 754 float.
func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(v), nil
}

// F64 reads an 8-byte IEEE 754 float.
func (c *Cursor) F64() (float64, error) {
	b, err := c.next(8)
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// AsciiZ reads a NUL-terminated string. The terminator is consumed but not
// returned. Reaching the end of the buffer also terminates the string.
// Invalid UTF-8 sequences are replaced with U+FFFD instead of failing.
func (c *Cursor) AsciiZ() string {
	rest := c.buf[c.pos:]

	n := len(rest)
	for i, b := range rest {
		if b == 0 {
			n = i

			break
		}
	}

	s := strings.ToValidUTF8(string(rest[:n]), "�")

	c.pos += n
	if c.pos < len(c.buf) {
		c.pos++ // terminator
	}

	return s
}

// CompressedUint reads the format's variable-length unsigned integer.
//
// The first byte is taken as is, high bit included. While the last byte read
// has its high bit set, the next byte minus one is shifted left by seven bits
// per byte index and added to the result.
func (c *Cursor) CompressedUint() (uint32, error) {
	start := c.pos

	first, err := c.U8()
	if err != nil {
		return 0, err
	}

	out := int64(first)
	extra := first

	for idx := 1; extra&0x80 != 0; idx++ {
		if idx >= maxCompressedLen {
			return 0, ErrFormat.With(
				slog.String("issue", "compressed integer too long"),
				slog.Int("offset", start),
			)
		}

		extra, err = c.U8()
		if err != nil {
			return 0, err
		}

		out += (int64(extra) - 1) << (7 * idx)
	}

	if out < 0 || out > math.MaxUint32 {
		return 0, ErrFormat.With(
			slog.String("issue", "compressed integer out of range"),
			slog.Int("offset", start),
			slog.Int64("value", out),
		)
	}

	return uint32(out), nil
}

// halfToFloat converts IEEE 754 binary16 bits to float32.
func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1f
	frac := uint32(h) & 0x3ff

	switch exp {
	case 0:
		if frac == 0 {
			return math.Float32frombits(sign)
		}
		// subnormal: value = frac * 2^-24
		f := float32(frac) / (1 << 24)
		if sign != 0 {
			f = -f
		}

		return f

	case 0x1f:
		return math.Float32frombits(sign | 0x7f800000 | frac<<13)

	default:
		return math.Float32frombits(sign | (exp+112)<<23 | frac<<13)
	}
}
