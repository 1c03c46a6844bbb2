package rap

import (
	"encoding/binary"
	"math"
)

// encoder produces rapified buffers for tests. Class bodies are written
// after the body that references them.
type encoder struct {
	buf []byte
}

func encodeTree(t *Tree) []byte {
	e := &encoder{}

	e.buf = append(e.buf, Signature...)
	e.buf = append(e.buf, make([]byte, 8)...)
	enumAt := len(e.buf)
	e.u32(0)

	e.body(t.Root)

	binary.LittleEndian.PutUint32(e.buf[enumAt:], uint32(len(e.buf)))
	e.u32(uint32(len(t.Enums)))

	for _, en := range t.Enums {
		e.asciiz(en.Name)
		e.u32(en.Value)
	}

	return e.buf
}

func appendCompressedUint(buf []byte, v uint32) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v&0x7f)+0x80)
		v >>= 7
	}

	return append(buf, byte(v))
}

func (e *encoder) u8(v uint8) { e.buf = append(e.buf, v) }

func (e *encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }

func (e *encoder) asciiz(s string) {
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
}

func (e *encoder) body(b *Body) {
	if b == nil {
		b = &Body{}
	}

	type pending struct {
		at   int
		body *Body
	}

	var classes []pending

	e.asciiz(b.Inherits)
	e.buf = appendCompressedUint(e.buf, uint32(len(b.Entries)))

	for _, ent := range b.Entries {
		e.u8(uint8(ent.Tag()))

		switch v := ent.(type) {
		case *Class:
			e.asciiz(v.Name)
			classes = append(classes, pending{at: len(e.buf), body: v.Body})
			e.u32(0)
		case *Scalar:
			e.u8(uint8(v.Value.Sign()))
			e.asciiz(v.Name)
			e.value(v.Value)
		case *Array:
			e.asciiz(v.Name)
			e.array(v.Elements)
		case *FlaggedArray:
			e.u32(uint32(v.Flag))
			e.asciiz(v.Name)
			e.array(v.Elements)
		case *ExternalClass:
			e.asciiz(v.Name)
		case *DeleteClass:
			e.asciiz(v.Name)
		}
	}

	for _, p := range classes {
		binary.LittleEndian.PutUint32(e.buf[p.at:], uint32(len(e.buf)))
		e.body(p.body)
	}
}

func (e *encoder) array(vs []Value) {
	e.buf = appendCompressedUint(e.buf, uint32(len(vs)))

	for _, v := range vs {
		e.u8(uint8(v.Sign()))
		e.value(v)
	}
}

func (e *encoder) value(v Value) {
	switch v := v.(type) {
	case String:
		e.asciiz(string(v))
	case Float:
		e.u32(math.Float32bits(float32(v)))
	case Long:
		e.u32(uint32(v))
	case Variable:
		e.asciiz(string(v))
	case List:
		e.array(v)
	}
}

// class is shorthand for building test trees.
func class(name, inherits string, entries ...Entry) *Class {
	return &Class{Name: name, Body: &Body{Inherits: inherits, Entries: entries}}
}

func tree(entries ...Entry) *Tree {
	return &Tree{Root: &Body{Entries: entries}}
}

func str(name, value string) *Scalar {
	return &Scalar{Name: name, Value: String(value)}
}

func strs(values ...string) []Value {
	out := make([]Value, len(values))
	for i, v := range values {
		out[i] = String(v)
	}

	return out
}
