// Package raptest builds rapified configs for tests of packages that consume
// decoded trees. It is imported only by _test.go files.
package raptest

import (
	"encoding/binary"
	"math"

	"github.com/ardnew/derap/rap"
)

// Encode returns the rapified form of t. Class bodies are written after the
// body that references them.
func Encode(t *rap.Tree) []byte {
	e := &encoder{}

	e.buf = append(e.buf, rap.Signature...)
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

// Class returns a class entry with the given body.
func Class(name, inherits string, entries ...rap.Entry) *rap.Class {
	return &rap.Class{Name: name, Body: &rap.Body{Inherits: inherits, Entries: entries}}
}

// Tree returns a tree whose root body holds entries.
func Tree(entries ...rap.Entry) *rap.Tree {
	return &rap.Tree{Root: &rap.Body{Entries: entries}}
}

// String returns a string scalar.
func String(name, value string) *rap.Scalar {
	return &rap.Scalar{Name: name, Value: rap.String(value)}
}

// Strings returns an array of strings.
func Strings(name string, values ...string) *rap.Array {
	a := &rap.Array{Name: name, Elements: make([]rap.Value, len(values))}
	for i, v := range values {
		a.Elements[i] = rap.String(v)
	}

	return a
}

type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8) { e.buf = append(e.buf, v) }

func (e *encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }

func (e *encoder) uint(v uint32) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v&0x7f)+0x80)
		v >>= 7
	}

	e.buf = append(e.buf, byte(v))
}

func (e *encoder) asciiz(s string) {
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
}

func (e *encoder) body(b *rap.Body) {
	if b == nil {
		b = &rap.Body{}
	}

	type pending struct {
		at   int
		body *rap.Body
	}

	var classes []pending

	e.asciiz(b.Inherits)
	e.uint(uint32(len(b.Entries)))

	for _, ent := range b.Entries {
		e.u8(uint8(ent.Tag()))

		switch v := ent.(type) {
		case *rap.Class:
			e.asciiz(v.Name)
			classes = append(classes, pending{at: len(e.buf), body: v.Body})
			e.u32(0)
		case *rap.Scalar:
			e.u8(uint8(v.Value.Sign()))
			e.asciiz(v.Name)
			e.value(v.Value)
		case *rap.Array:
			e.asciiz(v.Name)
			e.array(v.Elements)
		case *rap.FlaggedArray:
			e.u32(uint32(v.Flag))
			e.asciiz(v.Name)
			e.array(v.Elements)
		case *rap.ExternalClass:
			e.asciiz(v.Name)
		case *rap.DeleteClass:
			e.asciiz(v.Name)
		}
	}

	for _, p := range classes {
		binary.LittleEndian.PutUint32(e.buf[p.at:], uint32(len(e.buf)))
		e.body(p.body)
	}
}

func (e *encoder) array(vs []rap.Value) {
	e.uint(uint32(len(vs)))

	for _, v := range vs {
		e.u8(uint8(v.Sign()))
		e.value(v)
	}
}

func (e *encoder) value(v rap.Value) {
	switch v := v.(type) {
	case rap.String:
		e.asciiz(string(v))
	case rap.Float:
		e.u32(math.Float32bits(float32(v)))
	case rap.Long:
		e.u32(uint32(v))
	case rap.Variable:
		e.asciiz(string(v))
	case rap.List:
		e.array(v)
	}
}
