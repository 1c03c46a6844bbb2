package rap

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ardnew/derap/log"
)

func sampleTree() *Tree {
	return &Tree{
		Root: &Body{Entries: []Entry{
			class("CfgPatches", "",
				class("myprefix_main", "",
					&Array{Name: "units", Elements: strs("myprefix_rifle")},
					&Scalar{Name: "requiredVersion", Value: Float(2.5)},
				),
			),
			class("CfgWeapons", "",
				&ExternalClass{Name: "Rifle_Base_F"},
				class("myprefix_rifle", "Rifle_Base_F",
					str("displayName", "Rifle"),
					&Scalar{Name: "scope", Value: Long(2)},
					&Scalar{Name: "recoil", Value: Variable("1 + 2")},
					&Scalar{Name: "list", Value: List{Long(1), String("a")}},
					&FlaggedArray{Name: "magazines", Flag: 1, Elements: strs("myprefix_mag")},
					&Array{Name: "nested", Elements: []Value{List{String("x")}, Float(-1)}},
					&DeleteClass{Name: "OldMode"},
				),
				class("empty", ""),
			),
		}},
		Enums: []Enum{{Name: "destructengine", Value: 2}, {Name: "destructdefault", Value: 6}},
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	want := sampleTree()

	got, err := Decode(encodeTree(want))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_WithLogger(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	logger := log.Make(&out,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatJSON),
		log.WithPretty(false))

	if _, err := Decode(encodeTree(sampleTree()), WithLogger(logger)); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	for _, msg := range []string{`"msg":"header"`, `"msg":"body"`, `"msg":"decode complete"`} {
		if !bytes.Contains(out.Bytes(), []byte(msg)) {
			t.Errorf("trace output missing %s", msg)
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	valid := encodeTree(sampleTree())

	badSig := bytes.Clone(valid)
	badSig[1] = 'X'

	trailing := append(bytes.Clone(valid), 0)

	// header, root body with one entry of unknown tag 9, empty enum table
	unknownTag := header(22)
	unknownTag = append(unknownTag, 0, 1, 9)
	unknownTag = binary.LittleEndian.AppendUint32(unknownTag, 0)

	// root scalar with value sign 7
	unknownSign := header(0)
	unknownSign = append(unknownSign, 0, 1, 1, 7, 'x', 0)

	// class body whose single entry is a class pointing back at that body
	cycle := header(0)
	cycle = append(cycle, 0, 1, 0, 'a', 0)
	cycle = binary.LittleEndian.AppendUint32(cycle, uint32(len(cycle)+4))
	cycle = append(cycle, 0, 1, 0, 'b', 0)
	cycle = binary.LittleEndian.AppendUint32(cycle, uint32(len(cycle)-5))

	tests := []struct {
		name string
		buf  []byte
		opts []Option
		want error
	}{
		{"empty", nil, nil, ErrBadSignature},
		{"bad signature", badSig, nil, ErrBadSignature},
		{"trailing data", trailing, nil, ErrTrailingData},
		{"truncated", valid[:len(valid)-3], nil, ErrUnexpectedEOF},
		{"truncated header", valid[:10], nil, ErrUnexpectedEOF},
		{"unknown entry", unknownTag, nil, ErrUnknownEntry},
		{"unknown value", unknownSign, nil, ErrUnknownValue},
		{"body cycle", cycle, nil, ErrBodyCycle},
		{"max depth", valid, []Option{WithMaxDepth(2)}, ErrMaxDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Decode(tt.buf, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}

			if got != nil {
				t.Errorf("Decode() returned a partial tree")
			}
		})
	}
}

func TestDecode_EmptyConfig(t *testing.T) {
	t.Parallel()

	got, err := Decode(encodeTree(&Tree{Root: &Body{}}))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(got.Root.Entries) != 0 || len(got.Enums) != 0 {
		t.Errorf("Decode() = %+v, want empty tree", got)
	}
}

func TestDecode_ClassBodyDoesNotMoveStream(t *testing.T) {
	t.Parallel()

	// The first class body is stored before the second class entry is read;
	// decoding must resume right after the first entry's offset field.
	want := tree(
		class("A", "", str("p", "1")),
		str("between", "x"),
		class("B", "A"),
	)

	got, err := Decode(encodeTree(want))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

// header returns a signature, reserved bytes and the given enum offset.
func header(enumOffset uint32) []byte {
	b := append([]byte(Signature), make([]byte, 8)...)

	return binary.LittleEndian.AppendUint32(b, enumOffset)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestDecodeReader(t *testing.T) {
	t.Parallel()

	want := sampleTree()

	got, err := DecodeReader(bytes.NewReader(encodeTree(want)))
	if err != nil {
		t.Fatalf("DecodeReader() error = %v", err)
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("DecodeReader() mismatch (-want +got):\n%s", diff)
	}

	if _, err := DecodeReader(failingReader{}); !errors.Is(err, ErrRead) {
		t.Errorf("DecodeReader(failing) error = %v, want ErrRead", err)
	}
}

// sharedChain returns a config of levels bodies in which both classes a and b
// of each body point at the same next body.
func sharedChain(levels int) []byte {
	const bodySize = 16 // inherits, count, two class entries of 7 bytes

	buf := header(0)
	start := len(buf)

	for k := range levels {
		next := uint32(start + bodySize*(k+1))

		buf = append(buf, 0, 2)

		for _, name := range []string{"a", "b"} {
			buf = append(buf, byte(TagClass))
			buf = append(buf, name...)
			buf = append(buf, 0)
			buf = binary.LittleEndian.AppendUint32(buf, next)
		}
	}

	buf = append(buf, 0, 0)
	binary.LittleEndian.PutUint32(buf[len(Signature)+8:], uint32(len(buf)))

	return binary.LittleEndian.AppendUint32(buf, 0)
}

func TestDecode_SharedBodies(t *testing.T) {
	t.Parallel()

	const levels = 64

	got, err := Decode(sharedChain(levels))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	body := got.Root

	for level := range levels {
		if len(body.Entries) != 2 {
			t.Fatalf("level %d: %d entries, want 2", level, len(body.Entries))
		}

		a, b := body.Entries[0].(*Class), body.Entries[1].(*Class)
		if a.Body != b.Body {
			t.Fatalf("level %d: classes a and b do not share their body", level)
		}

		body = a.Body
	}

	if len(body.Entries) != 0 {
		t.Errorf("last body has %d entries, want 0", len(body.Entries))
	}

	if _, err := Decode(sharedChain(levels), WithMaxDepth(levels)); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("Decode(max depth %d) error = %v, want ErrMaxDepth", levels, err)
	}
}

func TestDecode_SharedBodyDepth(t *testing.T) {
	t.Parallel()

	// root { class a -> X; class b -> Y }, Y { class c -> X }, X {}.
	// X is first reached at depth 2 and again at depth 3 through Y.
	const (
		root = 16
		x    = root + 16
		y    = x + 2
		enum = y + 9
	)

	buf := header(enum)
	buf = append(buf, 0, 2)
	buf = append(buf, byte(TagClass), 'a', 0)
	buf = binary.LittleEndian.AppendUint32(buf, x)
	buf = append(buf, byte(TagClass), 'b', 0)
	buf = binary.LittleEndian.AppendUint32(buf, y)
	buf = append(buf, 0, 0)
	buf = append(buf, 0, 1)
	buf = append(buf, byte(TagClass), 'c', 0)
	buf = binary.LittleEndian.AppendUint32(buf, x)
	buf = binary.LittleEndian.AppendUint32(buf, 0)

	if _, err := Decode(buf, WithMaxDepth(2)); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("Decode(max depth 2) error = %v, want ErrMaxDepth", err)
	}

	got, err := Decode(buf, WithMaxDepth(3))
	if err != nil {
		t.Fatalf("Decode(max depth 3) error = %v", err)
	}

	a, _ := got.Root.Class("a")
	b, _ := got.Root.Class("b")
	c, _ := b.Body.Class("c")

	if a.Body != c.Body {
		t.Error("classes a and c do not share their body")
	}
}
