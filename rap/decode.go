package rap

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"

	"github.com/klauspost/readahead"

	"github.com/ardnew/derap/log"
)

// Signature is the four-byte magic every rapified config starts with.
const Signature = "\x00raP"

// headerLen is the length of the signature, the reserved bytes and the enum
// table offset.
const headerLen = len(Signature) + 8 + 4

// DefaultMaxDepth is the default limit on class nesting.
const DefaultMaxDepth = 256

// Option configures a [Decoder].
type Option func(*Decoder)

// WithMaxDepth sets the maximum class nesting depth accepted by the decoder.
// Values less than 1 restore [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(d *Decoder) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		d.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// WithContext sets the context passed to the logger.
func WithContext(ctx context.Context) Option {
	return func(d *Decoder) {
		if ctx != nil {
			d.ctx = ctx
		}
	}
}

// Decoder turns a rapified buffer into a [Tree].
//
// A Decoder holds only configuration; every call to [Decoder.Decode] uses
// private state, so one Decoder may be used from several goroutines.
type Decoder struct {
	ctx      context.Context
	logger   log.Logger
	maxDepth int
}

// NewDecoder returns a Decoder configured by opts.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		ctx:      context.Background(),
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Decode decodes buf with a Decoder configured by opts.
func Decode(buf []byte, opts ...Option) (*Tree, error) {
	return NewDecoder(opts...).Decode(buf)
}

// DecodeReader reads r to the end and decodes the result.
func DecodeReader(r io.Reader, opts ...Option) (*Tree, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	buf, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrRead.Wrap(err)
	}

	return Decode(buf, opts...)
}

// Decode decodes the complete buffer. Decoding is all or nothing: on any
// error the returned tree is nil.
func (d *Decoder) Decode(buf []byte) (*Tree, error) {
	s := &decodeState{
		Decoder: d,
		cur:     NewCursor(buf),
		active:  make(map[int]struct{}),
		done:    make(map[int]decodedBody),
	}

	tree, err := s.tree()
	if err != nil {
		d.logger.TraceContext(d.ctx, "decode failed",
			slog.Int("offset", s.cur.Pos()),
			slog.Any("error", err))

		return nil, err
	}

	d.logger.TraceContext(d.ctx, "decode complete",
		slog.Int("length", len(buf)),
		slog.Int("entries", len(tree.Root.Entries)),
		slog.Int("enums", len(tree.Enums)))

	return tree, nil
}

// decodeState is the per-call state of a decode.
type decodeState struct {
	*Decoder

	cur *Cursor
	// active holds the offsets of the class bodies currently being decoded.
	active map[int]struct{}
	// done holds the bodies already decoded, by offset. Entries that share a
	// body offset share the *Body.
	done  map[int]decodedBody
	depth int
}

// decodedBody is a finished class body and the number of body levels it
// spans, itself included.
type decodedBody struct {
	body   *Body
	height int
}

func (s *decodeState) tree() (*Tree, error) {
	sig, err := s.cur.Bytes(len(Signature))
	if err != nil {
		return nil, ErrBadSignature.Wrap(err)
	}

	if !bytes.Equal(sig, []byte(Signature)) {
		return nil, ErrBadSignature.With(slog.String("found", string(sig)))
	}

	if err := s.cur.Skip(8); err != nil {
		return nil, err
	}

	enumOffset, err := s.cur.U32()
	if err != nil {
		return nil, err
	}

	s.logger.TraceContext(s.ctx, "header",
		slog.Int("length", s.cur.Len()),
		slog.Uint64("enum_offset", uint64(enumOffset)))

	root, _, err := s.body()
	if err != nil {
		return nil, err
	}

	if uint64(enumOffset) > uint64(s.cur.Len()) {
		return nil, ErrUnexpectedEOF.With(
			slog.String("issue", "enum table offset beyond buffer"),
			slog.Uint64("enum_offset", uint64(enumOffset)),
			slog.Int("length", s.cur.Len()),
		)
	}

	if err := s.cur.Seek(int(enumOffset)); err != nil {
		return nil, err
	}

	enums, err := s.enums()
	if err != nil {
		return nil, err
	}

	if n := s.cur.Remaining(); n != 0 {
		return nil, ErrTrailingData.With(
			slog.Int("offset", s.cur.Pos()),
			slog.Int("bytes", n),
		)
	}

	return &Tree{Root: root, Enums: enums}, nil
}

// body decodes a class body at the current position. It also returns the
// number of body levels the result spans.
func (s *decodeState) body() (*Body, int, error) {
	if s.depth >= s.maxDepth {
		return nil, 0, ErrMaxDepth.With(
			slog.Int("depth", s.depth),
			slog.Int("offset", s.cur.Pos()),
		)
	}

	s.depth++
	defer func() { s.depth-- }()

	start := s.cur.Pos()

	inherits := s.cur.AsciiZ()

	count, err := s.cur.CompressedUint()
	if err != nil {
		return nil, 0, err
	}

	// Each entry takes at least two bytes, which bounds a sane preallocation.
	entries := make([]Entry, 0, min(int(count), s.cur.Remaining()/2))
	below := 0

	for range count {
		e, height, err := s.entry()
		if err != nil {
			return nil, 0, err
		}

		below = max(below, height)
		entries = append(entries, e)
	}

	s.logger.TraceContext(s.ctx, "body",
		slog.Int("offset", start),
		slog.Int("depth", s.depth),
		slog.String("inherits", inherits),
		slog.Int("entries", len(entries)))

	return &Body{Inherits: inherits, Entries: entries}, below + 1, nil
}

// entry decodes one entry. For a class it also returns the height of the
// class body, otherwise zero.
func (s *decodeState) entry() (Entry, int, error) {
	at := s.cur.Pos()

	tag, err := s.cur.U8()
	if err != nil {
		return nil, 0, err
	}

	switch Tag(tag) {
	case TagClass:
		name := s.cur.AsciiZ()

		off, err := s.cur.U32()
		if err != nil {
			return nil, 0, err
		}

		body, height, err := s.classBody(name, off)
		if err != nil {
			return nil, 0, err
		}

		return &Class{Name: name, Body: body}, height, nil

	case TagScalar:
		sign, err := s.cur.U8()
		if err != nil {
			return nil, 0, err
		}

		name := s.cur.AsciiZ()

		val, err := s.value(Sign(sign))
		if err != nil {
			return nil, 0, err
		}

		return &Scalar{Name: name, Value: val}, 0, nil

	case TagArray:
		name := s.cur.AsciiZ()

		elems, err := s.array()
		if err != nil {
			return nil, 0, err
		}

		return &Array{Name: name, Elements: elems}, 0, nil

	case TagExternal:
		return &ExternalClass{Name: s.cur.AsciiZ()}, 0, nil

	case TagDelete:
		return &DeleteClass{Name: s.cur.AsciiZ()}, 0, nil

	case TagFlagged:
		flag, err := s.cur.I32()
		if err != nil {
			return nil, 0, err
		}

		name := s.cur.AsciiZ()

		elems, err := s.array()
		if err != nil {
			return nil, 0, err
		}

		return &FlaggedArray{Name: name, Flag: flag, Elements: elems}, 0, nil

	default:
		return nil, 0, ErrUnknownEntry.With(
			slog.Int("tag", int(tag)),
			slog.Int("offset", at),
		)
	}
}

// classBody decodes the out-of-line body at off and restores the stream
// position afterwards. A body already decoded is reused, so the work done is
// bounded by the buffer size however many entries point at the same body.
func (s *decodeState) classBody(name string, off uint32) (*Body, int, error) {
	if uint64(off) > math.MaxInt32 || int(off) > s.cur.Len() {
		return nil, 0, ErrUnexpectedEOF.With(
			slog.String("class", name),
			slog.Uint64("body_offset", uint64(off)),
			slog.Int("length", s.cur.Len()),
		)
	}

	o := int(off)

	if _, ok := s.active[o]; ok {
		return nil, 0, ErrBodyCycle.With(
			slog.String("class", name),
			slog.Int("body_offset", o),
		)
	}

	if d, ok := s.done[o]; ok {
		if s.depth+d.height > s.maxDepth {
			return nil, 0, ErrMaxDepth.With(
				slog.Int("depth", s.depth+d.height),
				slog.Int("offset", o),
			)
		}

		return d.body, d.height, nil
	}

	s.active[o] = struct{}{}
	defer delete(s.active, o)

	var d decodedBody

	err := s.cur.At(o, func() (err error) {
		d.body, d.height, err = s.body()

		return err
	})
	if err != nil {
		return nil, 0, err
	}

	s.done[o] = d

	return d.body, d.height, nil
}

// value decodes a single value of the given sign.
func (s *decodeState) value(sign Sign) (Value, error) {
	switch sign {
	case SignString:
		return String(s.cur.AsciiZ()), nil

	case SignFloat:
		f, err := s.cur.F32()
		if err != nil {
			return nil, err
		}

		return Float(f), nil

	case SignLong:
		n, err := s.cur.I32()
		if err != nil {
			return nil, err
		}

		return Long(n), nil

	case SignArray:
		elems, err := s.array()
		if err != nil {
			return nil, err
		}

		return List(elems), nil

	case SignVariable:
		return Variable(s.cur.AsciiZ()), nil

	default:
		return nil, ErrUnknownValue.With(
			slog.Int("sign", int(sign)),
			slog.Int("offset", s.cur.Pos()-1),
		)
	}
}

// array decodes a compressed element count followed by signed elements.
func (s *decodeState) array() ([]Value, error) {
	count, err := s.cur.CompressedUint()
	if err != nil {
		return nil, err
	}

	if s.depth >= s.maxDepth {
		return nil, ErrMaxDepth.With(
			slog.Int("depth", s.depth),
			slog.Int("offset", s.cur.Pos()),
		)
	}

	s.depth++
	defer func() { s.depth-- }()

	elems := make([]Value, 0, min(int(count), s.cur.Remaining()))

	for range count {
		sign, err := s.cur.U8()
		if err != nil {
			return nil, err
		}

		v, err := s.value(Sign(sign))
		if err != nil {
			return nil, err
		}

		elems = append(elems, v)
	}

	return elems, nil
}

// enums decodes the enum table at the current position.
func (s *decodeState) enums() ([]Enum, error) {
	count, err := s.cur.U32()
	if err != nil {
		return nil, err
	}

	// Each item takes at least five bytes.
	enums := make([]Enum, 0, min(int(count), s.cur.Remaining()/5))

	for range count {
		name := s.cur.AsciiZ()

		v, err := s.cur.U32()
		if err != nil {
			return nil, err
		}

		enums = append(enums, Enum{Name: name, Value: v})
	}

	s.logger.TraceContext(s.ctx, "enums",
		slog.Int("count", len(enums)))

	return enums, nil
}
