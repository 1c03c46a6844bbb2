package rap

import (
	"fmt"
	"strconv"
)

// Tag identifies the kind of an entry in a class body.
type Tag uint8

// Entry tags as they appear in the binary format.
const (
	TagClass    Tag = 0 // class
	TagScalar   Tag = 1 // scalar
	TagArray    Tag = 2 // array
	TagExternal Tag = 3 // external
	TagDelete   Tag = 4 // delete
	TagFlagged  Tag = 5 // flagged
)

func (t Tag) String() string {
	switch t {
	case TagClass:
		return "class"
	case TagScalar:
		return "scalar"
	case TagArray:
		return "array"
	case TagExternal:
		return "external"
	case TagDelete:
		return "delete"
	case TagFlagged:
		return "flagged"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Sign identifies the type of a scalar or array element value.
type Sign uint8

// Value signs as they appear in the binary format.
const (
	SignString   Sign = 0 // string
	SignFloat    Sign = 1 // float
	SignLong     Sign = 2 // long
	SignArray    Sign = 3 // array
	SignVariable Sign = 4 // variable
)

func (s Sign) String() string {
	switch s {
	case SignString:
		return "string"
	case SignFloat:
		return "float"
	case SignLong:
		return "long"
	case SignArray:
		return "array"
	case SignVariable:
		return "variable"
	default:
		return fmt.Sprintf("Sign(%d)", uint8(s))
	}
}

// Entry is one named member of a class body. The set of implementations is
// closed: *Class, *Scalar, *Array, *FlaggedArray, *ExternalClass and
// *DeleteClass.
type Entry interface {
	// Ident returns the entry's declared name.
	Ident() string
	// Tag returns the entry kind.
	Tag() Tag

	entry()
}

// Class is a class declaration with an out-of-line body.
type Class struct {
	Name string
	Body *Body
}

// Scalar is a single named value. Its Value may be a List when the scalar was
// encoded with the array value sign.
type Scalar struct {
	Name  string
	Value Value
}

// Array is a named array assignment (name[] = {...}).
type Array struct {
	Name     string
	Elements []Value
}

// FlaggedArray is a named array extension (name[] += {...}).
// Flag is carried verbatim from the source.
type FlaggedArray struct {
	Name     string
	Flag     int32
	Elements []Value
}

// ExternalClass is a forward declaration (class Name;).
type ExternalClass struct {
	Name string
}

// DeleteClass removes an inherited class (delete Name;).
type DeleteClass struct {
	Name string
}

func (e *Class) Ident() string         { return e.Name }
func (e *Scalar) Ident() string        { return e.Name }
func (e *Array) Ident() string         { return e.Name }
func (e *FlaggedArray) Ident() string  { return e.Name }
func (e *ExternalClass) Ident() string { return e.Name }
func (e *DeleteClass) Ident() string   { return e.Name }

func (*Class) Tag() Tag         { return TagClass }
func (*Scalar) Tag() Tag        { return TagScalar }
func (*Array) Tag() Tag         { return TagArray }
func (*FlaggedArray) Tag() Tag  { return TagFlagged }
func (*ExternalClass) Tag() Tag { return TagExternal }
func (*DeleteClass) Tag() Tag   { return TagDelete }

func (*Class) entry()         {}
func (*Scalar) entry()        {}
func (*Array) entry()         {}
func (*FlaggedArray) entry()  {}
func (*ExternalClass) entry() {}
func (*DeleteClass) entry()   {}

// Value is a scalar or array element value: String, Float, Long, Variable or
// List.
type Value interface {
	Sign() Sign
	String() string

	value()
}

// String is a string literal.
type String string

// Float is a 32-bit float literal.
type Float float32

// Long is a 32-bit integer literal.
type Long int32

// Variable is an unevaluated expression carried verbatim.
type Variable string

// List is a nested array value.
type List []Value

func (String) Sign() Sign   { return SignString }
func (Float) Sign() Sign    { return SignFloat }
func (Long) Sign() Sign     { return SignLong }
func (Variable) Sign() Sign { return SignVariable }
func (List) Sign() Sign     { return SignArray }

func (v String) String() string   { return string(v) }
func (v Float) String() string    { return strconv.FormatFloat(float64(v), 'f', -1, 32) }
func (v Long) String() string     { return strconv.FormatInt(int64(v), 10) }
func (v Variable) String() string { return string(v) }

func (v List) String() string {
	s := "{"

	for i, e := range v {
		if i > 0 {
			s += ", "
		}

		if str, ok := e.(String); ok {
			s += strconv.Quote(string(str))
		} else {
			s += e.String()
		}
	}

	return s + "}"
}

func (String) value()   {}
func (Float) value()    {}
func (Long) value()     {}
func (Variable) value() {}
func (List) value()     {}

// Elements returns the array elements held by e, if e is an array-like entry:
// an *Array, a *FlaggedArray, or a *Scalar holding a List.
func Elements(e Entry) ([]Value, bool) {
	switch v := e.(type) {
	case *Array:
		return v.Elements, true
	case *FlaggedArray:
		return v.Elements, true
	case *Scalar:
		if l, ok := v.Value.(List); ok {
			return l, true
		}

		return nil, false
	case *Class, *ExternalClass, *DeleteClass:
		return nil, false
	default:
		return nil, false
	}
}
