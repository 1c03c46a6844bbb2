package rap

import "strings"

// Tree is a decoded rapified config: the root class body and the enum table.
// A Tree is never modified after [Decode] returns it, so it may be shared
// between goroutines.
type Tree struct {
	Root  *Body
	Enums []Enum
}

// Body holds the entries of a class and the name of its parent class, which
// is empty when the class inherits nothing.
type Body struct {
	Inherits string
	Entries  []Entry
}

// Enum is one item of the enum table.
type Enum struct {
	Name  string
	Value uint32
}

// Find returns the first direct entry of b whose name equals name, ignoring
// case. Nested bodies are not searched.
func (b *Body) Find(name string) (Entry, bool) {
	if b == nil {
		return nil, false
	}

	for _, e := range b.Entries {
		if strings.EqualFold(e.Ident(), name) {
			return e, true
		}
	}

	return nil, false
}

// Class returns the first direct entry named name if it is a class.
func (b *Body) Class(name string) (*Class, bool) {
	e, ok := b.Find(name)
	if !ok {
		return nil, false
	}

	c, ok := e.(*Class)

	return c, ok
}

// Classes returns the class entries of b in declaration order.
func (b *Body) Classes() []*Class {
	if b == nil {
		return nil
	}

	var out []*Class

	for _, e := range b.Entries {
		if c, ok := e.(*Class); ok {
			out = append(out, c)
		}
	}

	return out
}

// Find looks name up among the root entries.
func (t *Tree) Find(name string) (Entry, bool) {
	if t == nil {
		return nil, false
	}

	return t.Root.Find(name)
}

// Class looks a class up among the root entries.
func (t *Tree) Class(name string) (*Class, bool) {
	if t == nil {
		return nil, false
	}

	return t.Root.Class(name)
}

// Enum returns the value of the enum item named name, ignoring case.
func (t *Tree) Enum(name string) (uint32, bool) {
	for _, e := range t.Enums {
		if strings.EqualFold(e.Name, name) {
			return e.Value, true
		}
	}

	return 0, false
}
