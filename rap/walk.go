package rap

import "iter"

// RootScope is the class name reported for entries of the root body.
const RootScope = "root"

// Scope locates an entry yielded by a [Walker]: the name of the class whose
// body holds it and the nesting depth of that body (0 for the root body).
type Scope struct {
	Class string
	Depth int
}

// Walker visits the entries of a body tree depth-first in declaration order.
// Each class entry is yielded before the entries of its body. A body shared by
// several classes is visited once per distinct [Scope].
//
// The zero Walker visits everything.
type Walker struct {
	// Skip, if set, is consulted for every class; when it returns true the
	// class itself is yielded but its body is not visited.
	Skip func(*Class) bool
	// MaxDepth limits the depth of visited bodies. Zero means no limit.
	MaxDepth int
}

// Entries returns an iterator over all entries reachable from b.
func (w Walker) Entries(b *Body) iter.Seq2[Scope, Entry] {
	return func(yield func(Scope, Entry) bool) {
		w.walk(b, Scope{Class: RootScope}, make(map[visitKey]struct{}), yield)
	}
}

// Classes returns an iterator over the classes reachable from b.
func (w Walker) Classes(b *Body) iter.Seq2[Scope, *Class] {
	return func(yield func(Scope, *Class) bool) {
		for s, e := range w.Entries(b) {
			if c, ok := e.(*Class); ok && !yield(s, c) {
				return
			}
		}
	}
}

type visitKey struct {
	body  *Body
	scope Scope
}

func (w Walker) walk(b *Body, s Scope, seen map[visitKey]struct{}, yield func(Scope, Entry) bool) bool {
	if b == nil {
		return true
	}

	v := visitKey{body: b, scope: s}
	if _, ok := seen[v]; ok {
		return true
	}

	seen[v] = struct{}{}

	for _, e := range b.Entries {
		if !yield(s, e) {
			return false
		}

		c, ok := e.(*Class)
		if !ok {
			continue
		}

		if w.Skip != nil && w.Skip(c) {
			continue
		}

		if w.MaxDepth > 0 && s.Depth+1 > w.MaxDepth {
			continue
		}

		if !w.walk(c.Body, Scope{Class: c.Name, Depth: s.Depth + 1}, seen, yield) {
			return false
		}
	}

	return true
}

// Walk visits every entry of t with the zero [Walker].
func Walk(t *Tree) iter.Seq2[Scope, Entry] {
	var root *Body
	if t != nil {
		root = t.Root
	}

	return Walker{}.Entries(root)
}
