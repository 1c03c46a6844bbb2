package rap

import "strings"

// ResolveProperty looks up the property prop of the class named class in scope
// b, following the class's inheritance chain within the same scope until the
// property is found or the chain ends.
//
// The result is false when class is missing or is not a class, when no class
// along the chain declares prop, and when the chain loops back on itself.
func (b *Body) ResolveProperty(class, prop string) (Entry, bool) {
	visited := make(map[string]struct{})

	for name := class; name != ""; {
		key := strings.ToLower(name)
		if _, ok := visited[key]; ok {
			return nil, false
		}

		visited[key] = struct{}{}

		c, ok := b.Class(name)
		if !ok || c.Body == nil {
			return nil, false
		}

		if e, ok := c.Body.Find(prop); ok {
			return e, true
		}

		name = c.Body.Inherits
	}

	return nil, false
}

// ResolveProperty resolves prop of a root-level class. See
// [Body.ResolveProperty].
func (t *Tree) ResolveProperty(class, prop string) (Entry, bool) {
	if t == nil {
		return nil, false
	}

	return t.Root.ResolveProperty(class, prop)
}

// ResolveString resolves prop like [Body.ResolveProperty] and returns its
// value as text when the property is a scalar.
func (b *Body) ResolveString(class, prop string) (string, bool) {
	e, ok := b.ResolveProperty(class, prop)
	if !ok {
		return "", false
	}

	s, ok := e.(*Scalar)
	if !ok {
		return "", false
	}

	return s.Value.String(), true
}
