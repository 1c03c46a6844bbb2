package rap

import (
	"encoding/json"
	"strings"
)

// Keys used by ToMap for data that has no property name of its own.
const (
	KeyInherits = "(inherits)"
	KeyDelete   = "(delete)"
	KeyAppend   = "(append)"
	KeyFlag     = "(flag)"
	KeyEnums    = "(enums)"
)

// MarshalJSON implements json.Marshaler for Tree.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToMap())
}

// ToMap converts the tree to native Go maps, slices and scalars.
//
// Each class becomes a map keyed by entry name. When a body holds several
// entries whose names differ only by case, the first one is kept, matching
// [Body.Find]. Forward declarations map to nil. Parent classes, deleted
// classes, array extensions and the enum table are stored under the
// parenthesized keys declared above.
func (t *Tree) ToMap() map[string]any {
	if t == nil {
		return map[string]any{}
	}

	m := t.Root.ToMap()
	delete(m, KeyInherits)

	if len(t.Enums) > 0 {
		enums := make(map[string]any, len(t.Enums))
		for _, e := range t.Enums {
			enums[e.Name] = e.Value
		}

		m[KeyEnums] = enums
	}

	return m
}

// ToMap converts a class body. See [Tree.ToMap].
func (b *Body) ToMap() map[string]any {
	m := make(map[string]any)

	if b == nil {
		return m
	}

	if b.Inherits != "" {
		m[KeyInherits] = b.Inherits
	}

	seen := make(map[string]struct{}, len(b.Entries))

	for _, e := range b.Entries {
		if d, ok := e.(*DeleteClass); ok {
			del, _ := m[KeyDelete].([]any)
			m[KeyDelete] = append(del, d.Name)

			continue
		}

		key := strings.ToLower(e.Ident())
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		switch v := e.(type) {
		case *Class:
			m[v.Name] = v.Body.ToMap()
		case *Scalar:
			m[v.Name] = ToNative(v.Value)
		case *Array:
			m[v.Name] = nativeList(v.Elements)
		case *FlaggedArray:
			m[v.Name] = map[string]any{
				KeyAppend: nativeList(v.Elements),
				KeyFlag:   v.Flag,
			}
		case *ExternalClass:
			m[v.Name] = nil
		case *DeleteClass:
			// handled above
		}
	}

	return m
}

// ToNative converts a value to its native Go type. Variables become their
// expression text.
func ToNative(v Value) any {
	switch v := v.(type) {
	case String:
		return string(v)
	case Float:
		return float32(v)
	case Long:
		return int32(v)
	case Variable:
		return string(v)
	case List:
		return nativeList(v)
	default:
		return nil
	}
}

func nativeList(vs []Value) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = ToNative(v)
	}

	return out
}
