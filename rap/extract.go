package rap

import (
	"cmp"
	"fmt"
	"strings"
)

// FunctionMarker appears in the names of script functions, which share the
// addon prefix with classes but are never class references.
const FunctionMarker = "_fnc_"

// Reference is a string value found in a config, located by the class whose
// body holds it and the property that holds it. All fields are lower case.
type Reference struct {
	Name     string `json:"name"     yaml:"name"`
	Class    string `json:"class"    yaml:"class"`
	Property string `json:"property" yaml:"property"`
}

func (r Reference) String() string {
	return fmt.Sprintf("%s (class %s >> '%s')", r.Name, r.Class, r.Property)
}

// CompareReferences orders references by name, class and property.
func CompareReferences(a, b Reference) int {
	return cmp.Or(
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Class, b.Class),
		cmp.Compare(a.Property, b.Property),
	)
}

// HasPrefixFold reports whether s begins with prefix, ignoring case.
func HasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// NormalizePath returns p in the canonical form used to compare file
// references: lower case, backslash separators, no repeated separators and a
// single leading backslash. An empty or blank path stays empty.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}

	p = strings.ToLower(strings.ReplaceAll(p, "/", `\`))

	var b strings.Builder

	b.Grow(len(p) + 1)
	b.WriteByte('\\')

	prev := byte('\\')

	for i := range len(p) {
		c := p[i]
		if c == '\\' && prev == '\\' {
			continue
		}

		b.WriteByte(c)
		prev = c
	}

	return b.String()
}

// ExtractOption configures [ClassReferences] and [PathReferences].
type ExtractOption func(*extractConfig)

type extractConfig struct {
	skip []string
}

// SkipBranch excludes the bodies of classes named name, at any depth, from
// reference extraction.
func SkipBranch(name string) ExtractOption {
	return func(c *extractConfig) {
		c.skip = append(c.skip, name)
	}
}

func (c extractConfig) walker() Walker {
	if len(c.skip) == 0 {
		return Walker{}
	}

	return Walker{
		Skip: func(cl *Class) bool {
			for _, name := range c.skip {
				if strings.EqualFold(cl.Name, name) {
					return true
				}
			}

			return false
		},
	}
}

// DeclaredClasses returns the lower-cased names of all classes in t, at any
// depth, whose names start with prefix.
func DeclaredClasses(t *Tree, prefix string) Set[string] {
	out := make(Set[string])

	if t == nil {
		return out
	}

	for _, c := range (Walker{}).Classes(t.Root) {
		if HasPrefixFold(c.Name, prefix) {
			out.Add(strings.ToLower(c.Name))
		}
	}

	return out
}

// ClassReferences returns the string values in t that start with prefix and
// are not function names. Values come from scalars and from array elements,
// including elements of nested arrays.
func ClassReferences(t *Tree, prefix string, opts ...ExtractOption) Set[Reference] {
	return references(t, opts, func(v string) (string, bool) {
		if !HasPrefixFold(v, prefix) || strings.Contains(strings.ToLower(v), FunctionMarker) {
			return "", false
		}

		return strings.ToLower(v), true
	})
}

// PathReferences returns the string values in t that, once normalized with
// [NormalizePath], start with the normalized root.
func PathReferences(t *Tree, root string, opts ...ExtractOption) Set[Reference] {
	root = NormalizePath(root)

	return references(t, opts, func(v string) (string, bool) {
		p := NormalizePath(v)
		if p == "" || !strings.HasPrefix(p, root) {
			return "", false
		}

		return p, true
	})
}

// references collects the string values accepted by keep. keep returns the
// form of the value to record.
func references(
	t *Tree,
	opts []ExtractOption,
	keep func(string) (string, bool),
) Set[Reference] {
	out := make(Set[Reference])

	if t == nil {
		return out
	}

	var cfg extractConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	for s, e := range cfg.walker().Entries(t.Root) {
		ref := Reference{
			Class:    strings.ToLower(s.Class),
			Property: strings.ToLower(e.Ident()),
		}

		add := func(v Value) {
			str, ok := v.(String)
			if !ok {
				return
			}

			if name, ok := keep(string(str)); ok {
				ref.Name = name
				out.Add(ref)
			}
		}

		if sc, ok := e.(*Scalar); ok {
			add(sc.Value)
		}

		if elems, ok := Elements(e); ok {
			eachValue(elems, add)
		}
	}

	return out
}

// eachValue calls fn for every value of elems, descending into nested lists.
func eachValue(elems []Value, fn func(Value)) {
	for _, v := range elems {
		if l, ok := v.(List); ok {
			eachValue(l, fn)

			continue
		}

		fn(v)
	}
}
