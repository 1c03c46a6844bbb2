package rap

import "testing"

func TestTree_ResolveProperty(t *testing.T) {
	t.Parallel()

	tr := tree(
		class("MyBase", "", &Scalar{Name: "x", Value: Long(1)}, str("y", "base")),
		class("MyChild", "MyBase", str("y", "child")),
		class("GrandChild", "mychild"),
		class("Orphan", "Missing"),
		str("NotAClass", "v"),
	)

	tests := []struct {
		name  string
		class string
		prop  string
		want  string
		found bool
	}{
		{"inherited", "MyChild", "x", "1", true},
		{"own overrides parent", "MyChild", "y", "child", true},
		{"two levels", "GrandChild", "X", "1", true},
		{"own", "MyBase", "y", "base", true},
		{"missing property", "MyChild", "z", "", false},
		{"missing parent", "Orphan", "x", "", false},
		{"missing class", "Nope", "x", "", false},
		{"not a class", "NotAClass", "x", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, ok := tr.ResolveProperty(tt.class, tt.prop)
			if ok != tt.found {
				t.Fatalf("ResolveProperty(%q, %q) found = %v, want %v", tt.class, tt.prop, ok, tt.found)
			}

			if !ok {
				return
			}

			s, isScalar := e.(*Scalar)
			if !isScalar || s.Value.String() != tt.want {
				t.Errorf("ResolveProperty(%q, %q) = %v, want %s", tt.class, tt.prop, e, tt.want)
			}
		})
	}
}

func TestTree_ResolvePropertyCycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		tree *Tree
	}{
		{"self", tree(class("A", "A"))},
		{"pair", tree(class("A", "B"), class("B", "a"))},
		{"long", tree(class("A", "B"), class("B", "C"), class("C", "D"), class("D", "B"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if e, ok := tt.tree.ResolveProperty("A", "x"); ok {
				t.Errorf("ResolveProperty() = %v, want not found", e)
			}
		})
	}
}

func TestTree_ResolvePropertyAfterDecode(t *testing.T) {
	t.Parallel()

	tr, err := Decode(encodeTree(tree(
		class("MyBase", "", &Scalar{Name: "x", Value: Long(1)}),
		class("MyChild", "MyBase"),
	)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	e, ok := tr.ResolveProperty("MyChild", "x")
	if !ok {
		t.Fatal("ResolveProperty() found nothing")
	}

	if s, _ := e.(*Scalar); s == nil || s.Value != Long(1) {
		t.Errorf("ResolveProperty() = %v, want x = 1", e)
	}
}
