package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
)

func TestResolveYAML(t *testing.T) {
	t.Parallel()

	const doc = `
log:
  level: debug
  pretty: false
only_addons: [main, common]
jobs: 4
ratio: 0.5
format: json
`

	r, err := resolveYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("resolveYAML() error = %v", err)
	}

	want := config{
		"log-level":   "debug",
		"log-pretty":  false,
		"only_addons": []any{"main", "common"},
		"jobs":        "4",
		"ratio":       "0.5",
		"format":      "json",
	}

	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("resolveYAML() mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log-level", "debug"},
		{"only-addons", []any{"main", "common"}},
		{"jobs", "4"},
		{"missing", nil},
	}

	for _, tt := range tests {
		got, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: tt.flag}})
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", tt.flag, err)
		}

		if !cmp.Equal(got, tt.want) {
			t.Errorf("Resolve(%q) = %#v, want %#v", tt.flag, got, tt.want)
		}
	}

	if err := r.Validate(nil); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestResolveYAML_EmptyOrInvalid(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{"", "log: [unclosed"} {
		r, err := resolveYAML(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("resolveYAML(%q) error = %v", doc, err)
		}

		if got, _ := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "log-level"}}); got != nil {
			t.Errorf("resolveYAML(%q) resolved %v", doc, got)
		}
	}
}
