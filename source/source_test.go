package source

import "testing"

func TestSource_Tag_ModRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		tag    string
		root   string
	}{
		{`x\mod\addons\main`, "mod", `\x\mod\`},
		{`\X\Mod\addons\main\`, "mod", `\x\mod\`},
		{`z/acme/addons/gear`, "acme", `\z\acme\`},
		{`solo`, "solo", `\solo\`},
		{``, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			t.Parallel()

			s := &Source{Prefix: tt.prefix}

			if got := s.Tag(); got != tt.tag {
				t.Errorf("Tag() = %q, want %q", got, tt.tag)
			}

			if got := s.ModRoot(); got != tt.root {
				t.Errorf("ModRoot() = %q, want %q", got, tt.root)
			}
		})
	}
}

func TestParsePrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bare", "x\\mod\\addons\\main\n", `x\mod\addons\main`},
		{"key value", "version=2\nprefix = x\\mod\\addons\\main\n", `x\mod\addons\main`},
		{"leading blank lines", "\n\n  z\\acme\\addons\\gear  \n", `z\acme\addons\gear`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ParsePrefix(tt.content); got != tt.want {
				t.Errorf("ParsePrefix(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}
