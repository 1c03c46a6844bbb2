package source

import (
	"path"
	"strings"

	"github.com/ardnew/derap/rap"
)

// ConfigName is the file name of a compiled addon config.
const ConfigName = "config.bin"

// File is one file of an addon.
type File struct {
	// Name is the path relative to the addon root with backslash separators,
	// as it appears inside the archive.
	Name string
	// Data is the file content. It is only loaded for configs.
	Data []byte
}

// IsConfig reports whether f is a compiled config.
func (f File) IsConfig() bool {
	return strings.EqualFold(path.Base(strings.ReplaceAll(f.Name, `\`, "/")), ConfigName)
}

// Source is one built addon.
type Source struct {
	// Name identifies the addon, normally its directory name.
	Name string
	// Prefix is the virtual path the addon is mounted at, for example
	// x\mod\addons\main. It is lower case without leading or trailing
	// separators.
	Prefix string
	// Dir is the directory the addon was read from, empty for sources built
	// in memory.
	Dir   string
	Files []File
}

// Configs returns the compiled configs of s.
func (s *Source) Configs() []File {
	var out []File

	for _, f := range s.Files {
		if f.IsConfig() {
			out = append(out, f)
		}
	}

	return out
}

// Tag returns the mod tag of s, the second component of its prefix. Classes
// owned by the mod start with it. A single-component prefix is its own tag.
func (s *Source) Tag() string {
	parts := splitPrefix(s.Prefix)

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return parts[1]
	}
}

// ModRoot returns the normalized virtual path shared by every addon of the
// mod, for example \x\mod\.
func (s *Source) ModRoot() string {
	parts := splitPrefix(s.Prefix)
	if len(parts) > 2 {
		parts = parts[:2]
	}

	if len(parts) == 0 {
		return ""
	}

	return rap.NormalizePath(strings.Join(parts, `\`) + `\`)
}

// DataFiles returns the normalized virtual paths of the files of s that a
// config can reference. Headers (.hpp) are compiled into the config and are
// not data.
func (s *Source) DataFiles() rap.Set[string] {
	out := make(rap.Set[string])

	for _, f := range s.Files {
		if strings.Contains(strings.ToLower(f.Name), ".hpp") {
			continue
		}

		out.Add(rap.NormalizePath(s.Prefix + `\` + f.Name))
	}

	return out
}

// NormalizePrefix returns p lower case with backslash separators and without
// leading or trailing separators.
func NormalizePrefix(p string) string {
	return strings.Trim(rap.NormalizePath(p), `\`)
}

func splitPrefix(p string) []string {
	p = NormalizePrefix(p)
	if p == "" {
		return nil
	}

	return strings.Split(p, `\`)
}
