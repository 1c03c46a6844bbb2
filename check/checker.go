package check

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/derap/log"
	"github.com/ardnew/derap/rap"
)

// PatchesClass is the root class declaring an addon's units and weapons.
const PatchesClass = "CfgPatches"

// Kind selects the references a [Checker] validates.
type Kind int

const (
	KindClasses Kind = iota // class references against declared classes
	KindPaths               // path references against shipped files
)

func (k Kind) String() string {
	switch k {
	case KindClasses:
		return "classes"
	case KindPaths:
		return "paths"
	default:
		return "unknown"
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Match decides which references are local to the unit being checked.
type Match int

const (
	// MatchPrefix treats a reference as local when it starts with the unit's
	// mod tag or mod root, ignoring case.
	MatchPrefix Match = iota
	// MatchContains treats a reference as local when it contains the unit's
	// mod tag or mod root anywhere.
	MatchContains
)

func (m Match) String() string {
	switch m {
	case MatchPrefix:
		return "prefix"
	case MatchContains:
		return "contains"
	default:
		return "unknown"
	}
}

// ParseMatch returns the Match named s, and false if there is none.
func ParseMatch(s string) (Match, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prefix", "":
		return MatchPrefix, true
	case "contains":
		return MatchContains, true
	default:
		return MatchPrefix, false
	}
}

// Finding is a local reference with no matching declaration.
type Finding struct {
	rap.Reference `yaml:",inline"`

	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// Report is the result of checking one unit.
type Report struct {
	Unit string `json:"unit" yaml:"unit"`
	Kind Kind   `json:"kind" yaml:"kind"`
	// Checked is the number of local references validated.
	Checked    int       `json:"checked"    yaml:"checked"`
	Unresolved []Finding `json:"unresolved" yaml:"unresolved"`
}

// OK reports whether every local reference resolved.
func (r Report) OK() bool { return len(r.Unresolved) == 0 }

// Checker validates units against an [Index].
type Checker struct {
	Index *Index
	Match Match
	// SkipPatches excludes the CfgPatches branch from class reference
	// extraction. Its units and weapons arrays repeat the declared classes.
	SkipPatches bool
	// Suggestions is the maximum number of suggestions attached to a
	// finding. Zero disables suggestions.
	Suggestions int
	Logger      log.Logger
}

// Check validates the references of u selected by kind.
func (c Checker) Check(ctx context.Context, kind Kind, u *Unit) Report {
	switch kind {
	case KindPaths:
		return c.Paths(ctx, u)
	default:
		return c.Classes(ctx, u)
	}
}

// Classes validates the class references of u against the declared classes
// of the index.
func (c Checker) Classes(ctx context.Context, u *Unit) Report {
	tag := strings.ToLower(u.Source.Tag())

	var opts []rap.ExtractOption
	if c.SkipPatches {
		opts = append(opts, rap.SkipBranch(PatchesClass))
	}

	refs := make(rap.Set[rap.Reference])

	for _, cfg := range u.Configs {
		for ref := range rap.ClassReferences(cfg.Tree, c.extractPrefix(tag), opts...).All() {
			refs.Add(ref)
		}
	}

	return c.report(ctx, KindClasses, u, refs, tag, c.index().Classes)
}

// Paths validates the path references of u against the files of the index.
func (c Checker) Paths(ctx context.Context, u *Unit) Report {
	root := u.Source.ModRoot()

	refs := make(rap.Set[rap.Reference])

	for _, cfg := range u.Configs {
		for ref := range rap.PathReferences(cfg.Tree, c.extractPrefix(root)).All() {
			refs.Add(ref)
		}
	}

	return c.report(ctx, KindPaths, u, refs, root, c.index().Files)
}

// extractPrefix returns the prefix references are extracted with. Substring
// locality has to look at every string value.
func (c Checker) extractPrefix(local string) string {
	if c.Match == MatchContains {
		return ""
	}

	return local
}

func (c Checker) local(name, key string) bool {
	if key == "" {
		return false
	}

	if c.Match == MatchContains {
		return strings.Contains(name, key)
	}

	return strings.HasPrefix(name, key)
}

func (c Checker) index() *Index {
	if c.Index == nil {
		return NewIndex()
	}

	return c.Index
}

func (c Checker) report(
	ctx context.Context,
	kind Kind,
	u *Unit,
	refs rap.Set[rap.Reference],
	key string,
	known rap.Set[string],
) Report {
	r := Report{Unit: u.Name(), Kind: kind, Unresolved: []Finding{}}

	var sugg *suggester

	for _, ref := range refs.Sorted(rap.CompareReferences) {
		if !c.local(ref.Name, key) {
			c.Logger.TraceContext(ctx, "not local", slog.String("ref", ref.String()))

			continue
		}

		r.Checked++

		if known.Has(ref.Name) {
			c.Logger.TraceContext(ctx, "resolved", slog.String("ref", ref.String()))

			continue
		}

		f := Finding{Reference: ref}

		if c.Suggestions > 0 {
			if sugg == nil {
				sugg = newSuggester(known, key)
			}

			f.Suggestions = sugg.suggest(ref.Name, c.Suggestions)
		}

		c.Logger.WarnContext(ctx, "unresolved",
			slog.String("unit", r.Unit),
			slog.String("kind", kind.String()),
			slog.String("ref", ref.String()))

		r.Unresolved = append(r.Unresolved, f)
	}

	return r
}

// Summary is the result of checking a batch.
type Summary struct {
	Kind    Kind     `json:"kind"    yaml:"kind"`
	Reports []Report `json:"reports" yaml:"reports"`
	// Failures lists the configs that could not be decoded.
	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
	// Failed lists, sorted, the units with unresolved references or decode
	// failures.
	Failed []string `json:"failed" yaml:"failed"`
}

// OK reports whether every checked unit passed.
func (s Summary) OK() bool { return len(s.Failed) == 0 }

// Run checks every unit selected by only (see [Selected]) and summarizes the
// results. Decode failures of a selected unit mark it failed.
func (c Checker) Run(
	ctx context.Context,
	kind Kind,
	units []*Unit,
	failures []Failure,
	only ...string,
) Summary {
	s := Summary{Kind: kind, Failed: []string{}}

	failed := make(rap.Set[string])

	for _, f := range failures {
		if Selected(f.Unit, only) {
			s.Failures = append(s.Failures, f)
			failed.Add(f.Unit)
		}
	}

	for _, u := range units {
		if !Selected(u.Name(), only) {
			c.Logger.TraceContext(ctx, "not selected", slog.String("unit", u.Name()))

			continue
		}

		r := c.Check(ctx, kind, u)
		if !r.OK() {
			failed.Add(u.Name())
		}

		s.Reports = append(s.Reports, r)
	}

	s.Failed = append(s.Failed, rap.SortedOrdered(failed)...)

	return s
}

// Selected reports whether name is selected by only: only is empty or one of
// its elements is a substring of name.
func Selected(name string, only []string) bool {
	return len(only) == 0 || slices.ContainsFunc(only, func(o string) bool {
		return strings.Contains(name, o)
	})
}
