package check

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/derap/rap"
)

// suggester ranks known names similar to an unresolved one.
type suggester struct {
	candidates []string
}

// newSuggester returns a suggester over the known names that are local to
// key. A reference is only ever misspelled within its own mod.
func newSuggester(known rap.Set[string], key string) *suggester {
	var candidates []string

	for name := range known.All() {
		if strings.Contains(name, key) {
			candidates = append(candidates, name)
		}
	}

	slices.Sort(candidates)

	return &suggester{candidates: candidates}
}

// suggest returns at most limit candidates, best first. A candidate matches
// when either it or name is a fuzzy subsequence of the other, which catches
// both dropped and doubled characters.
func (s *suggester) suggest(name string, limit int) []string {
	if limit < 1 || len(s.candidates) == 0 {
		return nil
	}

	score := make(map[string]int)

	for _, m := range fuzzy.Find(name, s.candidates) {
		score[m.Str] = m.Score
	}

	target := []string{name}

	for _, c := range s.candidates {
		for _, m := range fuzzy.Find(c, target) {
			if prev, ok := score[c]; !ok || m.Score > prev {
				score[c] = m.Score
			}
		}
	}

	ranked := slices.SortedFunc(maps.Keys(score), func(a, b string) int {
		return cmp.Or(cmp.Compare(score[b], score[a]), cmp.Compare(a, b))
	})

	return ranked[:min(limit, len(ranked))]
}
