package sheet

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field is a semantic name ("day", "start_time", ...) that a column can be resolved to.
type Field string

// Matcher is one heuristic stage. Match receives the folded title
// (lowercase, no diacritics, single spaces) and the column itself.
type Matcher struct {
	Stage string
	Match func(title string, col Column) bool
}

// Rule lists the matchers of a field in priority order.
type Rule struct {
	Field    Field
	Matchers []Matcher
}

type Match struct {
	Column Column
	Stage  string
}

// Resolution maps every resolved field to its column. Absent fields are simply missing.
type Resolution map[Field]Match

func (r Resolution) Column(f Field) (Column, bool) {
	m, ok := r[f]
	return m.Column, ok
}

// Resolve picks at most one column per rule. The first matcher with any hit
// wins; among several hits the leftmost column is taken.
func Resolve(columns []Column, rules []Rule) Resolution {
	ordered := make([]Column, len(columns))
	copy(ordered, columns)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	titles := make([]string, len(ordered))
	for i, c := range ordered {
		titles[i] = Fold(c.Title)
	}

	out := make(Resolution, len(rules))
	for _, rule := range rules {
	stages:
		for _, m := range rule.Matchers {
			for i, col := range ordered {
				if m.Match(titles[i], col) {
					out[rule.Field] = Match{Column: col, Stage: m.Stage}
					break stages
				}
			}
		}
	}
	return out
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s, strips diacritics and quotes, and collapses whitespace.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.Trim(folded, " \t\"'")
	return strings.Join(strings.Fields(folded), " ")
}

// Exact matches titles equal to one of names.
func Exact(names ...string) Matcher {
	folded := foldAll(names)
	return Matcher{Stage: "exact", Match: func(title string, _ Column) bool {
		for _, n := range folded {
			if title == n {
				return true
			}
		}
		return false
	}}
}

// Contains matches titles containing any of subs.
func Contains(subs ...string) Matcher {
	folded := foldAll(subs)
	return Matcher{Stage: "contains", Match: func(title string, _ Column) bool {
		for _, s := range folded {
			if strings.Contains(title, s) {
				return true
			}
		}
		return false
	}}
}

// ContainsAll matches titles containing every one of subs.
func ContainsAll(subs ...string) Matcher {
	folded := foldAll(subs)
	return Matcher{Stage: "keywords", Match: func(title string, _ Column) bool {
		for _, s := range folded {
			if !strings.Contains(title, s) {
				return false
			}
		}
		return true
	}}
}

// HasType matches columns whose API type is one of types.
func HasType(types ...string) Matcher {
	return Matcher{Stage: "type", Match: func(_ string, col Column) bool {
		for _, t := range types {
			if col.Type == t {
				return true
			}
		}
		return false
	}}
}

// Pred wraps an arbitrary title predicate.
func Pred(stage string, fn func(title string) bool) Matcher {
	return Matcher{Stage: stage, Match: func(title string, _ Column) bool { return fn(title) }}
}

func foldAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = Fold(s)
	}
	return out
}
