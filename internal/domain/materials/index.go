package materials

import (
	"strings"
	"unicode"
)

// Match stages of Index.Find.
const (
	ByCode        = "code"
	ByDescription = "description"
	ByAlnumCode   = "alnum_code"
)

// Index resolves free text typed in a field report to a catalog material.
type Index struct {
	items []Material
	alnum []string
	upper []string
	lower []string
}

func NewIndex(items []Material) *Index {
	ix := &Index{
		items: items,
		alnum: make([]string, len(items)),
		upper: make([]string, len(items)),
		lower: make([]string, len(items)),
	}
	for i, m := range items {
		ix.upper[i] = strings.ToUpper(strings.TrimSpace(m.CodeItem))
		ix.alnum[i] = alnumUpper(m.CodeItem)
		ix.lower[i] = strings.ToLower(m.Description)
	}
	return ix
}

func (ix *Index) Len() int { return len(ix.items) }

// Find tries, in order: exact code, description containing term, and code
// containment after stripping non-alphanumerics (either direction). Within a
// stage a material of project wins over one without project, which wins over
// the rest.
func (ix *Index) Find(term, project string) (*Material, string, bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, "", false
	}
	code := strings.ToUpper(term)
	desc := strings.ToLower(term)
	alnum := alnumUpper(term)

	stages := []struct {
		name  string
		match func(i int) bool
	}{
		{ByCode, func(i int) bool { return ix.upper[i] == code }},
		{ByDescription, func(i int) bool { return strings.Contains(ix.lower[i], desc) }},
		{ByAlnumCode, func(i int) bool {
			a := ix.alnum[i]
			return alnum != "" && a != "" && (strings.Contains(a, alnum) || strings.Contains(alnum, a))
		}},
	}
	for _, st := range stages {
		if i := ix.best(st.match, project); i >= 0 {
			m := ix.items[i]
			return &m, st.name, true
		}
	}
	return nil, "", false
}

func (ix *Index) best(match func(int) bool, project string) int {
	found, rank := -1, 3
	for i := range ix.items {
		if !match(i) {
			continue
		}
		r := 2
		switch p := ix.items[i].Project; {
		case p != nil && project != "" && strings.EqualFold(*p, project):
			r = 0
		case p == nil:
			r = 1
		}
		if r < rank {
			found, rank = i, r
		}
	}
	return found
}

func alnumUpper(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
