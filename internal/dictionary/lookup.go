package dictionary

import (
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Letters is the alphabet offered by the letter filter.
func Letters() []string {
	out := make([]string, 0, 26)
	for r := 'A'; r <= 'Z'; r++ {
		out = append(out, string(r))
	}
	return out
}

// Lookup returns the term with the exact id.
func Lookup(id string) (Term, bool) {
	for _, t := range terms {
		if t.ID == id {
			return t.clone(), true
		}
	}
	return Term{}, false
}

// resolve finds id exactly, then case-insensitively.
func resolve(id string) (Term, bool) {
	if t, ok := Lookup(id); ok {
		return t, true
	}
	for _, t := range terms {
		if strings.EqualFold(t.ID, id) {
			return t.clone(), true
		}
	}
	return Term{}, false
}

// Related returns the existing terms referenced by id's related list, in the
// listed order. Unknown references are skipped.
func Related(id string) []Term {
	t, ok := Lookup(id)
	if !ok {
		return nil
	}
	out := make([]Term, 0, len(t.Related))
	for _, rel := range t.Related {
		if r, ok := resolve(rel); ok {
			out = append(out, r)
		}
	}
	return out
}

// Filter selects terms whose title or definition contains query
// (case-insensitive) and, when letter is set, whose title starts with that
// letter once uppercased. Results are sorted by title with root-locale
// collation. An empty result is an empty slice.
func Filter(query, letter string) []Term {
	q := strings.ToLower(strings.TrimSpace(query))
	letter = strings.ToUpper(strings.TrimSpace(letter))

	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Definition), q) {
			continue
		}
		if letter != "" && initial(t.Title) != letter {
			continue
		}
		out = append(out, t.clone())
	}

	col := collate.New(language.Und)
	slices.SortStableFunc(out, func(a, b Term) int {
		return col.CompareString(a.Title, b.Title)
	})
	return out
}

// initial is the uppercased first character of s.
func initial(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return strings.ToUpper(string(r))
}

